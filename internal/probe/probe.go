// Package probe performs the single HTTP request that decides whether a
// handle exists on one platform.
package probe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/handlescan/internal/model"
)

const (
	// DefaultTimeout bounds one probe.
	DefaultTimeout = 15 * time.Second

	// DefaultMaxBodySize limits how much of a profile page is read.
	DefaultMaxBodySize int64 = 5 * 1024 * 1024

	// DefaultUserAgent mimics a common browser. Many platforms serve a
	// different page, or none, to unknown agents.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"
)

// Executor probes resolved target URLs.
// An Executor holds no per-probe state and is safe for concurrent use.
type Executor struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
	timeout     time.Duration
}

// Option configures an Executor.
type Option func(*Executor)

// WithUserAgent sets the User-Agent header sent with each probe.
func WithUserAgent(ua string) Option {
	return func(e *Executor) {
		if ua != "" {
			e.userAgent = ua
		}
	}
}

// WithMaxBodySize sets the maximum number of body bytes read.
func WithMaxBodySize(size int64) Option {
	return func(e *Executor) {
		if size > 0 {
			e.maxBodySize = size
		}
	}
}

// WithTimeout sets the per-probe timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Executor) {
		if timeout > 0 {
			e.timeout = timeout
		}
	}
}

// NewExecutor creates an Executor that sends requests with client.
// The client carries the proxy configuration; a nil client means
// http.DefaultClient.
func NewExecutor(client *http.Client, opts ...Option) *Executor {
	if client == nil {
		client = http.DefaultClient
	}
	e := &Executor{
		client:      client,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		timeout:     DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Timeout returns the per-probe timeout.
func (e *Executor) Timeout() time.Duration {
	return e.timeout
}

// Probe resolves target for handle, issues one GET and classifies the
// response. It never returns an error: transport failures become a
// StatusError outcome with a human-readable detail. The body is only read
// when the profile is found.
func (e *Executor) Probe(ctx context.Context, target model.Target, handle string) (model.Outcome, string) {
	url := target.ResolveURL(handle)

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errorOutcome(fmt.Sprintf("invalid request: %v", err)), url
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := e.client.Do(req)
	if err != nil {
		return errorOutcome(describe(err, e.timeout)), url
	}
	defer resp.Body.Close()

	if resp.StatusCode != target.ExpectedStatus() {
		return model.Outcome{Status: model.StatusNotFound, HTTPStatus: resp.StatusCode}, url
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBodySize))
	if err != nil {
		out := errorOutcome("reading response body: " + describe(err, e.timeout))
		out.HTTPStatus = resp.StatusCode
		return out, url
	}

	return model.Outcome{
		Status:     model.StatusFound,
		Body:       string(body),
		HTTPStatus: resp.StatusCode,
		Digest:     Digest(body),
	}, url
}

// Digest returns the hex SHA3-256 digest of body.
func Digest(body []byte) string {
	sum := sha3.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func errorOutcome(detail string) model.Outcome {
	return model.Outcome{Status: model.StatusError, ErrorDetail: detail}
}

// describe turns a transport error into a short cause a user can act on.
func describe(err error, timeout time.Duration) string {
	var (
		dnsErr     *net.DNSError
		opErr      *net.OpError
		certErr    *tls.CertificateVerificationError
		unknownCA  x509.UnknownAuthorityError
		hostErr    x509.HostnameError
		invalidErr x509.CertificateInvalidError
		recordErr  tls.RecordHeaderError
		netErr     net.Error
	)

	switch {
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("request timed out after %s", timeout)
	case errors.As(err, &dnsErr):
		return fmt.Sprintf("DNS lookup failed for %s: %s", dnsErr.Name, dnsErr.Err)
	case errors.As(err, &certErr), errors.As(err, &unknownCA),
		errors.As(err, &hostErr), errors.As(err, &invalidErr):
		return fmt.Sprintf("TLS certificate error: %v", err)
	case errors.As(err, &recordErr):
		return "TLS handshake failed: server did not speak TLS"
	case errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Sprintf("request timed out after %s", timeout)
	case errors.As(err, &opErr) && opErr.Op == "dial":
		return fmt.Sprintf("connection failed: %v", opErr.Err)
	default:
		return err.Error()
	}
}
