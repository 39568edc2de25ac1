package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/net/proxy"
)

const (
	// checkProxyTimeout bounds a single proxy reachability check.
	checkProxyTimeout = 2 * time.Second

	// maxRedirects is how many redirects a probe follows before the last
	// response is classified as is.
	maxRedirects = 10
)

// NewHTTPClient creates the HTTP client shared by the probes of one scan.
// The client carries a cookie jar; use a new client per scan.
// The client has no overall timeout; each probe bounds itself.
// Environment proxy variables are ignored: only s decides the route.
func NewHTTPClient(s Settings) (*http.Client, error) {
	transport := &http.Transport{
		Proxy:                 nil,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
		ForceAttemptHTTP2:     true,
	}

	switch {
	case s.proxy == nil:
		transport.DialContext = (&net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}).DialContext
	case s.isSOCKS():
		dialer, err := socksDialer(s)
		if err != nil {
			return nil, err
		}
		transport.DialContext = dialer
		transport.ForceAttemptHTTP2 = false
	default:
		transport.Proxy = http.ProxyURL(s.proxy)
		transport.DialContext = (&net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}).DialContext
	}

	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	return &http.Client{
		Transport: transport,
		Jar:       jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}, nil
}

func socksDialer(s Settings) (func(ctx context.Context, network, addr string) (net.Conn, error), error) {
	var auth *proxy.Auth
	if user := s.proxy.User; user != nil {
		password, _ := user.Password()
		auth = &proxy.Auth{User: user.Username(), Password: password}
	}

	dialer, err := proxy.SOCKS5("tcp", s.proxy.Host, auth, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	cd, ok := dialer.(proxy.ContextDialer)
	if !ok {
		return nil, errors.New("SOCKS5 dialer does not support contexts")
	}
	return cd.DialContext, nil
}

// SOCKS5 protocol constants.
const (
	socks5Version       = 0x05
	socks5AuthNone      = 0x00
	socks5AuthPassword  = 0x02
	socks5AuthNoAccept  = 0xFF
	socks5CmdConnect    = 0x01
	socks5AddrTypeDomID = 0x03

	// socks5TestHost is a synthetic onion address. Any reply to a CONNECT
	// for it, success or failure, proves the endpoint is proxying.
	socks5TestHost = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa.onion"
)

// CheckProxy verifies that the proxy in s is reachable. SOCKS5 proxies get a
// protocol handshake; HTTP proxies a TCP connect. Direct settings are
// always OK.
func CheckProxy(ctx context.Context, s Settings) ProxyStatus {
	if s.proxy == nil {
		return ProxyStatusOK
	}

	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", s.proxy.Host)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusCannotConnect
	}
	defer conn.Close()

	if !s.isSOCKS() {
		return ProxyStatusOK
	}

	if err := conn.SetDeadline(time.Now().Add(checkProxyTimeout)); err != nil {
		return ProxyStatusCannotConnect
	}
	return socksHandshake(conn, s.proxy.User != nil)
}

// socksHandshake performs a SOCKS5 greeting and, when no authentication is
// required, a CONNECT to socks5TestHost.
func socksHandshake(conn net.Conn, withPassword bool) ProxyStatus {
	greeting := []byte{socks5Version, 0x01, socks5AuthNone}
	if withPassword {
		greeting = []byte{socks5Version, 0x02, socks5AuthNone, socks5AuthPassword}
	}
	if _, err := conn.Write(greeting); err != nil {
		return ProxyStatusCannotConnect
	}

	authResp := make([]byte, 2)
	if _, err := io.ReadFull(conn, authResp); err != nil {
		return readFailure(err)
	}
	if authResp[0] != socks5Version {
		return ProxyStatusWrongType
	}
	switch authResp[1] {
	case socks5AuthNone:
	case socks5AuthPassword:
		if withPassword {
			// The proxy negotiated SOCKS5; credentials are checked on use.
			return ProxyStatusOK
		}
		return ProxyStatusWrongType
	default:
		return ProxyStatusWrongType
	}

	connectReq := []byte{
		socks5Version,
		socks5CmdConnect,
		0x00, // reserved
		socks5AddrTypeDomID,
		byte(len(socks5TestHost)),
	}
	connectReq = append(connectReq, []byte(socks5TestHost)...)
	connectReq = append(connectReq, 0x00, 80)
	if _, err := conn.Write(connectReq); err != nil {
		return ProxyStatusCannotConnect
	}

	connectResp := make([]byte, 4)
	if _, err := io.ReadFull(conn, connectResp); err != nil {
		return readFailure(err)
	}
	if connectResp[0] != socks5Version {
		return ProxyStatusWrongType
	}
	return ProxyStatusOK
}

func readFailure(err error) ProxyStatus {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ProxyStatusTimeout
	}
	return ProxyStatusWrongType
}
