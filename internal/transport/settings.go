// Package transport builds the network path probes travel through: a
// direct connection, an HTTP or SOCKS5 proxy, or Tor.
//
// Routing is decided once per run and captured in an immutable Settings
// value. Nothing in this package keeps process-wide mutable state.
package transport

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultTorAddress is the SOCKS address of a locally running Tor daemon.
	DefaultTorAddress = "127.0.0.1:9050"

	// EnvTorEnabled must be set to route through an external Tor daemon.
	EnvTorEnabled = "TOR_ENABLED"

	// EnvHTTPProxy supplies the proxy URL when none is configured.
	EnvHTTPProxy = "HTTP_PROXY"
)

// Mode is how probes reach the network.
type Mode int

const (
	// ModeDirect connects without a proxy.
	ModeDirect Mode = iota
	// ModeProxy routes through a user supplied HTTP or SOCKS5 proxy.
	ModeProxy
	// ModeTor routes through a Tor SOCKS5 port.
	ModeTor
)

// String returns the anonymity label shown in reports.
func (m Mode) String() string {
	switch m {
	case ModeProxy:
		return "Proxy"
	case ModeTor:
		return "Tor"
	default:
		return "Direct"
	}
}

// Options are the routing choices made on the command line or in the
// config file.
type Options struct {
	// UseTor routes probes through Tor. It wins over UseProxy.
	UseTor bool

	// TorAddress is the Tor SOCKS address. When empty, DefaultTorAddress is
	// used and TOR_ENABLED must be set, confirming a daemon is running.
	TorAddress string

	// UseProxy routes probes through ProxyURL, or HTTP_PROXY when empty.
	UseProxy bool

	// ProxyURL is an explicit proxy. Setting it implies UseProxy.
	ProxyURL string
}

// Settings is the resolved, immutable network configuration of one run.
type Settings struct {
	mode  Mode
	proxy *url.URL
}

// Direct returns settings for a direct connection.
func Direct() Settings {
	return Settings{mode: ModeDirect}
}

// ResolveSettings turns opts into Settings. getenv is usually os.Getenv;
// tests pass a map lookup.
func ResolveSettings(opts Options, getenv func(string) string) (Settings, error) {
	switch {
	case opts.UseTor:
		addr := opts.TorAddress
		if addr == "" {
			if getenv(EnvTorEnabled) == "" {
				return Settings{}, ErrTorNotEnabled
			}
			addr = DefaultTorAddress
		}
		if !isValidProxyAddress(addr) {
			return Settings{}, fmt.Errorf("%w: %q", ErrInvalidProxyAddress, addr)
		}
		return Settings{mode: ModeTor, proxy: &url.URL{Scheme: "socks5", Host: addr}}, nil

	case opts.UseProxy || opts.ProxyURL != "":
		raw := opts.ProxyURL
		if raw == "" {
			raw = getenv(EnvHTTPProxy)
		}
		if raw == "" {
			return Settings{}, ErrProxyNotConfigured
		}
		u, err := ParseProxyURL(raw)
		if err != nil {
			return Settings{}, err
		}
		return Settings{mode: ModeProxy, proxy: u}, nil

	default:
		return Direct(), nil
	}
}

// ParseProxyURL parses and validates a proxy URL.
func ParseProxyURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProxyAddress, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "socks5", "socks5h", "http", "https":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProxyScheme, u.Scheme)
	}
	if !isValidProxyAddress(u.Host) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProxyAddress, u.Host)
	}
	return u, nil
}

// Mode returns the routing mode.
func (s Settings) Mode() Mode {
	return s.mode
}

// Anonymity returns the label describing how probes are routed.
func (s Settings) Anonymity() string {
	return s.mode.String()
}

// ProxyURL returns the proxy URL, or "" for direct connections.
func (s Settings) ProxyURL() string {
	if s.proxy == nil {
		return ""
	}
	return s.proxy.String()
}

// RedactedProxyURL returns the proxy URL with any password masked.
func (s Settings) RedactedProxyURL() string {
	if s.proxy == nil {
		return ""
	}
	return s.proxy.Redacted()
}

// isSOCKS reports whether the proxy speaks SOCKS5.
func (s Settings) isSOCKS() bool {
	if s.proxy == nil {
		return false
	}
	scheme := strings.ToLower(s.proxy.Scheme)
	return scheme == "socks5" || scheme == "socks5h"
}

// isValidProxyAddress checks that address is host:port with a port in
// 1..65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}
