package transport

import "errors"

// Network configuration errors. They are returned before any probe starts.
var (
	// ErrTorNotEnabled is returned when Tor routing is requested against an
	// external daemon but TOR_ENABLED is not set in the environment.
	ErrTorNotEnabled = errors.New("tor requested but TOR_ENABLED is not set")

	// ErrProxyNotConfigured is returned when proxy routing is requested but
	// neither a proxy URL nor HTTP_PROXY is available.
	ErrProxyNotConfigured = errors.New("proxy requested but no proxy URL or HTTP_PROXY is configured")

	// ErrUnsupportedProxyScheme is returned for proxy URLs that are not
	// socks5, socks5h, http or https.
	ErrUnsupportedProxyScheme = errors.New("unsupported proxy scheme")

	// ErrInvalidProxyAddress is returned when the proxy address is not host:port.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")
)

// Proxy reachability errors, returned by ProxyStatus.Error.
var (
	// ErrProxyWrongType is returned when the endpoint answers but does not
	// speak the expected proxy protocol.
	ErrProxyWrongType = errors.New("proxy does not speak the expected protocol")

	// ErrProxyCannotConnect is returned when no TCP connection to the proxy
	// can be established.
	ErrProxyCannotConnect = errors.New("cannot connect to proxy")

	// ErrProxyTimeout is returned when the proxy check times out.
	ErrProxyTimeout = errors.New("timeout connecting to proxy")
)

// ProxyStatus is the result of checking a proxy endpoint.
type ProxyStatus int

const (
	// ProxyStatusOK indicates the proxy is reachable and speaks its protocol.
	ProxyStatusOK ProxyStatus = iota

	// ProxyStatusWrongType indicates the endpoint speaks something else.
	ProxyStatusWrongType

	// ProxyStatusCannotConnect indicates the endpoint refused the connection.
	ProxyStatusCannotConnect

	// ProxyStatusTimeout indicates the check timed out.
	ProxyStatusTimeout
)

// String returns a human-readable description of the proxy status.
func (s ProxyStatus) String() string {
	switch s {
	case ProxyStatusOK:
		return "OK"
	case ProxyStatusWrongType:
		return "wrong type"
	case ProxyStatusCannotConnect:
		return "cannot connect"
	case ProxyStatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error returns the error for this status, or nil if OK.
func (s ProxyStatus) Error() error {
	switch s {
	case ProxyStatusOK:
		return nil
	case ProxyStatusWrongType:
		return ErrProxyWrongType
	case ProxyStatusCannotConnect:
		return ErrProxyCannotConnect
	case ProxyStatusTimeout:
		return ErrProxyTimeout
	default:
		return errors.New("unknown proxy status")
	}
}

// Transient reports whether a later check may succeed.
func (s ProxyStatus) Transient() bool {
	return s == ProxyStatusCannotConnect || s == ProxyStatusTimeout
}
