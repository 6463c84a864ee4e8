package client

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/dan-strohschein/websql-driver/transport"
)

// AuthMode selects how credentials are presented to the server.
type AuthMode int

const (
	// AuthNone sends no credentials.
	AuthNone AuthMode = iota

	// AuthInline embeds credentials in the request body under a
	// "credentials" field.
	AuthInline

	// AuthBasic attaches a standard HTTP Basic Authorization header.
	AuthBasic
)

// String returns the string representation of the auth mode.
func (m AuthMode) String() string {
	switch m {
	case AuthNone:
		return "NONE"
	case AuthInline:
		return "INLINE"
	case AuthBasic:
		return "BASIC"
	default:
		return "UNKNOWN"
	}
}

// Protocol is the URL scheme used by BuildURL.
type Protocol int

const (
	HTTP Protocol = iota
	HTTPS
)

// String returns the scheme for the protocol.
func (p Protocol) String() string {
	if p == HTTPS {
		return "https"
	}
	return "http"
}

// ClientOptions configures the WebSQL client. All fields are read once by
// NewClient and are immutable afterwards; a built Client is safe to share
// across goroutines.
type ClientOptions struct {
	// URL is the full endpoint of the target database, e.g.
	// "http://localhost:12321/mydb". Required. See BuildURL for composing it
	// from components.
	URL string

	// AuthMode selects how User/Password are presented.
	// Default: AuthNone
	AuthMode AuthMode

	// User is the username for AuthInline and AuthBasic.
	User string

	// Password is the password for AuthInline and AuthBasic.
	Password string

	// DefaultTimeout is applied to Send calls whose context carries no
	// deadline. Default: 30s
	DefaultTimeout time.Duration

	// DebugMode enables verbose error formatting and raw body logging.
	// Default: false
	DebugMode bool

	// Logger is the logger implementation to use.
	// If nil, a default JSON logger is used.
	Logger Logger

	// LogLevel sets the minimum log level (DEBUG, INFO, WARN, ERROR).
	// Default: "INFO"
	LogLevel string

	// UserAgent is sent with every request.
	UserAgent string

	// Transport overrides the HTTP transport. When nil, a pooled net/http
	// transport is built from the options below.
	Transport transport.Transport

	// TLSConfig provides custom TLS configuration for the default transport.
	TLSConfig *tls.Config

	// TLSInsecureSkipVerify skips certificate validation (for development only).
	// Default: false
	TLSInsecureSkipVerify bool

	// MaxIdleConns is the connection pool size of the default transport.
	// Default: 10
	MaxIdleConns int

	// IdleConnTimeout is the duration after which idle connections of the
	// default transport are closed. Default: 5m
	IdleConnTimeout time.Duration

	// HTTPClient overrides the underlying *http.Client of the default
	// transport. Mostly useful for tests.
	HTTPClient *http.Client
}

// DefaultOptions returns ClientOptions with default values. The URL still has
// to be set.
func DefaultOptions() ClientOptions {
	return ClientOptions{
		AuthMode:        AuthNone,
		DefaultTimeout:  30 * time.Second,
		LogLevel:        "INFO",
		UserAgent:       "websql-driver/" + Version,
		MaxIdleConns:    10,
		IdleConnTimeout: 5 * time.Minute,
	}
}

// BuildURL composes an endpoint URL from components. Port 0 omits the port
// and lets the scheme's default apply.
func BuildURL(protocol Protocol, host string, port int, databaseID string) (string, error) {
	if host == "" {
		return "", errInvalidArgument("cannot specify an empty host", nil)
	}
	if databaseID == "" {
		return "", errInvalidArgument("cannot specify an empty database ID", nil)
	}
	if port < 0 || port > 65535 {
		return "", errInvalidArgument("cannot specify an invalid port", map[string]interface{}{
			"port": port,
		})
	}

	if port == 0 {
		return fmt.Sprintf("%s://%s/%s", protocol, host, databaseID), nil
	}
	return fmt.Sprintf("%s://%s:%d/%s", protocol, host, port, databaseID), nil
}
