// Package websqldriver is the top-level convenience layer of the WebSQL Go
// driver. Most programs only need Open (or one of its auth variants) and the
// client package's RequestBuilder.
package websqldriver

import (
	"github.com/dan-strohschein/websql-driver/client"
)

// Version is the build version of the driver.
const Version = client.Version

// Open creates a client for an endpoint that requires no authentication.
func Open(url string) (*client.Client, error) {
	opts := client.DefaultOptions()
	opts.URL = url
	return client.NewClient(&opts)
}

// OpenWithBasicAuth creates a client that authenticates with an HTTP Basic
// Authorization header.
func OpenWithBasicAuth(url, user, password string) (*client.Client, error) {
	opts := client.DefaultOptions()
	opts.URL = url
	opts.AuthMode = client.AuthBasic
	opts.User = user
	opts.Password = password
	return client.NewClient(&opts)
}

// OpenWithInlineAuth creates a client that embeds credentials in the request
// body.
func OpenWithInlineAuth(url, user, password string) (*client.Client, error) {
	opts := client.DefaultOptions()
	opts.URL = url
	opts.AuthMode = client.AuthInline
	opts.User = user
	opts.Password = password
	return client.NewClient(&opts)
}
