// Package client is a typed facade over the auth HTTP API for Go services
// and tools that consume it. Session proof travels automatically: a cookie
// jar by default, or a bearer token via WithBearerToken. The current session
// is cached so CurrentSession never blocks; Session revalidates when the
// cache is older than the configured refresh interval, and SignOut clears
// the cache unconditionally.
package client
