// Package handler exposes the auth gateway as a JSON HTTP API on a chi
// router: sign-up, sign-in, OAuth redirect and callback, session
// introspection, sign-out, and password reset. Session tokens travel via a
// pluggable transport (cookie by default); request metadata (client IP,
// user agent) is recorded on every issued session.
package handler
