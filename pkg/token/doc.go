// Package token generates the two token kinds the auth subsystem needs:
// opaque random tokens (session identifiers, OAuth state) and compact
// HMAC-signed payload tokens (password reset links).
//
// Opaque tokens carry no data; their only property is unguessability.
// Signed tokens carry a JSON payload whose integrity is protected by a
// truncated HMAC-SHA256 signature verified in constant time. Neither kind is
// encrypted: do not put secrets in signed token payloads.
package token
