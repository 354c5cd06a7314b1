// Package session defines the session record, its persistence interface, and
// the HTTP transports that carry session tokens.
//
// A Session proves that a user authenticated, for a bounded window: it holds
// an opaque token, the owning user id, client metadata, and creation/expiry
// timestamps. Expiry is checked at read time by every store, so a session
// whose expiry passed behaves identically to a revoked one regardless of
// cleanup timing.
//
// Two store implementations live here: MemoryStore (tests, single-process)
// and RedisStore (TTL-keyed, multi-process). The MongoDB-backed store lives
// in pkg/mongostore next to the other document-database stores.
//
// Transports move the token over HTTP: CookieTransport for browsers
// (HttpOnly, SameSite=Lax), HeaderTransport for bearer-token API clients,
// and CompositeTransport to serve both from one surface.
package session
