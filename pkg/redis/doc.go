// Package redis connects to a Redis server with retry and exposes a
// readiness probe. Used for the Redis-backed session store when REDIS_URL is
// configured; when it is absent, Redis features stay disabled.
package redis
