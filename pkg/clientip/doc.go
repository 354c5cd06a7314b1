// Package clientip extracts the originating client IP from HTTP requests,
// honoring the standard reverse-proxy headers (X-Forwarded-For, X-Real-IP)
// with validation of every candidate before use. Spoofed or malformed header
// values are skipped, never returned.
package clientip
