// Package auth implements the authentication gateway: the session-issuance
// and credential-verification lifecycle for a web application.
//
// The Gateway orchestrates sign-up, sign-in (local password and external
// OAuth providers), session validation, and sign-out against three storage
// interfaces — UserStore, AccountStore, StateStore — plus a session.Store.
// Storage implementations live elsewhere (pkg/mongostore for MongoDB);
// the gateway never talks to a driver directly.
//
// # Identity providers
//
// External providers implement ProviderAdapter and are registered on a
// Registry at startup — an explicit capability list rather than a merged
// configuration object. Adapters for GitHub, Google, and Twitter are
// included, all built on golang.org/x/oauth2's authorization-code flow with
// one-shot state tokens for CSRF protection.
//
// # Lifecycle hooks
//
// Hooks are ordered, named functions with an explicit continue/veto result.
// Before-hooks run inside the owning state transition and may veto prior to
// persistence; after-hooks are best-effort audit points whose failures are
// logged and never roll back a committed mutation.
//
// # Error taxonomy
//
// All failures surface as package sentinels (ErrInvalidCredentials,
// ErrEmailAlreadyExists, ErrUnauthenticated, ...) checked with errors.Is;
// storage-specific errors never leak past the store boundary.
package auth
