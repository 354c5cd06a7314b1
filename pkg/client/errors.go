package client

import "errors"

var (
	// ErrInvalidBaseURL indicates the configured base URL is not absolute.
	ErrInvalidBaseURL = errors.New("client.invalid_base_url")

	// ErrUnauthenticated indicates the server rejected the session proof.
	ErrUnauthenticated = errors.New("client.unauthenticated")

	// ErrRequestFailed wraps transport and non-auth API failures.
	ErrRequestFailed = errors.New("client.request_failed")
)
