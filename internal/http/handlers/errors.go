// Package handlers defines HTTP-layer error codes used across endpoints.
//
// These symbolic constants supplement HTTP status codes with a stable,
// machine-readable taxonomy. Codes are lowercase snake_case; generic codes
// mirror common HTTP semantics, while signature_invalid is specific to the
// webhook boundary.
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeRateLimited      = "rate_limited"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeSignatureInvalid = "signature_invalid"
)
