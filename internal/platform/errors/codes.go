// Package errors provides structured error handling for the registration service.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Validation errors
	CodeValidation Code = "VALIDATION"

	// Webhook errors
	CodeSignatureInvalid  Code = "AUTH_SIGNATURE_INVALID"
	CodeReferenceMissing  Code = "PAYMENT_REFERENCE_MISSING"
	CodeEnvelopeMalformed Code = "PAYMENT_ENVELOPE_MALFORMED"

	// Storage errors
	CodeNotFound               Code = "NOT_FOUND"
	CodeConflictRetryExhausted Code = "CONFLICT_RETRY_EXHAUSTED"
	CodeStoreUnavailable       Code = "STORE_UNAVAILABLE"

	// Upstream errors
	CodeProcessorUnavailable Code = "PAYMENT_PROCESSOR_UNAVAILABLE"
)
