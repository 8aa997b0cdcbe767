package errors

import "net/http"

// HTTPStatus maps a domain error code to its transport status.
//
// Signature failures intentionally map to 400 rather than 401: the payment
// processor's delivery contract treats any non-2xx as a retry trigger and the
// response must not reveal why verification failed.
func HTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeSignatureInvalid, CodeReferenceMissing, CodeEnvelopeMalformed:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflictRetryExhausted, CodeStoreUnavailable, CodeProcessorUnavailable:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
