package errors

import "net/http"

// MapToHTTPStatus translates the error taxonomy into a response status.
// Auth variants are not distinguished to the client.
func MapToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsAuth(err):
		return http.StatusUnauthorized
	case IsDomain(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Reason returns the message exposed to clients for err.
func Reason(err error) string {
	switch {
	case IsAuth(err):
		return "bad user id or token"
	case IsDomain(err):
		for _, target := range domainErrors {
			if Is(err, target) {
				return target.Error()
			}
		}
		return err.Error()
	default:
		return ErrInternal.Error()
	}
}
