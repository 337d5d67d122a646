package errors

import "net/http"

var ErrProfileNotFound = &Exception{
	Message:    "user profile not found, please contact admin",
	StatusCode: http.StatusForbidden,
}
