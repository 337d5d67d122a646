package errors

import "net/http"

var ErrSessionExpired = &Exception{
	Message:    "session expired",
	StatusCode: http.StatusUnauthorized,
}
