package errors

import "net/http"

var ErrNotAuthenticated = &Exception{
	Message:    "not signed in",
	StatusCode: http.StatusUnauthorized,
}
