package errors

import "net/http"

var ErrMissingCredentials = &Exception{
	Message:    "please enter both email and password",
	StatusCode: http.StatusBadRequest,
}
