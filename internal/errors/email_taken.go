package errors

import "net/http"

var ErrEmailTaken = &Exception{
	Message:    "an account with this email already exists",
	StatusCode: http.StatusConflict,
}
