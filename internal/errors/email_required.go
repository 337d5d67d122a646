package errors

import "net/http"

var ErrEmailRequired = &Exception{
	Message:    "please enter your email address",
	StatusCode: http.StatusBadRequest,
}
