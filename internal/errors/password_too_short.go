package errors

import "net/http"

var ErrPasswordTooShort = &Exception{
	Message:    "password must be at least 6 characters",
	StatusCode: http.StatusBadRequest,
}
