package errors

import "net/http"

var ErrInvalidCredentials = &Exception{
	Message:    "login failed, please check your credentials",
	StatusCode: http.StatusUnauthorized,
}
