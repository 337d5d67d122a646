package errors

import "net/http"

var ErrMissingFields = &Exception{
	Message:    "please fill in all fields",
	StatusCode: http.StatusBadRequest,
}
