package errors

import "net/http"

var ErrInvalidCategory = &Exception{
	Message:    "unknown category",
	StatusCode: http.StatusBadRequest,
}
