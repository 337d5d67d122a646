package errors

import "net/http"

var ErrAdminOnly = &Exception{
	Message:    "only admins can do this",
	StatusCode: http.StatusForbidden,
}
