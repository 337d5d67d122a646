package errors

import "net/http"

var ErrNotTaskAssignee = &Exception{
	Message:    "task is assigned to someone else",
	StatusCode: http.StatusForbidden,
}
