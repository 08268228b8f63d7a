package dashboard

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/tickora/internal/store"
)

type errorBody struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Refs    []string `json:"refs,omitempty"`
}

// statusOf maps a domain error to an HTTP status and error code.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, store.ErrValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// fail writes err as a JSON error response.
func fail(c *gin.Context, err error) {
	status, code := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": errorBody{
		Code:    code,
		Message: msg,
		Refs:    store.RefsOf(err),
	}})
}

// badRequest reports malformed request input as a validation error.
func badRequest(c *gin.Context, format string, args ...any) {
	fail(c, store.Invalidf("request", "", format, args...))
}
