package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-wager-service/internal/application"
	"github.com/oksasatya/go-wager-service/pkg/response"
)

func statusFor(kind application.ErrorKind) int {
	switch kind {
	case application.KindValidation:
		return http.StatusBadRequest
	case application.KindAuthentication:
		return http.StatusUnauthorized
	case application.KindNotFound:
		return http.StatusNotFound
	case application.KindConflict:
		return http.StatusConflict
	case application.KindInsufficientFunds:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// fail writes a failed use-case result. The kind goes in the error field so
// clients can branch without parsing the message.
func fail[T any](c *gin.Context, res application.Result[T]) {
	response.Error[any](c, statusFor(res.Kind), res.Message, gin.H{"kind": res.Kind, "retryable": res.Kind.Retryable()})
}
