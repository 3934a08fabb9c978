package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"backoffice/internal/dispatch"
	"backoffice/internal/documents"
	"backoffice/internal/tenant"
)

// StatusFor maps domain errors onto HTTP status codes.
func StatusFor(err error) int {
	var complete *dispatch.CompleteFailureError
	switch {
	case errors.Is(err, tenant.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, tenant.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, tenant.ErrNotFound), errors.Is(err, tenant.ErrUnknownTenant):
		return http.StatusNotFound
	case errors.Is(err, tenant.ErrInvalidMode), errors.Is(err, tenant.ErrMissingTenantClaim),
		errors.Is(err, documents.ErrUnsupportedType):
		return http.StatusBadRequest
	case errors.Is(err, documents.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, dispatch.ErrPrimaryFailedNoFallback), errors.As(err, &complete):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Fail writes the error envelope with the mapped status.
func Fail(c *gin.Context, err error) {
	c.JSON(StatusFor(err), ErrorResponse{Success: false, Message: err.Error()})
}

// FailWithCode writes the error envelope with an explicit status and code.
func FailWithCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{Success: false, Code: code, Message: message})
}

// OK writes a success envelope around data.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// Created writes a 201 envelope around data.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}
