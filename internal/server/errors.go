package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resumeqa/internal/domain"
)

// Error codes
const (
	ErrBadRequestCode         = "BAD_REQUEST"
	ErrInternalCode           = "INTERNAL_ERROR"
	ErrServiceUnavailableCode = "SERVICE_UNAVAILABLE"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

func respondBadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Code:   ErrBadRequestCode,
		Detail: "Invalid request body: " + err.Error(),
	})
}

// respondQueryError maps service errors onto HTTP statuses.
func respondQueryError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrNotIndexed) {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse{
			Code:   ErrServiceUnavailableCode,
			Detail: "Error processing query: " + err.Error(),
		})
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Code:   ErrInternalCode,
		Detail: "Error processing query: " + err.Error(),
	})
}
