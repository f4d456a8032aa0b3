package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"investiq-backend/service"
)

// respondError maps service errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"

	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
		code = "INVALID_REQUEST"
	case errors.Is(err, service.ErrCompanyNotFound):
		status = http.StatusNotFound
		code = "COMPANY_NOT_FOUND"
	case errors.Is(err, service.ErrEmbeddingUnavailable),
		errors.Is(err, service.ErrGenerationUnavailable),
		errors.Is(err, service.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
		code = "UPSTREAM_UNAVAILABLE"
	}

	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": err.Error(),
		},
	})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": err.Error(),
		},
	})
}
