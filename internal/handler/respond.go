package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"tour-app/internal/models"
	"tour-app/internal/utils"
)

// respondError maps service/store failures onto the HTTP error taxonomy.
// Anything unrecognized is logged and answered with a generic 500.
func respondError(c *gin.Context, err error) {
	var vErrs validator.ValidationErrors
	switch {
	case errors.As(err, &vErrs):
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "fail",
			"error":   models.ErrValidation.Error(),
			"details": utils.ParseErrors(err),
		})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"status": "fail", "error": err.Error()})
	case errors.Is(err, models.ErrInvalidID),
		errors.Is(err, models.ErrBadRequest),
		errors.Is(err, models.ErrNoPhoto):
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "error": err.Error()})
	case errors.Is(err, models.ErrUpstream):
		c.JSON(http.StatusBadGateway, gin.H{"status": "error", "error": err.Error()})
	default:
		log.Printf("[ERROR] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "something went wrong"})
	}
}
