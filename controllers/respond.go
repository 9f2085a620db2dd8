package controllers

import (
	"errors"
	"net/http"

	"github.com/neeharika666/myntra-hackerramp/logger"
	"github.com/neeharika666/myntra-hackerramp/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps workflow errors to HTTP responses. Typed domain errors
// become 4xx with their message; anything else is a logged 500 with a
// generic body.
func respondError(c *gin.Context, err error) {
	var (
		validationErr   *services.ValidationError
		notFoundErr     *services.NotFoundError
		emptyCartErr    *services.EmptyCartError
		unavailableErr  *services.ProductUnavailableError
		stockErr        *services.InsufficientStockError
		transitionErr   *services.InvalidTransitionError
		returnWindowErr *services.ReturnWindowExpiredError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"message": validationErr.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"message": notFoundErr.Error()})
	case errors.As(err, &emptyCartErr):
		c.JSON(http.StatusBadRequest, gin.H{"message": emptyCartErr.Error()})
	case errors.As(err, &unavailableErr):
		c.JSON(http.StatusConflict, gin.H{"message": unavailableErr.Error()})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{
			"message":   stockErr.Error(),
			"available": stockErr.Available,
		})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{"message": transitionErr.Error()})
	case errors.As(err, &returnWindowErr):
		c.JSON(http.StatusBadRequest, gin.H{"message": returnWindowErr.Error()})
	default:
		logger.Log.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong"})
	}
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload: " + err.Error()})
}
