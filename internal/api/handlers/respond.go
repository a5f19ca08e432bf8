// Package handlers implements the HTTP handlers for the entitlement API.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nexorasim/entitlement/internal/carrier"
	"github.com/nexorasim/entitlement/internal/entitlement"
)

// respondError maps domain errors onto HTTP status codes. Unknown errors are
// logged and returned as a generic 500 so internals never leak to callers.
func respondError(c *gin.Context, logger zerolog.Logger, err error) {
	var callErr *carrier.CallError

	switch {
	case errors.Is(err, entitlement.ErrInvalidICCID),
		errors.Is(err, entitlement.ErrValidation),
		errors.Is(err, carrier.ErrUnknownCarrier):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, entitlement.ErrProfileNotFound),
		errors.Is(err, entitlement.ErrDeviceNotFound),
		errors.Is(err, entitlement.ErrOperationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, entitlement.ErrConflict),
		errors.Is(err, entitlement.ErrDeviceExists),
		errors.Is(err, entitlement.ErrInvalidProfileState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &callErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "carrier call failed"})
	default:
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
