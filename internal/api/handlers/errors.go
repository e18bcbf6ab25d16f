package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"battery-dispatch/internal/api/models"
	"battery-dispatch/internal/model"
)

// StatusForKind maps a simulation error kind to an HTTP status.
func StatusForKind(k model.Kind) int {
	switch k {
	case model.KindMalformedInput, model.KindInsufficientData, model.KindGridIncompatible, model.KindInvalidConfig:
		return http.StatusBadRequest
	case model.KindConstraintInfeasible:
		return http.StatusUnprocessableEntity
	case model.KindProblemTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func errorDetail(err error) (int, models.ErrorDetail) {
	if k := model.KindOf(err); k != "" {
		var e *model.Error
		errors.As(err, &e)
		return StatusForKind(k), models.ErrorDetail{Code: string(k), Message: e.Message}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable, models.ErrorDetail{Code: "CANCELLED", Message: err.Error()}
	}
	return http.StatusInternalServerError, models.ErrorDetail{Code: "SIMULATION_ERROR", Message: err.Error()}
}

func writeError(c *gin.Context, err error) {
	status, detail := errorDetail(err)
	_ = c.Error(err)
	c.JSON(status, models.ErrorResponse{Error: detail})
}

func writeBindError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		},
	})
}
