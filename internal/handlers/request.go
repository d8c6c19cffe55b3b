package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mysteries-backend/internal/middleware"
	"mysteries-backend/internal/models"
	"mysteries-backend/internal/services"
)

// DepositHeader carries the currency attached to a payable call, as a
// decimal integer.
const DepositHeader = "X-Attached-Deposit"

// callFrom builds the caller context from the authenticated account and the
// attached deposit.
func callFrom(c *gin.Context) (services.Call, error) {
	deposit, err := models.ParseAmount(c.GetHeader(DepositHeader))
	if err != nil {
		return services.Call{}, err
	}
	return services.Call{
		Account: c.GetString(middleware.AccountKey),
		Deposit: deposit,
	}, nil
}

func uint32Param(c *gin.Context, name string) (uint32, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, c.Param(name))
	}
	return uint32(v), nil
}

func accessoryParam(c *gin.Context, name string) (models.AccessoryID, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, c.Param(name))
	}
	return models.AccessoryID(v), nil
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request",
		"details": err.Error(),
	})
}

// statusFor maps state machine rejections to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, services.ErrInvalidSecret):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrWrongDeposit),
		errors.Is(err, services.ErrWrongPrice),
		errors.Is(err, services.ErrInsufficientPoints):
		return http.StatusPaymentRequired
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrNotClaimed):
		return http.StatusNotFound
	case errors.Is(err, services.ErrAlreadyOwned),
		errors.Is(err, services.ErrAlreadyQueued):
		return http.StatusConflict
	case errors.Is(err, services.ErrCapacityExceeded),
		errors.Is(err, services.ErrOverflow),
		errors.Is(err, services.ErrInvalidRange):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, action string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "action", action, "path", c.Request.URL.Path, "error", err)
		c.Error(err)
		c.JSON(status, gin.H{"error": "Failed to " + action})
		return
	}
	c.JSON(status, gin.H{
		"error":   "Failed to " + action,
		"details": err.Error(),
	})
}
