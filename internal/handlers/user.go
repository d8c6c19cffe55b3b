package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mysteries-backend/internal/middleware"
	"mysteries-backend/internal/models"
	"mysteries-backend/internal/services"
)

// UserHandler serves the calls players make with their own account.
type UserHandler struct {
	state *services.GameState
}

func NewUserHandler(state *services.GameState) *UserHandler {
	return &UserHandler{state: state}
}

func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	account := c.GetString(middleware.AccountKey)
	if account == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx := c.Request.Context()
	userID, err := h.state.GetUserID(ctx, account)
	if err != nil {
		respondError(c, "load user", err)
		return
	}

	response := gin.H{
		"account":   account,
		"authority": h.state.IsAuthority(account),
	}
	if userID == 0 {
		response["user"] = nil
		c.JSON(http.StatusOK, response)
		return
	}

	user, err := h.state.GetUser(ctx, userID)
	if err != nil {
		respondError(c, "load user", err)
		return
	}
	turns, queued, err := h.state.LinePosition(ctx, userID)
	if err != nil {
		respondError(c, "load line position", err)
		return
	}

	response["user"] = user
	if queued {
		response["turns_to_play"] = turns
	}
	c.JSON(http.StatusOK, response)
}

func (h *UserHandler) ClaimUser(c *gin.Context) {
	userID, err := uint32Param(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}
	var req models.ClaimUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	call, err := callFrom(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.state.ClaimUser(c.Request.Context(), call, userID, req.Secret)
	if err != nil {
		respondError(c, "claim user", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"claim":   result,
	})
}

func (h *UserHandler) PurchaseAccessory(c *gin.Context) {
	accessory, err := accessoryParam(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}
	call, err := callFrom(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	userID, err := h.state.PurchaseAccessory(c.Request.Context(), call, accessory)
	if err != nil {
		respondError(c, "purchase accessory", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"user_id":   userID,
		"accessory": accessory,
	})
}

func (h *UserHandler) PurchaseAccessoryWithPoints(c *gin.Context) {
	accessory, err := accessoryParam(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}
	call, err := callFrom(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	remaining, err := h.state.PurchaseAccessoryWithPoints(c.Request.Context(), call, accessory)
	if err != nil {
		respondError(c, "purchase accessory", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"accessory": accessory,
		"points":    remaining,
	})
}
