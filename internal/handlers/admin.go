package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mysteries-backend/internal/models"
	"mysteries-backend/internal/services"
)

// AdminHandler serves the authority-only operations.
type AdminHandler struct {
	state *services.GameState
}

func NewAdminHandler(state *services.GameState) *AdminHandler {
	return &AdminHandler{state: state}
}

func (h *AdminHandler) AllocateUser(c *gin.Context) {
	var req models.AllocateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if (req.Secret == "") == (req.Digest == "") {
		badRequest(c, errors.New("exactly one of secret or digest is required"))
		return
	}

	call, err := callFrom(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	var userID uint32
	if req.Digest != "" {
		userID, err = h.state.AllocateUserDigest(c.Request.Context(), call, req.Digest)
	} else {
		userID, err = h.state.AllocateUser(c.Request.Context(), call, req.Secret)
	}
	if err != nil {
		respondError(c, "allocate user", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user_id": userID})
}

func (h *AdminHandler) SetUserOwnership(c *gin.Context) {
	userID, err := uint32Param(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}
	var req models.SetOwnershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	call, err := callFrom(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.state.SetUserOwnership(c.Request.Context(), call, userID, req.Account)
	if err != nil {
		respondError(c, "set user ownership", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) GrantAccessory(c *gin.Context) {
	userID, err := uint32Param(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}
	accessory, err := accessoryParam(c, "accessory")
	if err != nil {
		badRequest(c, err)
		return
	}
	call, err := callFrom(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	if err := h.state.GrantAccessory(c.Request.Context(), call, userID, accessory); err != nil {
		respondError(c, "grant accessory", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": userID, "accessory": accessory})
}

func (h *AdminHandler) RewardPoints(c *gin.Context) {
	userID, err := uint32Param(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}
	var req models.RewardPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	call, err := callFrom(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	total, err := h.state.RewardPoints(c.Request.Context(), call, userID, req.Amount)
	if err != nil {
		respondError(c, "reward points", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": userID, "points": total})
}

func (h *AdminHandler) IssueToken(c *gin.Context) {
	userID, err := uint32Param(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}
	var metadata models.TokenMetadata
	if err := c.ShouldBindJSON(&metadata); err != nil {
		badRequest(c, err)
		return
	}
	call, err := callFrom(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	tokenID, err := h.state.IssueToken(c.Request.Context(), call, userID, metadata)
	if err != nil {
		respondError(c, "issue token", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token_id": models.FormatUint32(tokenID), "owner_user_id": userID})
}

func (h *AdminHandler) UnlockPublicAccessory(c *gin.Context) {
	h.publicAccessory(c, "unlock public accessory", h.state.UnlockPublicAccessory)
}

func (h *AdminHandler) RevokePublicAccessory(c *gin.Context) {
	h.publicAccessory(c, "revoke public accessory", h.state.RevokePublicAccessory)
}

func (h *AdminHandler) publicAccessory(c *gin.Context, action string, op func(ctx context.Context, call services.Call, id models.AccessoryID) error) {
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

	if err := op(c.Request.Context(), call, accessory); err != nil {
		respondError(c, action, err)
		return
	}

	catalog, err := h.state.GlobalAccessories(c.Request.Context())
	if err != nil {
		respondError(c, "load catalog", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessories": catalog})
}

func (h *AdminHandler) SetPremiumPricing(c *gin.Context) {
	accessory, err := accessoryParam(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}
	var req models.PremiumPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	price, err := models.ParseAmount(req.Price)
	if err != nil {
		badRequest(c, err)
		return
	}
	call, err := callFrom(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	if err := h.state.SetPremiumPricing(c.Request.Context(), call, accessory, price, req.PointsPrice); err != nil {
		respondError(c, "set premium pricing", err)
		return
	}

	details, err := h.state.GetAccessory(c.Request.Context(), accessory)
	if err != nil {
		respondError(c, "load accessory", err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *AdminHandler) Enqueue(c *gin.Context) {
	var req models.EnqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	call, err := callFrom(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	turn, err := h.state.Enqueue(c.Request.Context(), call, req.UserID)
	if err != nil {
		respondError(c, "enqueue user", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": req.UserID, "turn": turn})
}

func (h *AdminHandler) Dequeue(c *gin.Context) {
	call, err := callFrom(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	userID, ok, err := h.state.Dequeue(c.Request.Context(), call)
	if err != nil {
		respondError(c, "dequeue user", err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"empty": true})
		return
	}

	c.JSON(http.StatusOK, gin.H{"empty": false, "user_id": userID})
}

func (h *AdminHandler) SetPriceToUnlockUser(c *gin.Context) {
	var req models.SetPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	price, err := models.ParseAmount(req.Price)
	if err != nil {
		badRequest(c, err)
		return
	}
	call, err := callFrom(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	if err := h.state.SetPriceToUnlockUser(c.Request.Context(), call, price); err != nil {
		respondError(c, "set unlock price", err)
		return
	}
	h.respondConfig(c)
}

func (h *AdminHandler) SetMaxPointsReward(c *gin.Context) {
	h.setUint32(c, "set max points reward", h.state.SetMaxPointsReward)
}

func (h *AdminHandler) SetMaxLineCapacity(c *gin.Context) {
	h.setUint32(c, "set max line capacity", h.state.SetMaxLineCapacity)
}

func (h *AdminHandler) setUint32(c *gin.Context, action string, op func(ctx context.Context, call services.Call, v uint32) error) {
	var req models.SetUint32Request
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	call, err := callFrom(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	if err := op(c.Request.Context(), call, req.Value); err != nil {
		respondError(c, action, err)
		return
	}
	h.respondConfig(c)
}

func (h *AdminHandler) SetBaseURI(c *gin.Context) {
	var req models.SetBaseURIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	call, err := callFrom(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	if err := h.state.SetBaseURI(c.Request.Context(), call, req.BaseURI); err != nil {
		respondError(c, "set base uri", err)
		return
	}
	h.respondConfig(c)
}

func (h *AdminHandler) Init(c *gin.Context) {
	var metadata models.ContractMetadata
	if err := c.ShouldBindJSON(&metadata); err != nil {
		badRequest(c, err)
		return
	}
	call, err := callFrom(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	if err := h.state.Init(c.Request.Context(), call, metadata); err != nil {
		respondError(c, "initialize", err)
		return
	}
	h.respondConfig(c)
}

func (h *AdminHandler) respondConfig(c *gin.Context) {
	cfg, err := h.state.GetGameConfig(c.Request.Context())
	if err != nil {
		respondError(c, "load config", err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}
