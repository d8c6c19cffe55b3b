package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mysteries-backend/internal/models"
	"mysteries-backend/internal/services"
)

// QueryHandler serves the read-only views. None of them need a caller.
type QueryHandler struct {
	state *services.GameState
}

func NewQueryHandler(state *services.GameState) *QueryHandler {
	return &QueryHandler{state: state}
}

func (h *QueryHandler) Health(c *gin.Context) {
	if err := h.state.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *QueryHandler) GetUser(c *gin.Context) {
	userID, err := uint32Param(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.state.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "load user", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *QueryHandler) GetUserIDForAccount(c *gin.Context) {
	account := c.Param("account")
	userID, err := h.state.GetUserID(c.Request.Context(), account)
	if err != nil {
		respondError(c, "load user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": account, "user_id": userID})
}

func (h *QueryHandler) GetUserPoints(c *gin.Context) {
	userID, err := uint32Param(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}
	points, err := h.state.Points(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "load points", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "points": points})
}

func (h *QueryHandler) GetUserAccessories(c *gin.Context) {
	userID, err := uint32Param(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}
	owned, err := h.state.UserAccessories(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "load accessories", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "accessories": owned})
}

func (h *QueryHandler) HasAccessory(c *gin.Context) {
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
	owned, err := h.state.HasAccessory(c.Request.Context(), userID, accessory)
	if err != nil {
		respondError(c, "load accessories", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "accessory": accessory, "owned": owned})
}

func (h *QueryHandler) GetUserTokens(c *gin.Context) {
	userID, err := uint32Param(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}
	tokens, err := h.state.ListTokens(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "load tokens", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "tokens": tokens})
}

func (h *QueryHandler) GetAccessory(c *gin.Context) {
	accessory, err := accessoryParam(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}
	details, err := h.state.GetAccessory(c.Request.Context(), accessory)
	if err != nil {
		respondError(c, "load accessory", err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *QueryHandler) GetGlobalAccessories(c *gin.Context) {
	catalog, err := h.state.GlobalAccessories(c.Request.Context())
	if err != nil {
		respondError(c, "load catalog", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessories": catalog})
}

func (h *QueryHandler) GetPremiumAccessories(c *gin.Context) {
	ctx := c.Request.Context()
	ids, err := h.state.PremiumAccessories(ctx)
	if err != nil {
		respondError(c, "load catalog", err)
		return
	}

	catalog := make([]*models.Accessory, 0, len(ids))
	for _, id := range ids {
		details, err := h.state.GetAccessory(ctx, id)
		if err != nil {
			respondError(c, "load catalog", err)
			return
		}
		catalog = append(catalog, details)
	}
	c.JSON(http.StatusOK, gin.H{"accessories": catalog})
}

func (h *QueryHandler) GetLine(c *gin.Context) {
	line, err := h.state.SnapshotLine(c.Request.Context())
	if err != nil {
		respondError(c, "load line", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"line": line})
}

func (h *QueryHandler) GetLineStatus(c *gin.Context) {
	status, err := h.state.LineStatus(c.Request.Context())
	if err != nil {
		respondError(c, "load line", err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *QueryHandler) GetLinePosition(c *gin.Context) {
	userID, err := uint32Param(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}
	turns, queued, err := h.state.LinePosition(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "load line position", err)
		return
	}

	response := gin.H{"user_id": userID, "queued": queued}
	if queued {
		response["turns_to_play"] = turns
	}
	c.JSON(http.StatusOK, response)
}

func (h *QueryHandler) GetConfig(c *gin.Context) {
	cfg, err := h.state.GetGameConfig(c.Request.Context())
	if err != nil {
		respondError(c, "load config", err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *QueryHandler) NFTMetadata(c *gin.Context) {
	metadata, err := h.state.ContractMetadata(c.Request.Context())
	if err != nil {
		respondError(c, "load contract metadata", err)
		return
	}
	c.JSON(http.StatusOK, metadata)
}

func (h *QueryHandler) NFTToken(c *gin.Context) {
	token, err := h.state.ResolveToken(c.Request.Context(), c.Param("token_id"))
	if err != nil {
		respondError(c, "load token", err)
		return
	}
	c.JSON(http.StatusOK, token)
}

func (h *QueryHandler) NFTTokenMetadata(c *gin.Context) {
	metadata, err := h.state.TokenMetadata(c.Request.Context(), c.Param("token_id"))
	if err != nil {
		respondError(c, "load token metadata", err)
		return
	}
	c.JSON(http.StatusOK, metadata)
}

func (h *QueryHandler) NFTTokensForOwner(c *gin.Context) {
	tokens, err := h.state.TokensForOwner(c.Request.Context(), c.Param("account"))
	if err != nil {
		respondError(c, "load tokens", err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

func (h *QueryHandler) NFTTokenIDsForOwner(c *gin.Context) {
	ids, err := h.state.TokenIDsForOwner(c.Request.Context(), c.Param("account"))
	if err != nil {
		respondError(c, "load tokens", err)
		return
	}
	c.JSON(http.StatusOK, ids)
}

func (h *QueryHandler) NFTSupplyForOwner(c *gin.Context) {
	supply, err := h.state.SupplyForOwner(c.Request.Context(), c.Param("account"))
	if err != nil {
		respondError(c, "load supply", err)
		return
	}
	// NEP-171 returns the supply as a decimal string.
	c.JSON(http.StatusOK, gin.H{"supply": models.FormatUint32(supply)})
}
