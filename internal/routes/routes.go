package routes

import (
	"github.com/gin-gonic/gin"

	"mysteries-backend/internal/config"
	"mysteries-backend/internal/handlers"
	"mysteries-backend/internal/middleware"
	"mysteries-backend/internal/services"
)

// Setup mounts every route on router.
func Setup(
	router *gin.Engine,
	cfg *config.Config,
	state *services.GameState,
	jwtService *services.JWTService,
	limiter middleware.RateLimiter,
	hub *handlers.WebSocketHub,
) {
	adminHandler := handlers.NewAdminHandler(state)
	userHandler := handlers.NewUserHandler(state)
	queryHandler := handlers.NewQueryHandler(state)
	wsHandler := handlers.NewWebSocketHandler(hub)

	router.GET("/health", queryHandler.Health)

	// Read-only views, no caller required
	public := router.Group("/public")
	{
		public.GET("/config", queryHandler.GetConfig)

		public.GET("/users/:id", queryHandler.GetUser)
		public.GET("/users/:id/points", queryHandler.GetUserPoints)
		public.GET("/users/:id/accessories", queryHandler.GetUserAccessories)
		public.GET("/users/:id/accessories/:accessory", queryHandler.HasAccessory)
		public.GET("/users/:id/tokens", queryHandler.GetUserTokens)
		public.GET("/users/:id/line", queryHandler.GetLinePosition)
		public.GET("/accounts/:account/user", queryHandler.GetUserIDForAccount)

		public.GET("/catalog/public", queryHandler.GetGlobalAccessories)
		public.GET("/catalog/premium", queryHandler.GetPremiumAccessories)
		public.GET("/accessories/:id", queryHandler.GetAccessory)

		public.GET("/line", queryHandler.GetLine)
		public.GET("/line/status", queryHandler.GetLineStatus)

		nft := public.Group("/nft")
		{
			nft.GET("/metadata", queryHandler.NFTMetadata)
			nft.GET("/tokens/:token_id", queryHandler.NFTToken)
			nft.GET("/tokens/:token_id/metadata", queryHandler.NFTTokenMetadata)
			nft.GET("/owners/:account/tokens", queryHandler.NFTTokensForOwner)
			nft.GET("/owners/:account/token-ids", queryHandler.NFTTokenIDsForOwner)
			nft.GET("/owners/:account/supply", queryHandler.NFTSupplyForOwner)
		}
	}

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtService))
	protected.Use(middleware.RateLimitMiddleware(limiter, cfg.RateLimitPerMinute))
	{
		protected.GET("/me", userHandler.GetCurrentUser)
		protected.GET("/ws", wsHandler.HandleWebSocket)

		protected.POST("/users/:id/claim", userHandler.ClaimUser)
		protected.POST("/accessories/:id/purchase", userHandler.PurchaseAccessory)
		protected.POST("/accessories/:id/purchase-with-points", userHandler.PurchaseAccessoryWithPoints)

		admin := protected.Group("/admin")
		admin.Use(middleware.AuthorityOnly(state.Authority()))
		{
			admin.POST("/init", adminHandler.Init)

			admin.POST("/users", adminHandler.AllocateUser)
			admin.POST("/users/:id/ownership", adminHandler.SetUserOwnership)
			admin.POST("/users/:id/accessories/:accessory", adminHandler.GrantAccessory)
			admin.POST("/users/:id/points", adminHandler.RewardPoints)
			admin.POST("/users/:id/tokens", adminHandler.IssueToken)

			admin.POST("/accessories/public/:id", adminHandler.UnlockPublicAccessory)
			admin.DELETE("/accessories/public/:id", adminHandler.RevokePublicAccessory)
			admin.PUT("/accessories/premium/:id", adminHandler.SetPremiumPricing)

			admin.POST("/line", adminHandler.Enqueue)
			admin.POST("/line/dequeue", adminHandler.Dequeue)

			admin.PUT("/config/unlock-price", adminHandler.SetPriceToUnlockUser)
			admin.PUT("/config/max-points-reward", adminHandler.SetMaxPointsReward)
			admin.PUT("/config/max-line-capacity", adminHandler.SetMaxLineCapacity)
			admin.PUT("/config/base-uri", adminHandler.SetBaseURI)
		}
	}
}
