// internal/app/router.go
package app

import (
	entitlementHandler "campus-service/internal/handlers/entitlement"
	subscriptionHandler "campus-service/internal/handlers/subscription"
	tierHandler "campus-service/internal/handlers/tier"
	wsHandler "campus-service/internal/handlers/ws"
	"campus-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	TierHandler         *tierHandler.TierHandler
	SubscriptionHandler *subscriptionHandler.SubscriptionHandler
	EntitlementHandler  *entitlementHandler.EntitlementHandler
	WSHandler           *wsHandler.WebSocketHandler
	AuthMiddleware      *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== WebSocket ====================
	r.GET("/ws", h.AuthMiddleware.Auth(), h.WSHandler.HandleConnection)

	// ==================== Tiers ====================
	tiers := api.Group("/tiers")
	{
		// Public endpoints - no auth required
		tiers.GET("", h.TierHandler.ListTiers)
		tiers.GET("/:id", h.TierHandler.GetTier)
		tiers.GET("/slug/:slug", h.TierHandler.GetTierBySlug)
	}

	// ==================== Subscriptions ====================
	subscriptions := api.Group("/subscriptions")
	subscriptions.Use(h.AuthMiddleware.Auth())
	{
		subscriptions.POST("", h.SubscriptionHandler.Subscribe)
		subscriptions.GET("", h.SubscriptionHandler.ListMySubscriptions)
		subscriptions.GET("/active", h.SubscriptionHandler.GetActiveSubscription)
		subscriptions.GET("/:id", h.SubscriptionHandler.GetSubscription)
		subscriptions.POST("/:id/cancel", h.SubscriptionHandler.CancelSubscription)
		subscriptions.POST("/expire-check", h.SubscriptionHandler.ExpireCheck)
	}

	// ==================== Entitlement Checks ====================
	access := api.Group("/access")
	access.Use(h.AuthMiddleware.Auth())
	{
		access.GET("/:kind/:contentID", h.EntitlementHandler.CheckAccess)
	}

	// ==================== Admin ====================
	admin := api.Group("/admin")
	admin.Use(h.AuthMiddleware.Auth(), h.AuthMiddleware.RequireAdmin())
	{
		adminTiers := admin.Group("/tiers")
		{
			adminTiers.GET("", h.TierHandler.ListAllTiers)
			adminTiers.GET("/stats", h.TierHandler.GetStats)
			adminTiers.POST("", h.TierHandler.CreateTier)
			adminTiers.POST("/reorder", h.TierHandler.ReorderTiers)
			adminTiers.PUT("/:id", h.TierHandler.UpdateTier)
			adminTiers.DELETE("/:id", h.TierHandler.DeleteTier)
			adminTiers.POST("/:id/toggle", h.TierHandler.ToggleActive)
		}

		adminSubscriptions := admin.Group("/subscriptions")
		{
			adminSubscriptions.GET("", h.SubscriptionHandler.ListSubscriptions)
			adminSubscriptions.GET("/stats", h.SubscriptionHandler.GetStats)
			adminSubscriptions.POST("/:id/activate", h.SubscriptionHandler.ActivateSubscription)
			adminSubscriptions.POST("/:id/renew", h.SubscriptionHandler.RenewSubscription)
		}
	}
}
