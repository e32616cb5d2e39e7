package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/quizmint/qm-engine/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, identityCfg middleware.IdentityConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Session lifecycle (guest key or wallet token)
		sessions := v1.Group("/sessions", middleware.Identity(identityCfg))
		{
			sessions.POST("", handler.StartSession)
			sessions.GET("/:id", handler.GetSession)
			sessions.POST("/:id/answers", handler.SubmitAnswer)
			sessions.POST("/:id/complete", handler.CompleteSession)
			sessions.POST("/:id/forfeit", handler.ForfeitSession)
		}

		// Eligibility and minting (guest key or wallet token)
		v1.GET("/eligibilities", middleware.Identity(identityCfg), handler.ListEligibilities)
		v1.POST("/eligibilities/:id/mint", middleware.Identity(identityCfg), handler.MintReward)
		v1.GET("/mints/:id", middleware.Identity(identityCfg), handler.GetMintOperation)

		// Guest-to-wallet transfer (wallet token only)
		v1.POST("/identity/transfer", middleware.WalletIdentity(identityCfg), handler.TransferEligibilities)

		// Forging (progress is readable by anyone with an identity,
		// starting a forge needs a wallet)
		forge := v1.Group("/forge")
		{
			forge.GET("/progress", middleware.Identity(identityCfg), handler.GetForgeProgress)
			forge.POST("", middleware.WalletIdentity(identityCfg), handler.StartForge)
			forge.GET("/operations/:id", middleware.Identity(identityCfg), handler.GetForgeOperation)
		}

		// Leaderboard and seasons (public read access)
		v1.GET("/leaderboard", handler.GetLeaderboard)
		v1.GET("/seasons/current", handler.GetCurrentSeason)
	}
}
