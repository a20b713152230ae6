package api

import (
	"net/http"

	authDelivery "recommend-backend/internal/auth/delivery"
	authUsecase "recommend-backend/internal/auth/usecase"
	ledgerDelivery "recommend-backend/internal/ledger/delivery"
	"recommend-backend/pkg/config"
	"recommend-backend/pkg/database"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, sessionUsecase authUsecase.SessionUsecase, db *gorm.DB, cfg *config.Config, sessionHandler *authDelivery.SessionHandler, ledgerHandler *ledgerDelivery.LedgerHandler) {
	requireSession := authDelivery.AuthMiddleware(sessionUsecase)

	// per-email listings are only gated when configured
	owner := r.Group("")
	if cfg.ProtectOwnerRoutes {
		owner.Use(requireSession)
	}

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "recommendation site is running")
	})

	// Health check (no auth required)
	r.GET("/health", func(c *gin.Context) {
		if err := database.Ping(c.Request.Context(), db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "ok"})
	})

	// Session routes
	r.POST("/jwt", sessionHandler.IssueSession)
	r.POST("/logout", sessionHandler.Logout)
	r.GET("/me", requireSession, sessionHandler.Me)

	// Query routes
	r.POST("/queries", ledgerHandler.CreateQuery)
	r.GET("/queries", ledgerHandler.ListQueries)
	owner.GET("/queries/by-email/:email", ledgerHandler.ListQueriesByEmail)
	r.GET("/queries/:id", ledgerHandler.GetQuery)
	r.GET("/query/:id", ledgerHandler.GetQuery)
	r.PUT("/update-query/:id", ledgerHandler.UpdateQuery)
	r.DELETE("/query/:id", ledgerHandler.DeleteQuery)
	r.GET("/search", ledgerHandler.SearchQueries)

	// Recommendation routes
	r.POST("/recommend", ledgerHandler.CreateRecommendation)
	r.GET("/recommendations/:id", ledgerHandler.ListRecommendationsForQuery)
	owner.GET("/recommendations/for-buyer/:email", ledgerHandler.ListRecommendationsForBuyer)
	owner.GET("/recommended-by-me/:email", ledgerHandler.ListRecommendationsByRecommender)
	owner.GET("/recommendedForMe/:email", ledgerHandler.ListRecommendationsByRecommender)
	r.DELETE("/recommendations/:id", ledgerHandler.DeleteRecommendation)
}
