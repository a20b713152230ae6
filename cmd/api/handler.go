package api

import (
	"net/http"

	authDelivery "recommend-backend/internal/auth/delivery"
	authUsecase "recommend-backend/internal/auth/usecase"
	ledgerDelivery "recommend-backend/internal/ledger/delivery"
	ledgerUsecase "recommend-backend/internal/ledger/usecase"
	"recommend-backend/pkg/config"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	sessionUsecase authUsecase.SessionUsecase
	db             *gorm.DB
	config         *config.Config
	sessionHandler *authDelivery.SessionHandler
	ledgerHandler  *ledgerDelivery.LedgerHandler
}

func NewHandler(sessionUc authUsecase.SessionUsecase, ledgerUc ledgerUsecase.LedgerUsecase, db *gorm.DB, cfg *config.Config) *Handler {
	cookies := authDelivery.NewCookiePolicy(cfg.IsProduction())

	return &Handler{
		sessionUsecase: sessionUc,
		db:             db,
		config:         cfg,
		sessionHandler: authDelivery.NewSessionHandler(sessionUc, cookies),
		ledgerHandler:  ledgerDelivery.NewLedgerHandler(ledgerUc),
	}
}

// Engine builds the router with middleware and every route registered.
func (h *Handler) Engine() *gin.Engine {
	if h.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.sessionUsecase, h.db, h.config, h.sessionHandler, h.ledgerHandler)
	return r
}

func (h *Handler) Start(addr string) error {
	return h.Engine().Run(addr)
}
