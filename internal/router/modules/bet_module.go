package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-wager-service/internal/domain/repository"
	handlers "github.com/oksasatya/go-wager-service/internal/interface/http"
	"github.com/oksasatya/go-wager-service/internal/interface/middleware"
	"github.com/oksasatya/go-wager-service/pkg/helpers"
)

// BetModule wires wager routes, all protected.
// POST /bets/place honours Idempotency-Key when a store is configured.
type BetModule struct {
	Handler        *handlers.BetHandler
	JWT            *helpers.JWTManager
	Idempotency    repository.IdempotencyRepository
	IdempotencyTTL time.Duration
	Logger         logrus.FieldLogger
}

func NewBetModule(h *handlers.BetHandler, jwt *helpers.JWTManager, store repository.IdempotencyRepository, ttl time.Duration, logger logrus.FieldLogger) *BetModule {
	return &BetModule{Handler: h, JWT: jwt, Idempotency: store, IdempotencyTTL: ttl, Logger: logger}
}

func (m *BetModule) Register(rg *gin.RouterGroup) {
	bets := rg.Group("/bets")
	bets.Use(middleware.Auth(m.JWT))

	place := []gin.HandlerFunc{m.Handler.PlaceBet}
	if m.Idempotency != nil {
		place = append([]gin.HandlerFunc{middleware.Idempotency(m.Idempotency, m.IdempotencyTTL, m.Logger)}, place...)
	}
	bets.POST("/place", place...)
	bets.GET("", m.Handler.ListWagers)
}
