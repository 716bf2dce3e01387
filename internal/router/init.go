package router

import (
	"github.com/oksasatya/go-wager-service/internal/container"
	handlers "github.com/oksasatya/go-wager-service/internal/interface/http"
	"github.com/oksasatya/go-wager-service/internal/router/modules"
)

// InitModules builds handlers from c and adds every feature module to r.
// Call once during startup, before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	r.Add(modules.NewUserModule(handlers.NewUserHandler(c.Users), c.JWT))
	r.Add(modules.NewBetModule(handlers.NewBetHandler(c.Bets), c.JWT, c.Idempotency, c.Config.IdempotencyTTL, c.Logger))
	if c.Config.DebugMetricsEnabled {
		r.Add(modules.NewMetricsModule())
	}
}
