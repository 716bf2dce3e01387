package container

import (
	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-wager-service/config"
	"github.com/oksasatya/go-wager-service/internal/application"
	"github.com/oksasatya/go-wager-service/internal/domain/repository"
	"github.com/oksasatya/go-wager-service/internal/infrastructure/cache"
	pginfra "github.com/oksasatya/go-wager-service/internal/infrastructure/postgres"
	"github.com/oksasatya/go-wager-service/pkg/helpers"
)

// Container carries the process-wide collaborators built once in main and
// handed to the router. Nothing here is global.
type Container struct {
	Config      *config.Config
	Logger      *logrus.Logger
	JWT         *helpers.JWTManager
	Users       *application.UserService
	Bets        *application.BetService
	Idempotency repository.IdempotencyRepository // nil disables Idempotency-Key support
}

// Build wires repositories and services from infrastructure handles.
// rdb and publisher may be nil.
func Build(cfg *config.Config, logger *logrus.Logger, db pginfra.DB, rdb redis.Cmdable, publisher application.EventPublisher) (*Container, error) {
	hasher, err := helpers.NewPasswordHasher(cfg.PasswordSalt)
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	jwt, err := helpers.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL())
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	startingBalance, err := cfg.StartingBalanceAmount()
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
		JWT:    jwt,
		Users:  application.NewUserService(pginfra.NewUserRepository(db), hasher, jwt, logger, startingBalance),
		Bets:   application.NewBetService(pginfra.NewWagerRepository(db), publisher, logger),
	}
	if rdb != nil {
		c.Idempotency = cache.NewIdempotencyRepository(rdb)
	}
	return c, nil
}
