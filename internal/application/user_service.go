package application

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-wager-service/internal/domain/entity"
	"github.com/oksasatya/go-wager-service/internal/domain/repository"
	"github.com/oksasatya/go-wager-service/pkg/helpers"
	"github.com/oksasatya/go-wager-service/pkg/metrics"
	"github.com/oksasatya/go-wager-service/pkg/validation"
)

const (
	msgUserExists       = "Username or Email already exists."
	msgBadCredentials   = "Username or password is incorrect."
	msgUserNotFound     = "User not found."
	msgRegisterFailed   = "An error occurred during registration."
	msgAuthFailed       = "An error occurred during authentication."
	msgProfileFailed    = "An error occurred while fetching the profile."
	msgInvalidSignup    = "Invalid registration: "
	msgInvalidLogin     = "Invalid credentials payload: "
	msgRegistered       = "User registered successfully."
	msgAuthenticated    = "Authenticated successfully."
	msgProfileRetrieved = "Profile retrieved."
)

// UserService runs registration, authentication and profile lookups.
type UserService struct {
	Repo            repository.UserRepository
	Hasher          *helpers.PasswordHasher
	Tokens          *helpers.JWTManager
	Logger          *logrus.Logger
	StartingBalance decimal.Decimal
}

func NewUserService(repo repository.UserRepository, hasher *helpers.PasswordHasher, tokens *helpers.JWTManager, logger *logrus.Logger, startingBalance decimal.Decimal) *UserService {
	return &UserService{Repo: repo, Hasher: hasher, Tokens: tokens, Logger: logger, StartingBalance: startingBalance}
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required"`
	Email    string `json:"email" validate:"required,email,max=255"`
}

type AuthenticateInput struct {
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required"`
}

// AuthToken is the raw signed token; transports add their own scheme prefix.
type AuthToken struct {
	Token     string
	ExpiresAt time.Time
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) Result[*entity.User] {
	log := s.Logger.WithFields(logrus.Fields{"op": "register", "username": in.Username})
	log.Debug("registration attempt")

	res := s.register(ctx, in, log)
	if res.Success {
		metrics.Registrations.WithLabelValues(metrics.OutcomeSuccess).Inc()
		log.WithField("user_id", res.Data.ID).Info("user registered")
	} else {
		metrics.Registrations.WithLabelValues(metrics.OutcomeFailure).Inc()
		log.WithField("kind", res.Kind).Info("registration rejected")
	}
	return res
}

func (s *UserService) register(ctx context.Context, in RegisterInput, log *logrus.Entry) Result[*entity.User] {
	if err := validation.Struct(in); err != nil {
		return Fail[*entity.User](KindValidation, msgInvalidSignup+validation.Summary(err))
	}

	if _, err := s.Repo.FindByUsername(ctx, in.Username); err == nil {
		return Fail[*entity.User](KindConflict, msgUserExists)
	} else if !errors.Is(err, repository.ErrNotFound) {
		log.WithError(err).Error("username lookup failed")
		return Fail[*entity.User](KindInternal, msgRegisterFailed)
	}
	if _, err := s.Repo.FindByEmail(ctx, in.Email); err == nil {
		return Fail[*entity.User](KindConflict, msgUserExists)
	} else if !errors.Is(err, repository.ErrNotFound) {
		log.WithError(err).Error("email lookup failed")
		return Fail[*entity.User](KindInternal, msgRegisterFailed)
	}

	u := &entity.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: s.Hasher.Hash(in.Password),
		Balance:      s.StartingBalance,
	}
	// The pre-checks above are advisory; the unique constraints decide races.
	if err := s.Repo.Add(ctx, u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return Fail[*entity.User](KindConflict, msgUserExists)
		}
		log.WithError(err).Error("insert user failed")
		return Fail[*entity.User](KindInternal, msgRegisterFailed)
	}
	return Ok(u, msgRegistered)
}

func (s *UserService) Authenticate(ctx context.Context, in AuthenticateInput) Result[*AuthToken] {
	log := s.Logger.WithFields(logrus.Fields{"op": "authenticate", "username": in.Username})
	log.Debug("authentication attempt")

	res := s.authenticate(ctx, in, log)
	if res.Success {
		metrics.AuthAttempts.WithLabelValues(metrics.OutcomeSuccess).Inc()
		log.Info("authenticated")
	} else {
		metrics.AuthAttempts.WithLabelValues(metrics.OutcomeFailure).Inc()
		log.WithField("kind", res.Kind).Info("authentication rejected")
	}
	return res
}

func (s *UserService) authenticate(ctx context.Context, in AuthenticateInput, log *logrus.Entry) Result[*AuthToken] {
	if err := validation.Struct(in); err != nil {
		return Fail[*AuthToken](KindValidation, msgInvalidLogin+validation.Summary(err))
	}

	u, err := s.Repo.FindByUsername(ctx, in.Username)
	if errors.Is(err, repository.ErrNotFound) {
		return Fail[*AuthToken](KindAuthentication, msgBadCredentials)
	}
	if err != nil {
		log.WithError(err).Error("user lookup failed")
		return Fail[*AuthToken](KindInternal, msgAuthFailed)
	}
	if !s.Hasher.Verify(in.Password, u.PasswordHash) {
		return Fail[*AuthToken](KindAuthentication, msgBadCredentials)
	}

	token, exp, err := s.Tokens.Issue(u.Username)
	if err != nil {
		log.WithError(err).Error("sign token failed")
		return Fail[*AuthToken](KindInternal, msgAuthFailed)
	}
	return Ok(&AuthToken{Token: token, ExpiresAt: exp}, msgAuthenticated)
}

func (s *UserService) GetProfile(ctx context.Context, username string) Result[*entity.User] {
	log := s.Logger.WithFields(logrus.Fields{"op": "get_profile", "username": username})
	log.Debug("profile requested")

	res := s.getProfile(ctx, username, log)
	if res.Success {
		log.Info("profile retrieved")
	} else {
		log.WithField("kind", res.Kind).Info("profile lookup rejected")
	}
	return res
}

func (s *UserService) getProfile(ctx context.Context, username string, log *logrus.Entry) Result[*entity.User] {
	u, err := s.Repo.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return Fail[*entity.User](KindNotFound, msgUserNotFound)
	}
	if err != nil {
		log.WithError(err).Error("fetch profile failed")
		return Fail[*entity.User](KindInternal, msgProfileFailed)
	}
	return Ok(u, msgProfileRetrieved)
}
