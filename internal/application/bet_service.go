package application

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-wager-service/internal/domain/entity"
	"github.com/oksasatya/go-wager-service/internal/domain/repository"
	"github.com/oksasatya/go-wager-service/pkg/events"
	"github.com/oksasatya/go-wager-service/pkg/metrics"
)

const (
	DefaultWagerPageSize = 20
	MaxWagerPageSize     = 100

	publishTimeout = 3 * time.Second
)

const (
	msgAmountNotPositive = "Bet amount must be greater than zero."
	msgAmountPrecision   = "Bet amount must have at most two decimal places."
	msgDetailsTooLong    = "Bet details must be at most 255 characters."
	msgInsufficient      = "Insufficient balance."
	msgBetFailed         = "An error occurred while placing the bet."
	msgListFailed        = "An error occurred while listing bets."
	msgBetPlaced         = "Bet placed successfully."
	msgBetsListed        = "Bets retrieved."
)

// EventPublisher delivers integration events. helpers.RabbitPublisher satisfies it.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// BetService places and lists wagers.
type BetService struct {
	Repo      repository.WagerRepository
	Publisher EventPublisher
	Logger    *logrus.Logger
	Now       func() time.Time
}

// NewBetService builds the service. publisher may be nil to disable events.
func NewBetService(repo repository.WagerRepository, publisher EventPublisher, logger *logrus.Logger) *BetService {
	return &BetService{Repo: repo, Publisher: publisher, Logger: logger, Now: time.Now}
}

type PlaceBetInput struct {
	Amount  decimal.Decimal
	Details string
}

func (s *BetService) PlaceBet(ctx context.Context, username string, in PlaceBetInput) Result[*entity.Wager] {
	log := s.Logger.WithFields(logrus.Fields{"op": "place_bet", "username": username, "amount": in.Amount.String()})
	log.Debug("bet attempt")

	res := s.placeBet(ctx, username, in, log)
	if res.Success {
		metrics.Bets.WithLabelValues(metrics.OutcomeSuccess).Inc()
		metrics.BetAmount.Add(in.Amount.InexactFloat64())
		log.WithField("wager_id", res.Data.ID).Info("bet placed")
		s.publish(ctx, username, res.Data, log)
	} else {
		metrics.Bets.WithLabelValues(string(res.Kind)).Inc()
		log.WithField("kind", res.Kind).Info("bet rejected")
	}
	return res
}

func (s *BetService) placeBet(ctx context.Context, username string, in PlaceBetInput, log *logrus.Entry) Result[*entity.Wager] {
	if !in.Amount.IsPositive() {
		return Fail[*entity.Wager](KindValidation, msgAmountNotPositive)
	}
	if !in.Amount.Equal(in.Amount.Round(2)) {
		return Fail[*entity.Wager](KindValidation, msgAmountPrecision)
	}
	if utf8.RuneCountInString(in.Details) > entity.MaxDetailsLen {
		return Fail[*entity.Wager](KindValidation, msgDetailsTooLong)
	}

	// timestamptz keeps microseconds; truncate so the returned record matches storage.
	placedAt := s.Now().UTC().Truncate(time.Microsecond)
	w, err := s.Repo.PlaceBet(ctx, username, in.Amount, in.Details, placedAt)
	switch {
	case err == nil:
		return Ok(w, msgBetPlaced)
	case errors.Is(err, repository.ErrNotFound):
		return Fail[*entity.Wager](KindNotFound, msgUserNotFound)
	case errors.Is(err, repository.ErrInsufficientFunds):
		return Fail[*entity.Wager](KindInsufficientFunds, msgInsufficient)
	default:
		log.WithError(err).Error("place bet failed")
		return Fail[*entity.Wager](KindInternal, msgBetFailed)
	}
}

// publish is best effort: the bet is already committed.
func (s *BetService) publish(ctx context.Context, username string, w *entity.Wager, log *logrus.Entry) {
	if s.Publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	evt := events.WagerPlaced{
		WagerID:  w.ID,
		UserID:   w.UserID,
		Username: username,
		Amount:   w.Amount,
		PlacedAt: w.PlacedAt,
		Details:  w.Details,
	}
	if err := s.Publisher.PublishJSON(pubCtx, evt); err != nil {
		log.WithError(err).WithField("wager_id", w.ID).Warn("publish wager event failed")
	}
}

// ListWagers returns the user's most recent wagers. limit outside
// 1..MaxWagerPageSize falls back to DefaultWagerPageSize or the cap.
func (s *BetService) ListWagers(ctx context.Context, username string, limit int) Result[[]*entity.Wager] {
	switch {
	case limit <= 0:
		limit = DefaultWagerPageSize
	case limit > MaxWagerPageSize:
		limit = MaxWagerPageSize
	}
	log := s.Logger.WithFields(logrus.Fields{"op": "list_wagers", "username": username, "limit": limit})
	log.Debug("wager listing requested")

	ws, err := s.Repo.ListByUsername(ctx, username, limit)
	if err != nil {
		log.WithError(err).WithField("kind", KindInternal).Error("list wagers failed")
		return Fail[[]*entity.Wager](KindInternal, msgListFailed)
	}
	log.WithField("count", len(ws)).Info("wagers listed")
	return Ok(ws, msgBetsListed)
}
