package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels shared by the counters below.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	Registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wager_registrations_total",
		Help: "Registration attempts by outcome.",
	}, []string{"outcome"})

	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wager_auth_attempts_total",
		Help: "Authentication attempts by outcome.",
	}, []string{"outcome"})

	Bets = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wager_bets_total",
		Help: "Bet placement attempts by outcome.",
	}, []string{"outcome"})

	BetAmount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wager_bet_amount_total",
		Help: "Sum of committed bet amounts.",
	})
)
