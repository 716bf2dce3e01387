package application

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/oksasatya/go-wager-service/internal/testutil"
	"github.com/oksasatya/go-wager-service/pkg/helpers"
)

func newServices(t *testing.T) (*UserService, *BetService, *testutil.MemoryStore) {
	store := testutil.NewMemoryStore()
	users := NewUserService(store, testutil.NewHasher(t), testutil.NewJWT(t), helpers.NewNopLogger(), decimal.NewFromInt(1000))
	bets := NewBetService(store, nil, helpers.NewNopLogger())
	return users, bets, store
}

func TestScenario_RegisterAuthenticateBet(t *testing.T) {
	ctx := context.Background()
	users, bets, _ := newServices(t)

	reg := users.Register(ctx, RegisterInput{Username: "alice", Password: "pw1", Email: "alice@example.com"})
	require.True(t, reg.Success, reg.Message)

	auth := users.Authenticate(ctx, AuthenticateInput{Username: "alice", Password: "pw1"})
	require.True(t, auth.Success, auth.Message)
	claims, err := users.Tokens.Parse(auth.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username())

	profile := users.GetProfile(ctx, claims.Username())
	require.True(t, profile.Success)
	assert.True(t, profile.Data.Balance.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, reg.Data.ID, profile.Data.ID)
	assert.Equal(t, "alice", profile.Data.Username)
	assert.Equal(t, "alice@example.com", profile.Data.Email)

	bet := bets.PlaceBet(ctx, claims.Username(), PlaceBetInput{Amount: decimal.NewFromInt(250), Details: "match1"})
	require.True(t, bet.Success, bet.Message)
	assert.Equal(t, reg.Data.ID, bet.Data.UserID)
	assert.True(t, bet.Data.Amount.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, "match1", bet.Data.Details)

	profile = users.GetProfile(ctx, "alice")
	assert.True(t, profile.Data.Balance.Equal(decimal.NewFromInt(750)), "balance %s", profile.Data.Balance)

	list := bets.ListWagers(ctx, "alice", 0)
	require.True(t, list.Success)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "match1", list.Data[0].Details)
}

func TestScenario_DuplicateRegistration(t *testing.T) {
	ctx := context.Background()
	users, _, store := newServices(t)

	first := users.Register(ctx, RegisterInput{Username: "bob", Password: "a", Email: "bob@example.com"})
	require.True(t, first.Success)

	second := users.Register(ctx, RegisterInput{Username: "bob", Password: "b", Email: "bob2@example.com"})
	assert.Equal(t, KindConflict, second.Kind)

	u, err := store.FindByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, first.Data.ID, u.ID)
}

func TestScenario_OverdrawLeavesBalance(t *testing.T) {
	ctx := context.Background()
	users, bets, store := newServices(t)
	require.True(t, users.Register(ctx, RegisterInput{Username: "carol", Password: "pw", Email: "carol@example.com"}).Success)

	res := bets.PlaceBet(ctx, "carol", PlaceBetInput{Amount: decimal.NewFromInt(1500)})

	assert.Equal(t, KindInsufficientFunds, res.Kind)
	assert.True(t, users.GetProfile(ctx, "carol").Data.Balance.Equal(decimal.NewFromInt(1000)))
	assert.Zero(t, store.WagerCount())
}

func TestScenario_ConcurrentBetsCannotOverdraw(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	users, bets, store := newServices(t)
	require.True(t, users.Register(ctx, RegisterInput{Username: "dave", Password: "pw", Email: "dave@example.com"}).Success)

	results := make([]Result[bool], 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := bets.PlaceBet(ctx, "dave", PlaceBetInput{Amount: decimal.NewFromInt(700)})
			results[i] = Result[bool]{Success: r.Success, Kind: r.Kind}
		}(i)
	}
	wg.Wait()

	kinds := []ErrorKind{results[0].Kind, results[1].Kind}
	assert.ElementsMatch(t, []ErrorKind{KindNone, KindInsufficientFunds}, kinds)
	assert.True(t, users.GetProfile(ctx, "dave").Data.Balance.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, 1, store.WagerCount())
}
