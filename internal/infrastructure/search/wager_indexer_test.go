package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-wager-service/pkg/events"
	"github.com/oksasatya/go-wager-service/pkg/helpers"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func esResponse(status int, body string) *http.Response {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("X-Elastic-Product", "Elasticsearch")
	return &http.Response{StatusCode: status, Header: h, Body: io.NopCloser(strings.NewReader(body))}
}

func TestWagerIndexer_IndexWager(t *testing.T) {
	var gotPath, gotMethod string
	var gotDoc map[string]any
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		gotPath, gotMethod = r.URL.Path, r.Method
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotDoc))
		return esResponse(http.StatusCreated, `{"result":"created"}`), nil
	})
	es, err := helpers.NewESClient([]string{"http://es.test:9200"}, "", "", transport)
	require.NoError(t, err)

	evt := events.WagerPlaced{
		WagerID:  "w-1",
		UserID:   "u-1",
		Username: "alice",
		Amount:   decimal.RequireFromString("250.5"),
		PlacedAt: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
		Details:  "red",
	}
	require.NoError(t, NewWagerIndexer(es, "wagers").IndexWager(context.Background(), evt))

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/wagers/_doc/w-1", gotPath)
	assert.Equal(t, "250.50", gotDoc["amount"])
	assert.Equal(t, "alice", gotDoc["username"])
	assert.Equal(t, "2026-05-01T10:00:00Z", gotDoc["placed_at"])
}

func TestWagerIndexer_Rejected(t *testing.T) {
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return esResponse(http.StatusBadRequest, `{"error":"mapper_parsing_exception"}`), nil
	})
	es, err := helpers.NewESClient([]string{"http://es.test:9200"}, "", "", transport)
	require.NoError(t, err)

	err = NewWagerIndexer(es, "wagers").IndexWager(context.Background(), events.WagerPlaced{WagerID: "w-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mapper_parsing_exception")
}

func TestWagerIndexer_Handle(t *testing.T) {
	var calls int
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		return esResponse(http.StatusOK, `{"result":"updated"}`), nil
	})
	es, err := helpers.NewESClient([]string{"http://es.test:9200"}, "", "", transport)
	require.NoError(t, err)
	ix := NewWagerIndexer(es, "wagers")

	err = ix.Handle(context.Background(), []byte("{not json"))
	assert.ErrorIs(t, err, ErrMalformedEvent)

	err = ix.Handle(context.Background(), []byte(`{"username":"alice"}`))
	assert.ErrorIs(t, err, ErrMalformedEvent)
	assert.Zero(t, calls)

	err = ix.Handle(context.Background(), []byte(`{"wager_id":"w-9","username":"alice","amount":"5","placed_at":"2026-05-01T10:00:00Z"}`))
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}
