package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/samber/oops"

	"github.com/oksasatya/go-wager-service/pkg/events"
)

const indexTimeout = 3 * time.Second

// ErrMalformedEvent marks a message that can never be indexed.
var ErrMalformedEvent = errors.New("malformed wager event")

// WagerIndexer writes wager events into an Elasticsearch index keyed by wager id,
// so redelivered events overwrite rather than duplicate.
type WagerIndexer struct {
	ES    *elasticsearch.Client
	Index string
}

func NewWagerIndexer(es *elasticsearch.Client, index string) *WagerIndexer {
	return &WagerIndexer{ES: es, Index: index}
}

type wagerDocument struct {
	WagerID  string  `json:"wager_id"`
	UserID   string  `json:"user_id"`
	Username string  `json:"username"`
	Amount   string  `json:"amount"`
	AmountF  float64 `json:"amount_value"`
	PlacedAt string  `json:"placed_at"`
	Details  string  `json:"details,omitempty"`
}

func (ix *WagerIndexer) IndexWager(ctx context.Context, evt events.WagerPlaced) error {
	doc := wagerDocument{
		WagerID:  evt.WagerID,
		UserID:   evt.UserID,
		Username: evt.Username,
		Amount:   evt.Amount.StringFixed(2),
		AmountF:  evt.Amount.InexactFloat64(),
		PlacedAt: evt.PlacedAt.UTC().Format(time.RFC3339Nano),
		Details:  evt.Details,
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return oops.Code("WAGER_INDEX_ENCODE_FAILED").With("wager_id", evt.WagerID).Wrap(err)
	}

	req := esapi.IndexRequest{Index: ix.Index, DocumentID: evt.WagerID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()
	res, err := req.Do(c, ix.ES)
	if err != nil {
		return oops.Code("WAGER_INDEX_FAILED").With("wager_id", evt.WagerID).Wrap(err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return oops.Code("WAGER_INDEX_REJECTED").
			With("wager_id", evt.WagerID).
			With("status", res.StatusCode).
			Errorf("elasticsearch rejected document: %s", body)
	}
	return nil
}

// Handle decodes a queue message body and indexes it. Decode failures wrap
// ErrMalformedEvent so the consumer can drop instead of requeue.
func (ix *WagerIndexer) Handle(ctx context.Context, body []byte) error {
	var evt events.WagerPlaced
	if err := json.Unmarshal(body, &evt); err != nil {
		return oops.Code("WAGER_EVENT_MALFORMED").Wrap(errors.Join(ErrMalformedEvent, err))
	}
	if evt.WagerID == "" {
		return oops.Code("WAGER_EVENT_MALFORMED").Wrap(ErrMalformedEvent)
	}
	return ix.IndexWager(ctx, evt)
}
