package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-wager-service/internal/domain/repository"
	"github.com/oksasatya/go-wager-service/pkg/response"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderIdempotencyHit = "X-Idempotency-Hit"

	idempotencyLockTTL = 30 * time.Second
	maxIdempotencyKey  = 128
)

type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *bodyRecorder) WriteString(s string) (int, error) {
	r.body.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}

func fingerprint(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// Idempotency replays the stored response for a repeated Idempotency-Key.
// Keys are scoped per authenticated user, so it must run after Auth. Reusing
// a key with a different request body is rejected with 422.
// Store failures fail open; 5xx responses are not stored so clients can retry.
func Idempotency(store repository.IdempotencyRepository, ttl time.Duration, logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKey {
			response.Error[any](c, http.StatusBadRequest, "Idempotency-Key is too long", nil)
			c.Abort()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "unreadable request body", nil)
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		fp := fingerprint(body)

		// The bet may commit even if the client goes away; the stored reply must outlive the request.
		ctx := context.WithoutCancel(c.Request.Context())
		scoped := c.GetString(CtxUsernameKey) + ":" + key
		log := logger.WithField("idempotency_key", key)

		// replay reports whether a stored reply (or a mismatch) was written.
		replay := func() (bool, error) {
			cached, err := store.Get(ctx, scoped)
			if err != nil || cached == nil {
				return false, err
			}
			if cached.Fingerprint != "" && cached.Fingerprint != fp {
				response.Error[any](c, http.StatusUnprocessableEntity, "Idempotency-Key was already used with a different request body", nil)
				c.Abort()
				return true, nil
			}
			log.Debug("idempotency cache hit")
			c.Header(HeaderIdempotencyHit, "true")
			c.Data(cached.StatusCode, "application/json; charset=utf-8", cached.Body)
			c.Abort()
			return true, nil
		}

		if done, err := replay(); err != nil {
			log.WithError(err).Warn("idempotency lookup failed")
			c.Next()
			return
		} else if done {
			return
		}

		reserved, err := store.Reserve(ctx, scoped, idempotencyLockTTL)
		if err != nil {
			log.WithError(err).Warn("idempotency reserve failed")
			c.Next()
			return
		}
		if !reserved {
			response.Error[any](c, http.StatusConflict, "a request with this Idempotency-Key is in progress", nil)
			c.Abort()
			return
		}
		defer func() {
			if err := store.Release(ctx, scoped); err != nil {
				log.WithError(err).Warn("idempotency release failed")
			}
		}()

		// A request holding the same key may have finished between the first lookup and Reserve.
		if done, err := replay(); err != nil {
			log.WithError(err).Warn("idempotency lookup failed")
		} else if done {
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = rec
		c.Next()

		if status := rec.Status(); status < http.StatusInternalServerError {
			resp := repository.CachedResponse{StatusCode: status, Body: rec.body.Bytes(), Fingerprint: fp}
			if err := store.Save(ctx, scoped, resp, ttl); err != nil {
				log.WithError(err).Warn("idempotency save failed")
			}
		}
	}
}
