package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-wager-service/internal/domain/repository"
	"github.com/oksasatya/go-wager-service/internal/testutil"
	"github.com/oksasatya/go-wager-service/pkg/helpers"
)

func init() { gin.SetMode(gin.TestMode) }

func TestAuth(t *testing.T) {
	jwt := testutil.NewJWT(t)
	token, _, err := jwt.Issue("alice")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", Auth(jwt), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxUsernameKey))
	})

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{name: "valid", header: "Bearer " + token, status: http.StatusOK, body: "alice"},
		{name: "lowercase scheme", header: "bearer " + token, status: http.StatusOK, body: "alice"},
		{name: "missing", header: "", status: http.StatusUnauthorized},
		{name: "no scheme", header: token, status: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer nope", status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CtxRequestIDKey)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get(HeaderRequestID))

	given := "0b8c7a54-5a8e-4c55-9c55-0f1f7b2d7b11"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, given)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, given, w.Body.String())
}

func idempotentRouter(store repository.IdempotencyRepository, status int, calls *int) *gin.Engine {
	r := gin.New()
	r.POST("/bets",
		func(c *gin.Context) { c.Set(CtxUsernameKey, c.GetHeader("X-User")); c.Next() },
		Idempotency(store, time.Hour, helpers.NewNopLogger()),
		func(c *gin.Context) {
			*calls++
			c.JSON(status, gin.H{"call": *calls})
		})
	return r
}

func post(r http.Handler, user, key string) *httptest.ResponseRecorder {
	return postBody(r, user, key, "{}")
}

func postBody(r http.Handler, user, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/bets", strings.NewReader(body))
	req.Header.Set("X-User", user)
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	var calls int
	r := idempotentRouter(testutil.NewMemoryIdempotency(), http.StatusCreated, &calls)

	first := post(r, "alice", "k1")
	second := post(r, "alice", "k1")

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get(HeaderIdempotencyHit))
	assert.Empty(t, first.Header().Get(HeaderIdempotencyHit))
}

func TestIdempotency_ScopedPerUser(t *testing.T) {
	var calls int
	r := idempotentRouter(testutil.NewMemoryIdempotency(), http.StatusCreated, &calls)

	post(r, "alice", "k1")
	post(r, "bob", "k1")

	assert.Equal(t, 2, calls)
}

func TestIdempotency_NoKeyPassesThrough(t *testing.T) {
	var calls int
	r := idempotentRouter(testutil.NewMemoryIdempotency(), http.StatusCreated, &calls)

	post(r, "alice", "")
	post(r, "alice", "")

	assert.Equal(t, 2, calls)
}

func TestIdempotency_ServerErrorsAreNotStored(t *testing.T) {
	var calls int
	r := idempotentRouter(testutil.NewMemoryIdempotency(), http.StatusInternalServerError, &calls)

	post(r, "alice", "k1")
	post(r, "alice", "k1")

	assert.Equal(t, 2, calls)
}

func TestIdempotency_InFlightKeyConflicts(t *testing.T) {
	store := testutil.NewMemoryIdempotency()
	_, _ = store.Reserve(context.Background(), "alice:k1", time.Second)
	var calls int
	r := idempotentRouter(store, http.StatusCreated, &calls)

	w := post(r, "alice", "k1")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Zero(t, calls)
}

func TestIdempotency_FailsOpen(t *testing.T) {
	store := testutil.NewMemoryIdempotency()
	store.FailGet = true
	var calls int
	r := idempotentRouter(store, http.StatusCreated, &calls)

	w := post(r, "alice", "k1")
	post(r, "alice", "k1")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 2, calls)
}

func TestIdempotency_RejectsOversizedKey(t *testing.T) {
	var calls int
	r := idempotentRouter(testutil.NewMemoryIdempotency(), http.StatusCreated, &calls)

	w := post(r, "alice", strings.Repeat("k", maxIdempotencyKey+1))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, calls)
}

// interleavingStore runs during() right after its first Get has observed a miss,
// so another request can complete between that lookup and Reserve.
type interleavingStore struct {
	*testutil.MemoryIdempotency
	during func()
	fired  bool
}

func (s *interleavingStore) Get(ctx context.Context, key string) (*repository.CachedResponse, error) {
	resp, err := s.MemoryIdempotency.Get(ctx, key)
	if !s.fired {
		s.fired = true
		s.during()
	}
	return resp, err
}

func TestIdempotency_RequestFinishingBeforeReserveIsReplayed(t *testing.T) {
	var calls int
	store := &interleavingStore{MemoryIdempotency: testutil.NewMemoryIdempotency()}
	r := idempotentRouter(store, http.StatusCreated, &calls)

	var first *httptest.ResponseRecorder
	store.during = func() { first = post(r, "alice", "k1") }

	second := post(r, "alice", "k1")

	assert.Equal(t, 1, calls)
	require.NotNil(t, first)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get(HeaderIdempotencyHit))
	assert.Equal(t, first.Body.String(), second.Body.String())
}

// cancelAwareStore fails writes made with a cancelled context, as Redis does.
type cancelAwareStore struct {
	*testutil.MemoryIdempotency
}

func (s cancelAwareStore) Save(ctx context.Context, key string, resp repository.CachedResponse, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.MemoryIdempotency.Save(ctx, key, resp, ttl)
}

func (s cancelAwareStore) Release(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.MemoryIdempotency.Release(ctx, key)
}

func TestIdempotency_SavesAfterClientDisconnect(t *testing.T) {
	var calls int
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := gin.New()
	r.POST("/bets",
		func(c *gin.Context) { c.Set(CtxUsernameKey, "alice"); c.Next() },
		Idempotency(cancelAwareStore{testutil.NewMemoryIdempotency()}, time.Hour, helpers.NewNopLogger()),
		func(c *gin.Context) {
			calls++
			c.JSON(http.StatusCreated, gin.H{"call": calls})
			// client goes away after the bet is recorded
			cancel()
		})

	req := httptest.NewRequest(http.MethodPost, "/bets", strings.NewReader("{}")).WithContext(ctx)
	req.Header.Set(HeaderIdempotencyKey, "k1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	retry := post(r, "alice", "k1")

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusCreated, retry.Code)
	assert.Equal(t, "true", retry.Header().Get(HeaderIdempotencyHit))
}

func TestIdempotency_RejectsReusedKeyWithDifferentBody(t *testing.T) {
	var calls int
	r := idempotentRouter(testutil.NewMemoryIdempotency(), http.StatusCreated, &calls)

	first := postBody(r, "alice", "k1", `{"amount":10}`)
	second := postBody(r, "alice", "k1", `{"amount":900}`)

	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, second.Code)
	assert.Equal(t, 1, calls)
}

func TestIdempotency_HandlerStillReadsBody(t *testing.T) {
	r := gin.New()
	r.POST("/bets",
		func(c *gin.Context) { c.Set(CtxUsernameKey, "alice"); c.Next() },
		Idempotency(testutil.NewMemoryIdempotency(), time.Hour, helpers.NewNopLogger()),
		func(c *gin.Context) {
			b, _ := io.ReadAll(c.Request.Body)
			c.String(http.StatusOK, string(b))
		})

	w := postBody(r, "alice", "k1", `{"amount":10}`)

	assert.Equal(t, `{"amount":10}`, w.Body.String())
}
