package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/oksasatya/go-wager-service/internal/application"
	"github.com/oksasatya/go-wager-service/internal/domain/entity"
	"github.com/oksasatya/go-wager-service/internal/interface/middleware"
	"github.com/oksasatya/go-wager-service/pkg/response"
	"github.com/oksasatya/go-wager-service/pkg/validation"
)

type BetHandler struct {
	Svc *application.BetService
}

func NewBetHandler(svc *application.BetService) *BetHandler {
	return &BetHandler{Svc: svc}
}

// Amount accepts a JSON number or a decimal string; both decode exactly.
type placeBetRequest struct {
	Amount  *decimal.Decimal `json:"amount" binding:"required"`
	Details string           `json:"details"`
}

type wagerResponse struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Amount   string    `json:"amount"`
	PlacedAt time.Time `json:"placed_at"`
	Details  string    `json:"details"`
}

func toWagerResponse(w *entity.Wager) wagerResponse {
	return wagerResponse{
		ID:       w.ID,
		UserID:   w.UserID,
		Amount:   w.Amount.StringFixed(2),
		PlacedAt: w.PlacedAt,
		Details:  w.Details,
	}
}

func (h *BetHandler) PlaceBet(c *gin.Context) {
	var req placeBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res := h.Svc.PlaceBet(c.Request.Context(), c.GetString(middleware.CtxUsernameKey), application.PlaceBetInput{
		Amount:  *req.Amount,
		Details: req.Details,
	})
	if !res.Success {
		fail(c, res)
		return
	}
	response.Success(c, http.StatusCreated, toWagerResponse(res.Data), res.Message, nil)
}

func (h *BetHandler) ListWagers(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid limit", map[string]string{"limit": "must be an integer"})
			return
		}
		limit = n
	}
	res := h.Svc.ListWagers(c.Request.Context(), c.GetString(middleware.CtxUsernameKey), limit)
	if !res.Success {
		fail(c, res)
		return
	}
	out := make([]wagerResponse, 0, len(res.Data))
	for _, w := range res.Data {
		out = append(out, toWagerResponse(w))
	}
	response.Success(c, http.StatusOK, out, res.Message, map[string]any{"count": len(out)})
}
