package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-wager-service/internal/application"
	"github.com/oksasatya/go-wager-service/internal/domain/entity"
	"github.com/oksasatya/go-wager-service/internal/interface/middleware"
	"github.com/oksasatya/go-wager-service/pkg/response"
	"github.com/oksasatya/go-wager-service/pkg/validation"
)

type UserHandler struct {
	Svc *application.UserService
}

func NewUserHandler(svc *application.UserService) *UserHandler {
	return &UserHandler{Svc: svc}
}

type registerRequest struct {
	Username string `json:"username" binding:"required,max=255"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email" binding:"required,email,max=255"`
}

type authenticateRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Balance   string    `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

type authenticateResponse struct {
	Bearer    string    `json:"bearer"`
	ExpiresAt time.Time `json:"expires_at"`
}

func toUserResponse(u *entity.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Balance:   u.Balance.StringFixed(2),
		CreatedAt: u.CreatedAt,
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
	})
	if !res.Success {
		fail(c, res)
		return
	}
	response.Success(c, http.StatusCreated, toUserResponse(res.Data), res.Message, nil)
}

func (h *UserHandler) Authenticate(c *gin.Context) {
	var req authenticateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res := h.Svc.Authenticate(c.Request.Context(), application.AuthenticateInput{Username: req.Username, Password: req.Password})
	if !res.Success {
		fail(c, res)
		return
	}
	response.Success(c, http.StatusOK, authenticateResponse{
		Bearer:    "Bearer " + res.Data.Token,
		ExpiresAt: res.Data.ExpiresAt,
	}, res.Message, nil)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	res := h.Svc.GetProfile(c.Request.Context(), c.GetString(middleware.CtxUsernameKey))
	if !res.Success {
		fail(c, res)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(res.Data), res.Message, nil)
}
