package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-wager-service/internal/interface/http"
	"github.com/oksasatya/go-wager-service/internal/interface/middleware"
	"github.com/oksasatya/go-wager-service/pkg/helpers"
)

// UserModule wires account routes.
// Public: POST /users/register, POST /users/authenticate
// Protected: GET /users/profile
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.POST("/register", m.Handler.Register)
	users.POST("/authenticate", m.Handler.Authenticate)

	users.GET("/profile", middleware.Auth(m.JWT), m.Handler.GetProfile)
}
