package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/api-profiles/internal/container"
	handlers "github.com/oksasatya/api-profiles/internal/interface/http"
	"github.com/oksasatya/api-profiles/internal/interface/middleware"
	"github.com/oksasatya/api-profiles/pkg/helpers"
)

// Module wires the account HTTP handlers and bearer-auth middleware into routes.
// Public: POST /api/register, POST /api/login
// Protected: GET|PUT|PATCH|DELETE /api/profile/:email

type Module struct {
	Auth  *handlers.AuthHandler
	Users *handlers.UserHandler
	JWT   *helpers.JWTManager
}

func New(auth *handlers.AuthHandler, users *handlers.UserHandler, jwt *helpers.JWTManager) *Module {
	return &Module{Auth: auth, Users: users, JWT: jwt}
}

func (m *Module) Register(rg *gin.RouterGroup) {
	// Public with rate limiting. Register/login also fan out OTP emails, so the
	// per-IP-and-path cap bounds dispatch volume per client.
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/register", registerLimiter, m.Auth.Register)
	rg.POST("/login", loginLimiter, m.Auth.Login)

	// Protected
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserEmail(), nil),
	)
	{
		auth.GET("/profile/:email", m.Users.GetProfile)
		auth.PUT("/profile/:email", m.Users.UpdateProfile)
		auth.PATCH("/profile/:email", m.Users.PatchProfile)
		auth.DELETE("/profile/:email", m.Users.DeleteProfile)
	}
}
