package router

import (
	userapp "github.com/oksasatya/api-profiles/internal/application"
	"github.com/oksasatya/api-profiles/internal/container"
	pginfra "github.com/oksasatya/api-profiles/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/api-profiles/internal/interface/http"
	"github.com/oksasatya/api-profiles/internal/router/modules"
)

func buildUserModule() *modules.Module {
	cfg := container.GetConfig()

	repo := pginfra.NewUserRepository(container.GetPGPool())
	otpStore := userapp.NewOTPStore(container.GetRedis(), cfg.OTPTTL)
	dispatcher := userapp.NewOTPDispatcher(otpStore, container.GetRabbitPub(), container.GetLogger(), cfg.MailSendEnabled)

	service := userapp.NewService(
		repo,
		otpStore,
		dispatcher,
		container.GetJWT(),
		container.GetLogger(),
	)

	authHandler := handlers.NewAuthHandler(service, container.GetLogger())
	userHandler := handlers.NewUserHandler(service, container.GetLogger())

	return modules.New(authHandler, userHandler, container.GetJWT())
}

// InitModules initializes all application modules and registers them with the router registry.
// Called once during startup after the container singletons are in place.
func InitModules(r *Registry) {
	r.Add(buildUserModule())
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
