package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/taskboard/api/handler"
)

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Account *apiHandler.AccountHandler
	Profile *apiHandler.ProfileHandler
	Task    *apiHandler.TaskHandler
	Health  *apiHandler.HealthHandler
	Metrics fasthttp.RequestHandler
	Pprof   fasthttp.RequestHandler
}

// Guards wrap routes that need a signed-in device or a provisioned profile.
type Guards struct {
	Session func(fasthttp.RequestHandler) fasthttp.RequestHandler
	Profile func(fasthttp.RequestHandler) fasthttp.RequestHandler
}

func New(handlers Handlers, guards Guards) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)
	if handlers.Metrics != nil {
		r.GET("/metrics", handlers.Metrics)
	}
	if handlers.Pprof != nil {
		r.GET("/debug/pprof/{profile:*}", handlers.Pprof)
	}

	// Auth routes
	r.POST("/api/v1/auth/session", handlers.Auth.SetSession)
	r.DELETE("/api/v1/auth/session", handlers.Auth.SignOut)
	r.POST("/api/v1/auth/refresh", guards.Session(handlers.Auth.Refresh))

	r.GET("/api/v1/me", handlers.Account.Me)

	// Protected routes
	r.GET("/api/v1/profiles", guards.Session(handlers.Profile.List))
	r.PUT("/api/v1/profile/push-token", guards.Profile(handlers.Profile.RegisterPushToken))

	r.GET("/api/v1/tasks", guards.Session(handlers.Task.GetTasks))
	r.POST("/api/v1/tasks/refresh", guards.Session(handlers.Task.Refresh))
	r.POST("/api/v1/tasks", guards.Profile(handlers.Task.CreateTask))
	r.PUT("/api/v1/tasks/{id}/assign", guards.Session(handlers.Task.AssignTask))
	r.PUT("/api/v1/tasks/{id}/complete", guards.Session(handlers.Task.CompleteTask))

	return r
}
