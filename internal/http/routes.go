package http

import (
	"time"

	"github.com/labstack/echo/v4"

	middleware "nextlevel.com/nextlevel/internal/http/middlewares"
)

type RouteConfig struct {
	RateLimitPerMinute int
	JWTSecret          string
	JWTIssuer          string
	CronSecret         string
}

func Register(e *echo.Echo, h *Handler, cfg RouteConfig) {
	e.GET("/healthz", h.Health)

	v1 := e.Group("/v1")
	v1.GET("/tasks/defaults", h.ListDefaultTasks, middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))
	v1.POST("/webhooks/users", h.UserWebhook)
	v1.POST("/internal/recurrence/reset", h.ResetRecurrent, middleware.RequireSecret(middleware.HeaderCronSecret, cfg.CronSecret))

	api := v1.Group("",
		middleware.JWTAuth(cfg.JWTSecret, cfg.JWTIssuer),
		middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute),
	)

	api.POST("/tasks", h.CreateTask)
	api.GET("/tasks", h.ListTasks)
	api.POST("/tasks/add", h.AddMission)
	api.GET("/tasks/completions", h.CompletionHistory)
	api.GET("/tasks/:id", h.GetTask)
	api.PATCH("/tasks/:id", h.UpdateTask)
	api.DELETE("/tasks/:id", h.DeleteTask)
	api.POST("/tasks/:id/complete", h.CompleteTask)
	api.POST("/tasks/:id/close", h.CloseTask)
	api.POST("/tasks/:id/reopen", h.ReopenTask)

	api.POST("/projects", h.CreateProject)
	api.GET("/projects", h.ListProjects)
	api.POST("/projects/suggest", h.SuggestSubtasks)
	api.GET("/projects/:id", h.GetProject)
	api.PATCH("/projects/:id", h.UpdateProject)
	api.DELETE("/projects/:id", h.DeleteProject)
	api.GET("/projects/:id/tasks", h.ListSubtasks)
	api.POST("/projects/:id/complete", h.CompleteProject)

	api.GET("/users/me", h.Me)
	api.GET("/users/me/level", h.MyLevel)
	api.GET("/users/me/experience", h.MyExperience)
}
