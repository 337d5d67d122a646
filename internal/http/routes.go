package http

import (
	"time"

	"github.com/labstack/echo/v4"

	middleware "github.com/shahpalash10/chore-Mate/internal/http/middlewares"
)

func Register(e *echo.Echo, h *Handler, rateLimitPerMinute int) {
	e.Use(middleware.RateLimiter(rateLimitPerMinute, time.Minute))

	e.POST("/auth/login", h.Login)
	e.POST("/auth/signup", h.Signup)
	e.POST("/auth/logout", h.Logout)
	e.POST("/auth/password-reset", h.RequestPasswordReset)
	e.POST("/auth/password", h.ChangePassword)
	e.GET("/session", h.GetSession)

	e.GET("/tasks", h.ListTasks)
	e.GET("/tasks/feed", h.GetTaskFeed)
	e.POST("/tasks", h.CreateTask)
	e.POST("/tasks/:id/toggle", h.ToggleTask)
	e.DELETE("/tasks/:id", h.DeleteTask)

	e.GET("/users", h.ListEmployees)
}
