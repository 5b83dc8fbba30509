package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/satvikmishra44/taskhub/internal/middleware"
)

// DefaultUploadsPrefix serves attachments when no prefix is configured
const DefaultUploadsPrefix = "/uploads"

// Routes mounts every endpoint on r.
func (h *Handler) Routes(r gin.IRouter) {
	authed := middleware.Authenticate(h.svc.Auth)

	r.GET("/health", h.Health)
	r.GET(h.uploads+"/*path", h.ServeFile)

	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.POST("/logout", authed, h.Logout)
	auth.GET("/me", authed, h.Me)
	auth.GET("/tasks", authed, h.MyTasks)
	auth.GET("/stats", authed, h.MyStats)

	admin := v1.Group("/admin", authed, middleware.RequireAdmin())
	admin.GET("/users", h.ListUsers)
	admin.GET("/users/:id", h.GetUser)
	admin.PUT("/users/:id", h.ChangeRole)
	admin.DELETE("/users/:id", h.DeleteUser)
	admin.GET("/tasks", h.ListTasks)
	admin.GET("/stats", h.TaskStats)

	// assignees may read and update their own tasks, the rest is admin only
	// and rejected before any multipart body is parsed
	adminOnly := middleware.RequireAdmin()
	tasks := v1.Group("/tasks", authed)
	tasks.POST("", adminOnly, h.CreateTask)
	tasks.GET("/:id", h.GetTask)
	tasks.PUT("/:id", h.UpdateTask)
	tasks.DELETE("/:id", adminOnly, h.DeleteTask)
	tasks.POST("/:id/attachments", adminOnly, h.AddAttachments)
}
