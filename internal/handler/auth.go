package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/satvikmishra44/taskhub/ecode"
	"github.com/satvikmishra44/taskhub/internal/middleware"
	"github.com/satvikmishra44/taskhub/internal/structs"
	"github.com/satvikmishra44/taskhub/net/resp"
)

// Register handles user registration.
func (h *Handler) Register(c *gin.Context) {
	var body structs.RegisterBody
	if err := decodeJSON(c, &body, false); err != nil {
		h.fail(c, err)
		return
	}

	user, err := h.svc.Auth.Register(c.Request.Context(), &body)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp.WithStatusCode(c.Writer, http.StatusCreated, gin.H{
		"success": true,
		"message": "User registered successfully",
		"user":    user,
	})
}

// Login handles user login.
func (h *Handler) Login(c *gin.Context) {
	var body structs.LoginBody
	if err := decodeJSON(c, &body, false); err != nil {
		h.fail(c, err)
		return
	}

	result, err := h.svc.Auth.Login(c.Request.Context(), &body)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp.Success(c.Writer, result)
}

// Logout revokes the current token.
func (h *Handler) Logout(c *gin.Context) {
	session, ok := middleware.SessionFrom(c)
	if !ok {
		h.fail(c, ecode.NotAuthenticated("Missing token"))
		return
	}
	if err := h.svc.Auth.Logout(c.Request.Context(), session); err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer, "Logged out")
}

// Me returns the caller's profile with recent tasks and capabilities.
func (h *Handler) Me(c *gin.Context) {
	limit, err := recent(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	me, err := h.svc.User.Me(c.Request.Context(), actor(c), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer, me)
}

// MyTasks lists the tasks assigned to the caller.
func (h *Handler) MyTasks(c *gin.Context) {
	var filter structs.TaskFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.fail(c, ecode.BadRequest("Invalid query"))
		return
	}

	a := actor(c)
	tasks, err := h.svc.Task.ListForUser(c.Request.Context(), a, a.ID.Hex(), &filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer, tasks)
}

// MyStats counts the caller's tasks by status.
func (h *Handler) MyStats(c *gin.Context) {
	a := actor(c)
	stats, err := h.svc.Task.Stats(c.Request.Context(), a, a.ID.Hex())
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer, stats)
}
