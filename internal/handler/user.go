package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/satvikmishra44/taskhub/ecode"
	"github.com/satvikmishra44/taskhub/internal/service"
	"github.com/satvikmishra44/taskhub/internal/structs"
	"github.com/satvikmishra44/taskhub/net/resp"
)

// ListUsers lists users. ?fields=name returns only ids and names.
func (h *Handler) ListUsers(c *gin.Context) {
	var filter structs.UserFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.fail(c, ecode.BadRequest("Invalid query"))
		return
	}
	filter.NameOnly = c.Query("fields") == "name"

	users, err := h.svc.User.List(c.Request.Context(), actor(c), &filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer, users)
}

// GetUser returns a user with their most recent tasks.
func (h *Handler) GetUser(c *gin.Context) {
	limit, err := recent(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	user, err := h.svc.User.GetWithRecentTasks(c.Request.Context(), actor(c), c.Param("id"), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer, user)
}

// ChangeRole promotes a user. Demotion is always refused.
func (h *Handler) ChangeRole(c *gin.Context) {
	var cmd structs.ChangeRoleCommand
	if err := decodeJSON(c, &cmd, true); err != nil {
		h.fail(c, err)
		return
	}

	user, err := h.svc.User.ChangeRole(c.Request.Context(), actor(c), c.Param("id"), &cmd)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer, gin.H{
		"message": service.PromotedMessage(user),
		"user":    user,
	})
}

// DeleteUser removes a user and unassigns their tasks.
func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.svc.User.Delete(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer, "User deleted successfully")
}
