package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/satvikmishra44/taskhub/ecode"
	"github.com/satvikmishra44/taskhub/internal/structs"
	"github.com/satvikmishra44/taskhub/net/resp"
)

// CreateTask handles a multipart task creation with its PDF attachments.
func (h *Handler) CreateTask(c *gin.Context) {
	h.limitBody(c)
	files, err := uploadedFiles(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	var body structs.CreateTaskBody
	if err := c.ShouldBind(&body); err != nil {
		h.fail(c, errBody)
		return
	}

	task, err := h.svc.Task.Create(c.Request.Context(), actor(c), &body, files)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.WithStatusCode(c.Writer, http.StatusCreated, task)
}

// ListTasks lists every task matching the query filters.
func (h *Handler) ListTasks(c *gin.Context) {
	var filter structs.TaskFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.fail(c, ecode.BadRequest("Invalid query"))
		return
	}

	tasks, err := h.svc.Task.List(c.Request.Context(), actor(c), &filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer, tasks)
}

// GetTask returns a task with its assignee name.
func (h *Handler) GetTask(c *gin.Context) {
	task, err := h.svc.Task.Get(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer, task)
}

// UpdateTask applies a partial update. Unknown fields are rejected.
func (h *Handler) UpdateTask(c *gin.Context) {
	var cmd structs.UpdateTaskCommand
	if err := decodeJSON(c, &cmd, true); err != nil {
		h.fail(c, err)
		return
	}

	task, err := h.svc.Task.Update(c.Request.Context(), actor(c), c.Param("id"), &cmd)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer, task)
}

// DeleteTask removes a task and its files.
func (h *Handler) DeleteTask(c *gin.Context) {
	if err := h.svc.Task.Delete(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer, "Task deleted successfully")
}

// AddAttachments appends PDF files to an existing task.
func (h *Handler) AddAttachments(c *gin.Context) {
	h.limitBody(c)
	files, err := uploadedFiles(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	task, err := h.svc.Task.AddAttachments(c.Request.Context(), actor(c), c.Param("id"), files)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer, task)
}

// TaskStats counts every task by status.
func (h *Handler) TaskStats(c *gin.Context) {
	stats, err := h.svc.Task.Stats(c.Request.Context(), actor(c), "")
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer, stats)
}
