package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/satvikmishra44/taskhub/ecode"
	"github.com/satvikmishra44/taskhub/internal/data"
	"github.com/satvikmishra44/taskhub/internal/data/repository"
	"github.com/satvikmishra44/taskhub/internal/policy"
	"github.com/satvikmishra44/taskhub/internal/structs"
	"github.com/satvikmishra44/taskhub/logging/logger"
	"github.com/satvikmishra44/taskhub/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// errAssigneeGone reports an assignee deleted while a task was reassigned
var errAssigneeGone = errors.New("assignee no longer exists")

// TaskService handles tasks and keeps assignee task sets consistent.
type TaskService struct {
	data        *data.Data
	attachments *AttachmentService
	views       *viewBuilder
	recorder    Recorder
}

// NewTaskService creates a new task service.
func NewTaskService(d *data.Data, attachments *AttachmentService, views *viewBuilder, recorder Recorder) *TaskService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &TaskService{data: d, attachments: attachments, views: views, recorder: recorder}
}

func (s *TaskService) load(ctx context.Context, taskID string) (*structs.Task, error) {
	id, err := parseID(taskID, "task")
	if err != nil {
		return nil, err
	}
	task, err := s.data.Tasks.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ecode.NotFound(msgTaskNotFound)
	}
	if err != nil {
		return nil, internal(err)
	}
	return task, nil
}

func (s *TaskService) assignee(ctx context.Context, raw string) (*structs.User, error) {
	id, err := parseID(raw, "assignee")
	if err != nil {
		return nil, err
	}
	user, err := s.data.Users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ecode.BadRequest(msgAssigneeNotFound)
	}
	if err != nil {
		return nil, internal(err)
	}
	return user, nil
}

// Create stores a task with its attachments and appends it to the
// assignee's task set. Both writes form one unit of work.
func (s *TaskService) Create(ctx context.Context, actor structs.Actor, body *structs.CreateTaskBody, files []FileInput) (*structs.TaskView, error) {
	if err := policy.Check(actor, policy.TaskCreate, policy.Target{}); err != nil {
		return nil, err
	}

	body.Title = strings.TrimSpace(body.Title)
	body.Description = strings.TrimSpace(body.Description)
	if err := validate(body); err != nil {
		return nil, err
	}
	dueDate, err := parseDate(body.DueDate)
	if err != nil {
		return nil, err
	}
	uploads, err := s.attachments.Validate(files)
	if err != nil {
		return nil, err
	}
	user, err := s.assignee(ctx, body.AssignedTo)
	if err != nil {
		return nil, err
	}

	task := &structs.Task{
		Title:       body.Title,
		Description: body.Description,
		Status:      structs.StatusPending,
		Priority:    structs.PriorityMedium,
		DueDate:     dueDate,
		AssignedTo:  &user.ID,
		CreatedBy:   actor.ID,
	}
	if body.Status != "" {
		task.Status = structs.Status(body.Status)
	}
	if body.Priority != "" {
		task.Priority = structs.Priority(body.Priority)
	}

	stored, err := s.attachments.Store(ctx, uploads)
	if err != nil {
		return nil, err
	}
	task.Attachments = stored

	var created *structs.Task
	err = s.data.WithTx(ctx, func(ctx context.Context) error {
		t, err := s.data.Tasks.Create(ctx, task)
		if err != nil {
			return err
		}
		if err := s.data.Users.AddTask(ctx, user.ID, t.ID); err != nil {
			compensate(ctx, s.data, "delete created task", func(ctx context.Context) error {
				return s.data.Tasks.Delete(ctx, t.ID)
			})
			return err
		}
		created = t
		return nil
	})
	if err != nil {
		s.attachments.Remove(ctx, stored)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ecode.BadRequest(msgAssigneeNotFound)
		}
		logger.Error(ctx, "failed to create task", "error", err)
		return nil, internal(err)
	}

	s.recorder.TaskCreated()
	logger.Info(ctx, "task created", "id", created.ID.Hex(), "assignee", user.ID.Hex(), "by", actor.ID.Hex())
	return s.views.task(ctx, created)
}

// Get returns a task. Admins may view any task, users only their own.
func (s *TaskService) Get(ctx context.Context, actor structs.Actor, taskID string) (*structs.TaskView, error) {
	task, err := s.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := policy.Check(actor, policy.TaskView, policy.Target{Assignee: task.AssignedTo}); err != nil {
		return nil, err
	}
	return s.views.task(ctx, task)
}

// Update applies a partial update. The assignee of a task may change its
// status only; every other field requires the admin role.
func (s *TaskService) Update(ctx context.Context, actor structs.Actor, taskID string, cmd *structs.UpdateTaskCommand) (*structs.TaskView, error) {
	if cmd == nil || cmd.Empty() {
		return nil, ecode.BadRequest("No fields to update")
	}
	if err := validate(cmd); err != nil {
		return nil, err
	}
	task, err := s.load(ctx, taskID)
	if err != nil {
		return nil, err
	}

	action := policy.TaskUpdate
	if !actor.IsAdmin() && cmd.OnlyStatus() {
		action = policy.TaskUpdateStatus
	}
	if err := policy.Check(actor, action, policy.Target{Assignee: task.AssignedTo}); err != nil {
		return nil, err
	}

	patch, err := s.patch(cmd)
	if err != nil {
		return nil, err
	}

	var newAssignee *structs.User
	if cmd.AssignedTo != nil {
		newAssignee, err = s.assignee(ctx, *cmd.AssignedTo)
		if err != nil {
			return nil, err
		}
		if task.IsAssignedTo(newAssignee.ID) {
			newAssignee = nil
		} else {
			patch.AssignedTo = &newAssignee.ID
		}
	}

	var updated *structs.Task
	if newAssignee == nil {
		updated, err = s.data.Tasks.Update(ctx, task.ID, patch)
	} else {
		updated, err = s.reassign(ctx, task, newAssignee.ID, patch)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ecode.NotFound(msgTaskNotFound)
	}
	if err != nil && ecode.CodeOf(err) != ecode.ServerErr {
		return nil, err
	}
	if err != nil {
		logger.Error(ctx, "failed to update task", "id", task.ID.Hex(), "error", err)
		return nil, internal(err)
	}

	logger.Info(ctx, "task updated", "id", updated.ID.Hex(), "by", actor.ID.Hex())
	return s.views.task(ctx, updated)
}

func (s *TaskService) patch(cmd *structs.UpdateTaskCommand) (*structs.TaskPatch, error) {
	patch := &structs.TaskPatch{}
	if cmd.Title != nil {
		title := strings.TrimSpace(*cmd.Title)
		if title == "" {
			return nil, ecode.BadRequest(ecode.FieldIsRequired("title"))
		}
		patch.Title = &title
	}
	if cmd.Description != nil {
		desc := strings.TrimSpace(*cmd.Description)
		if desc == "" {
			return nil, ecode.BadRequest(ecode.FieldIsRequired("description"))
		}
		patch.Description = &desc
	}
	if cmd.Status != nil {
		status := structs.Status(*cmd.Status)
		patch.Status = &status
	}
	if cmd.Priority != nil {
		priority := structs.Priority(*cmd.Priority)
		patch.Priority = &priority
	}
	if cmd.DueDate != nil {
		due, err := parseDate(*cmd.DueDate)
		if err != nil {
			return nil, err
		}
		patch.DueDate = &due
	}
	return patch, nil
}

// reassign moves task to a new assignee. Steps run in an order where each
// failure has a single undo: add to the new set, update the task, then pull
// from the previous set.
func (s *TaskService) reassign(ctx context.Context, task *structs.Task, to primitive.ObjectID, patch *structs.TaskPatch) (*structs.Task, error) {
	var updated *structs.Task
	err := s.data.WithTx(ctx, func(ctx context.Context) error {
		if err := s.data.Users.AddTask(ctx, to, task.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return errAssigneeGone
			}
			return fmt.Errorf("add to new assignee: %w", err)
		}
		t, err := s.data.Tasks.Update(ctx, task.ID, patch)
		if err != nil {
			compensate(ctx, s.data, "pull from new assignee", func(ctx context.Context) error {
				return s.data.Users.RemoveTask(ctx, to, task.ID)
			})
			return err
		}
		if task.AssignedTo != nil {
			err := s.data.Users.RemoveTask(ctx, *task.AssignedTo, task.ID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				compensate(ctx, s.data, "restore task", func(ctx context.Context) error {
					if _, err := s.data.Tasks.Update(ctx, task.ID, restorePatch(task)); err != nil {
						return err
					}
					return s.data.Users.RemoveTask(ctx, to, task.ID)
				})
				return fmt.Errorf("pull from previous assignee: %w", err)
			}
		}
		updated = t
		return nil
	})
	if errors.Is(err, errAssigneeGone) {
		return nil, ecode.BadRequest(msgAssigneeNotFound)
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// restorePatch sets every mutable field back to the values in t
func restorePatch(t *structs.Task) *structs.TaskPatch {
	return &structs.TaskPatch{
		Title:       &t.Title,
		Description: &t.Description,
		Status:      &t.Status,
		Priority:    &t.Priority,
		DueDate:     &t.DueDate,
		AssignedTo:  t.AssignedTo,
	}
}

// Delete removes a task, pulls it from its assignee's task set and removes
// its stored files.
func (s *TaskService) Delete(ctx context.Context, actor structs.Actor, taskID string) error {
	if err := policy.Check(actor, policy.TaskDelete, policy.Target{}); err != nil {
		return err
	}
	task, err := s.load(ctx, taskID)
	if err != nil {
		return err
	}

	err = s.data.WithTx(ctx, func(ctx context.Context) error {
		pulled := false
		if task.AssignedTo != nil {
			err := s.data.Users.RemoveTask(ctx, *task.AssignedTo, task.ID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			pulled = err == nil
		}
		if err := s.data.Tasks.Delete(ctx, task.ID); err != nil {
			if pulled {
				compensate(ctx, s.data, "restore assignee task", func(ctx context.Context) error {
					return s.data.Users.AddTask(ctx, *task.AssignedTo, task.ID)
				})
			}
			return err
		}
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return ecode.NotFound(msgTaskNotFound)
	}
	if err != nil {
		logger.Error(ctx, "failed to delete task", "id", task.ID.Hex(), "error", err)
		return internal(err)
	}

	s.attachments.Remove(ctx, task.Attachments)
	logger.Info(ctx, "task deleted", "id", task.ID.Hex(), "by", actor.ID.Hex())
	return nil
}

// resolveFilter validates filter and converts its wire fields
func resolveFilter(filter *structs.TaskFilter) (*structs.TaskFilter, error) {
	if filter == nil {
		return &structs.TaskFilter{}, nil
	}
	if err := validate(filter); err != nil {
		return nil, err
	}
	if filter.DueBefore != "" {
		due, err := parseDate(filter.DueBefore)
		if err != nil {
			return nil, err
		}
		filter.DueBeforeTime = &due
	}
	if filter.AssignedTo != "" {
		id, err := parseID(filter.AssignedTo, "assignee")
		if err != nil {
			return nil, err
		}
		filter.AssigneeID = &id
	}
	return filter, nil
}

// List returns every task matching filter, newest first.
func (s *TaskService) List(ctx context.Context, actor structs.Actor, filter *structs.TaskFilter) ([]structs.TaskView, error) {
	if err := policy.Check(actor, policy.TaskViewAll, policy.Target{}); err != nil {
		return nil, err
	}
	filter, err := resolveFilter(filter)
	if err != nil {
		return nil, err
	}
	tasks, err := s.data.Tasks.List(ctx, filter, 0)
	if err != nil {
		return nil, internal(err)
	}
	return s.views.tasks(ctx, tasks)
}

// owned narrows filter to the task set of userID
func (s *TaskService) owned(ctx context.Context, actor structs.Actor, userID string, filter *structs.TaskFilter) (*structs.TaskFilter, error) {
	id, err := parseID(userID, "user")
	if err != nil {
		return nil, err
	}
	if err := policy.Check(actor, policy.TaskViewOwn, policy.Target{UserID: id}); err != nil {
		return nil, err
	}
	user, err := s.data.Users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ecode.NotFound(msgUserNotFound)
	}
	if err != nil {
		return nil, internal(err)
	}

	filter, err = resolveFilter(filter)
	if err != nil {
		return nil, err
	}
	filter.IDs = user.OwnedTaskIDs()
	return filter, nil
}

// ListForUser returns the tasks in userID's task set matching filter.
func (s *TaskService) ListForUser(ctx context.Context, actor structs.Actor, userID string, filter *structs.TaskFilter) ([]structs.TaskView, error) {
	filter, err := s.owned(ctx, actor, userID, filter)
	if err != nil {
		return nil, err
	}
	tasks, err := s.data.Tasks.List(ctx, filter, 0)
	if err != nil {
		return nil, internal(err)
	}
	return s.views.tasks(ctx, tasks)
}

// AddAttachments appends files to a task without exceeding the limit.
func (s *TaskService) AddAttachments(ctx context.Context, actor structs.Actor, taskID string, files []FileInput) (*structs.TaskView, error) {
	if err := policy.Check(actor, policy.TaskUpdate, policy.Target{}); err != nil {
		return nil, err
	}
	task, err := s.load(ctx, taskID)
	if err != nil {
		return nil, err
	}

	max := s.attachments.MaxFiles()
	limitErr := ecode.BadRequest(fmt.Sprintf("A task can have at most %d attachments", max))
	if len(task.Attachments)+len(files) > max {
		return nil, limitErr
	}
	uploads, err := s.attachments.Validate(files)
	if err != nil {
		return nil, err
	}
	stored, err := s.attachments.Store(ctx, uploads)
	if err != nil {
		return nil, err
	}

	updated, err := s.data.Tasks.PushAttachments(ctx, task.ID, stored, max)
	if err != nil {
		s.attachments.Remove(ctx, stored)
		switch {
		case errors.Is(err, repository.ErrAttachmentLimit):
			return nil, limitErr
		case errors.Is(err, repository.ErrNotFound):
			return nil, ecode.NotFound(msgTaskNotFound)
		}
		return nil, internal(err)
	}

	logger.Info(ctx, "attachments added", "id", task.ID.Hex(), "count", len(stored))
	return s.views.task(ctx, updated)
}

// Download streams a stored attachment under the name it was uploaded
// with. Files no task references fall back to the name in the object key.
func (s *TaskService) Download(ctx context.Context, ref string) (io.ReadCloser, string, error) {
	r, name, err := s.attachments.Open(ctx, ref)
	if err != nil {
		return nil, "", err
	}

	p := storage.NormalizePath(ref)
	owners, err := s.data.Tasks.List(ctx, &structs.TaskFilter{AttachmentPath: p}, 1)
	if err != nil {
		logger.Warn(ctx, "failed to resolve attachment name", "path", p, "error", err)
		return r, name, nil
	}
	for _, t := range owners {
		for _, a := range t.Attachments {
			if a.Path == p && a.Name != "" {
				name = a.Name
			}
		}
	}
	return r, name, nil
}

// Stats counts tasks by status. An empty userID counts every task and
// requires the admin role; otherwise the user's own task set is counted.
func (s *TaskService) Stats(ctx context.Context, actor structs.Actor, userID string) (*structs.TaskStats, error) {
	var filter *structs.TaskFilter
	if userID == "" {
		if err := policy.Check(actor, policy.TaskViewAll, policy.Target{}); err != nil {
			return nil, err
		}
	} else {
		f, err := s.owned(ctx, actor, userID, nil)
		if err != nil {
			return nil, err
		}
		filter = f
	}

	stats, err := s.data.Tasks.CountByStatus(ctx, filter)
	if err != nil {
		return nil, internal(err)
	}
	return stats, nil
}
