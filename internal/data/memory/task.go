package memory

import (
	"context"
	"time"

	"github.com/satvikmishra44/taskhub/internal/data/repository"
	"github.com/satvikmishra44/taskhub/internal/structs"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type taskRecord struct {
	task structs.Task
	seq  int64
}

type taskRepository struct {
	s *Store
}

func cloneTask(t *structs.Task) *structs.Task {
	c := *t
	if t.AssignedTo != nil {
		id := *t.AssignedTo
		c.AssignedTo = &id
	}
	c.Attachments = append([]structs.Attachment{}, t.Attachments...)
	return &c
}

func (r *taskRepository) Create(_ context.Context, task *structs.Task) (*structs.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now().UTC()
	task.ID = primitive.NewObjectID()
	task.CreatedAt = now
	task.UpdatedAt = now
	r.s.tasks[task.ID.Hex()] = &taskRecord{task: *cloneTask(task), seq: r.s.next()}
	return cloneTask(task), nil
}

func (r *taskRepository) FindByID(_ context.Context, id primitive.ObjectID) (*structs.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.tasks[id.Hex()]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneTask(&rec.task), nil
}

func (r *taskRepository) List(_ context.Context, filter *structs.TaskFilter, limit int64) ([]*structs.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	recs := r.match(filter)
	newestFirst(recs, func(rec *taskRecord) (int64, int64) {
		return rec.task.CreatedAt.UnixNano(), rec.seq
	})
	if limit > 0 && int64(len(recs)) > limit {
		recs = recs[:limit]
	}

	tasks := make([]*structs.Task, 0, len(recs))
	for _, rec := range recs {
		tasks = append(tasks, cloneTask(&rec.task))
	}
	return tasks, nil
}

func (r *taskRepository) match(f *structs.TaskFilter) []*taskRecord {
	var ids map[primitive.ObjectID]bool
	if f != nil && f.IDs != nil {
		ids = make(map[primitive.ObjectID]bool, len(f.IDs))
		for _, id := range f.IDs {
			ids[id] = true
		}
	}

	recs := []*taskRecord{}
	for _, rec := range r.s.tasks {
		t := &rec.task
		if f != nil {
			if f.Status != "" && t.Status != f.Status {
				continue
			}
			if f.Priority != "" && t.Priority != f.Priority {
				continue
			}
			if f.DueBeforeTime != nil && t.DueDate.After(*f.DueBeforeTime) {
				continue
			}
			if f.AssigneeID != nil && !t.IsAssignedTo(*f.AssigneeID) {
				continue
			}
			if ids != nil && !ids[t.ID] {
				continue
			}
			if f.AttachmentPath != "" && !hasAttachment(t, f.AttachmentPath) {
				continue
			}
		}
		recs = append(recs, rec)
	}
	return recs
}

func hasAttachment(t *structs.Task, path string) bool {
	for _, a := range t.Attachments {
		if a.Path == path {
			return true
		}
	}
	return false
}

func (r *taskRepository) Update(_ context.Context, id primitive.ObjectID, patch *structs.TaskPatch) (*structs.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.tasks[id.Hex()]
	if !ok {
		return nil, repository.ErrNotFound
	}
	t := &rec.task
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		t.DueDate = *patch.DueDate
	}
	if patch.AssignedTo != nil {
		assignee := *patch.AssignedTo
		t.AssignedTo = &assignee
	}
	t.UpdatedAt = time.Now().UTC()
	return cloneTask(t), nil
}

func (r *taskRepository) PushAttachments(_ context.Context, id primitive.ObjectID, atts []structs.Attachment, max int) (*structs.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.tasks[id.Hex()]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if len(rec.task.Attachments)+len(atts) > max {
		return nil, repository.ErrAttachmentLimit
	}
	rec.task.Attachments = append(rec.task.Attachments, atts...)
	rec.task.UpdatedAt = time.Now().UTC()
	return cloneTask(&rec.task), nil
}

func (r *taskRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tasks[id.Hex()]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.tasks, id.Hex())
	return nil
}

func (r *taskRepository) UnassignUser(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, rec := range r.s.tasks {
		if rec.task.IsAssignedTo(userID) {
			rec.task.AssignedTo = nil
			rec.task.UpdatedAt = time.Now().UTC()
			n++
		}
	}
	return n, nil
}

func (r *taskRepository) CountByStatus(_ context.Context, filter *structs.TaskFilter) (*structs.TaskStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	stats := &structs.TaskStats{}
	for _, rec := range r.match(filter) {
		stats.Add(rec.task.Status, 1)
	}
	return stats, nil
}
