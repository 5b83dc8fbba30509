package service

import (
	"context"

	"github.com/satvikmishra44/taskhub/internal/data"
	"github.com/satvikmishra44/taskhub/internal/structs"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// viewBuilder renders tasks with assignee names and attachment URLs
type viewBuilder struct {
	data        *data.Data
	attachments *AttachmentService
}

// tasks renders tasks, resolving every assignee with a single lookup.
// Assignees that no longer exist render as unassigned.
func (b *viewBuilder) tasks(ctx context.Context, tasks []*structs.Task) ([]structs.TaskView, error) {
	ids := make([]primitive.ObjectID, 0, len(tasks))
	for _, t := range tasks {
		if t.AssignedTo != nil {
			ids = append(ids, *t.AssignedTo)
		}
	}

	names := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) > 0 {
		users, err := b.data.Users.FindByIDs(ctx, ids)
		if err != nil {
			return nil, internal(err)
		}
		for _, u := range users {
			names[u.ID] = u.Name
		}
	}

	views := make([]structs.TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, b.render(t, names))
	}
	return views, nil
}

// task renders a single task
func (b *viewBuilder) task(ctx context.Context, t *structs.Task) (*structs.TaskView, error) {
	views, err := b.tasks(ctx, []*structs.Task{t})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (b *viewBuilder) render(t *structs.Task, names map[primitive.ObjectID]string) structs.TaskView {
	v := structs.TaskView{
		ID:             t.ID.Hex(),
		Title:          t.Title,
		Description:    t.Description,
		Status:         t.Status,
		Priority:       t.Priority,
		DueDate:        t.DueDate.UTC().Format(structs.DateLayout),
		AssignedToName: structs.Unassigned,
		Attachments:    make([]structs.AttachmentView, 0, len(t.Attachments)),
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
	if t.AssignedTo != nil {
		if name, ok := names[*t.AssignedTo]; ok {
			v.AssignedTo = t.AssignedTo.Hex()
			v.AssignedToName = name
		}
	}
	for _, a := range t.Attachments {
		v.Attachments = append(v.Attachments, structs.AttachmentView{
			Name: a.Name,
			URL:  b.attachments.PublicURL(a.Path),
			Size: a.Size,
		})
	}
	return v
}
