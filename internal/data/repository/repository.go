// Package repository defines the user and task stores and their MongoDB
// implementations.
package repository

import (
	"context"
	"errors"

	"github.com/satvikmishra44/taskhub/internal/structs"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when no document matches
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique key is already taken
	ErrDuplicate = errors.New("duplicate key")
	// ErrAttachmentLimit is returned when an append would exceed the limit
	ErrAttachmentLimit = errors.New("attachment limit exceeded")
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *structs.User) (*structs.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*structs.User, error)
	FindByEmail(ctx context.Context, email string) (*structs.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*structs.User, error)
	List(ctx context.Context, filter *structs.UserFilter) ([]*structs.User, error)
	// SetRole changes the role only while the stored role equals from.
	SetRole(ctx context.Context, id primitive.ObjectID, from, to structs.Role) (*structs.User, error)
	AddTask(ctx context.Context, userID, taskID primitive.ObjectID) error
	RemoveTask(ctx context.Context, userID, taskID primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Ping(ctx context.Context) error
}

// TaskRepository defines the interface for task data operations.
type TaskRepository interface {
	Create(ctx context.Context, task *structs.Task) (*structs.Task, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*structs.Task, error)
	// List returns matching tasks, newest first. limit <= 0 means no limit.
	List(ctx context.Context, filter *structs.TaskFilter, limit int64) ([]*structs.Task, error)
	Update(ctx context.Context, id primitive.ObjectID, patch *structs.TaskPatch) (*structs.Task, error)
	// PushAttachments appends atts only if the total stays within max.
	PushAttachments(ctx context.Context, id primitive.ObjectID, atts []structs.Attachment, max int) (*structs.Task, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// UnassignUser clears the assignee of every task assigned to userID.
	UnassignUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	CountByStatus(ctx context.Context, filter *structs.TaskFilter) (*structs.TaskStats, error)
}
