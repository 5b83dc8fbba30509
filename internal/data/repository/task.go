package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/satvikmishra44/taskhub/internal/structs"
	"github.com/satvikmishra44/taskhub/logging/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type taskRepository struct {
	collection *mongo.Collection
}

// NewTaskRepository creates a new task repository instance.
func NewTaskRepository(ctx context.Context, db *mongo.Database) (TaskRepository, error) {
	collection := db.Collection("tasks")

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "assigned_to", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "due_date", Value: 1}}},
		{Keys: bson.D{{Key: "attachments.path", Value: 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create task indexes: %w", err)
	}

	return &taskRepository{collection: collection}, nil
}

// Create creates a new task.
func (r *taskRepository) Create(ctx context.Context, task *structs.Task) (*structs.Task, error) {
	now := time.Now().UTC()
	task.ID = primitive.NewObjectID()
	task.CreatedAt = now
	task.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, task); err != nil {
		logger.Error(ctx, "failed to create task", "error", err)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// FindByID retrieves a task by ID.
func (r *taskRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*structs.Task, error) {
	var task structs.Task
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&task); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &task, nil
}

// List returns matching tasks, newest first.
func (r *taskRepository) List(ctx context.Context, filter *structs.TaskFilter, limit int64) ([]*structs.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, taskQuery(filter), opts)
	if err != nil {
		logger.Error(ctx, "failed to list tasks", "error", err)
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer cursor.Close(ctx)

	tasks := []*structs.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	return tasks, nil
}

// Update applies the non-nil fields of patch.
func (r *taskRepository) Update(ctx context.Context, id primitive.ObjectID, patch *structs.TaskPatch) (*structs.Task, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Priority != nil {
		set["priority"] = *patch.Priority
	}
	if patch.DueDate != nil {
		set["due_date"] = *patch.DueDate
	}
	if patch.AssignedTo != nil {
		set["assigned_to"] = *patch.AssignedTo
	}

	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set})
}

// PushAttachments appends atts only if the total stays within max.
func (r *taskRepository) PushAttachments(ctx context.Context, id primitive.ObjectID, atts []structs.Attachment, max int) (*structs.Task, error) {
	if len(atts) > max {
		return nil, ErrAttachmentLimit
	}
	updated, err := r.findOneAndUpdate(ctx,
		attachmentRoom(id, max, len(atts)),
		bson.M{
			"$push": bson.M{"attachments": bson.M{"$each": atts}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if errors.Is(err, ErrNotFound) {
		if _, findErr := r.FindByID(ctx, id); findErr != nil {
			return nil, findErr
		}
		return nil, ErrAttachmentLimit
	}
	return updated, err
}

func (r *taskRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*structs.Task, error) {
	result := r.collection.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var updated structs.Task
	if err := result.Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		logger.Error(ctx, "failed to update task", "error", err)
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return &updated, nil
}

// Delete deletes a task by ID.
func (r *taskRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logger.Error(ctx, "failed to delete task", "id", id.Hex(), "error", err)
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UnassignUser clears the assignee of every task assigned to userID.
func (r *taskRepository) UnassignUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{"assigned_to": userID},
		bson.M{
			"$unset": bson.M{"assigned_to": ""},
			"$set":   bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to unassign tasks: %w", err)
	}
	return result.ModifiedCount, nil
}

// CountByStatus groups matching tasks by status.
func (r *taskRepository) CountByStatus(ctx context.Context, filter *structs.TaskFilter) (*structs.TaskStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: taskQuery(filter)}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status structs.Status `bson:"_id"`
		Count  int64          `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode task counts: %w", err)
	}

	stats := &structs.TaskStats{}
	for _, row := range rows {
		stats.Add(row.Status, row.Count)
	}
	return stats, nil
}
