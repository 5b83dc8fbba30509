package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/satvikmishra44/taskhub/internal/structs"
	"github.com/satvikmishra44/taskhub/logging/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new user repository instance.
func NewUserRepository(ctx context.Context, db *mongo.Database) (UserRepository, error) {
	collection := db.Collection("users")

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		return nil, fmt.Errorf("failed to create index on email: %w", err)
	}

	return &userRepository{collection: collection}, nil
}

// Create creates a new user.
func (r *userRepository) Create(ctx context.Context, user *structs.User) (*structs.User, error) {
	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.Email = strings.ToLower(user.Email)
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Tasks == nil {
		user.Tasks = []primitive.ObjectID{}
	}

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		logger.Error(ctx, "failed to create user", "error", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info(ctx, "user created", "id", user.ID.Hex())
	return user, nil
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*structs.User, error) {
	var user structs.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// FindByID retrieves a user by ID.
func (r *userRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*structs.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByEmail retrieves a user by email, case-insensitively.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*structs.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

// FindByIDs retrieves the users with the given ids, in no particular order.
func (r *userRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*structs.User, error) {
	if len(ids) == 0 {
		return []*structs.User{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

// List retrieves users matching filter, newest first.
func (r *userRepository) List(ctx context.Context, filter *structs.UserFilter) ([]*structs.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if filter != nil && filter.NameOnly {
		opts.SetProjection(bson.M{"name": 1})
	}
	return r.find(ctx, userQuery(filter), opts)
}

func (r *userRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*structs.User, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		logger.Error(ctx, "failed to list users", "error", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []*structs.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// SetRole changes the role only while the stored role equals from.
func (r *userRepository) SetRole(ctx context.Context, id primitive.ObjectID, from, to structs.Role) (*structs.User, error) {
	result := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "role": from},
		bson.M{"$set": bson.M{"role": to, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var updated structs.User
	if err := result.Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		logger.Error(ctx, "failed to update user role", "id", id.Hex(), "error", err)
		return nil, fmt.Errorf("failed to update user role: %w", err)
	}

	logger.Info(ctx, "user role changed", "id", id.Hex(), "role", to)
	return &updated, nil
}

// AddTask appends taskID to the user's task set, once.
func (r *userRepository) AddTask(ctx context.Context, userID, taskID primitive.ObjectID) error {
	return r.updateTasks(ctx, userID, bson.M{"$addToSet": bson.M{"tasks": taskID}})
}

// RemoveTask removes taskID from the user's task set.
func (r *userRepository) RemoveTask(ctx context.Context, userID, taskID primitive.ObjectID) error {
	return r.updateTasks(ctx, userID, bson.M{"$pull": bson.M{"tasks": taskID}})
}

func (r *userRepository) updateTasks(ctx context.Context, userID primitive.ObjectID, update bson.M) error {
	update["$set"] = bson.M{"updated_at": time.Now().UTC()}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to update user tasks: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a user by ID.
func (r *userRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logger.Error(ctx, "failed to delete user", "id", id.Hex(), "error", err)
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	logger.Info(ctx, "user deleted", "id", id.Hex())
	return nil
}

// Ping checks the connection to the store.
func (r *userRepository) Ping(ctx context.Context) error {
	return r.collection.Database().Client().Ping(ctx, nil)
}
