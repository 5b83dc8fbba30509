package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/satvikmishra44/taskhub/ctxutil"
	"github.com/satvikmishra44/taskhub/ecode"
	"github.com/satvikmishra44/taskhub/internal/data"
	"github.com/satvikmishra44/taskhub/internal/structs"
	"github.com/satvikmishra44/taskhub/logging/logger"
	"github.com/satvikmishra44/taskhub/validator"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	msgUserNotFound     = "User not found"
	msgTaskNotFound     = "Task not found"
	msgAssigneeNotFound = "Assigned user not found"
)

// validate runs struct validation and converts failures to a request error
func validate(v any) error {
	if fields := validator.ValidateStruct(v); len(fields) > 0 {
		return ecode.Invalid(fields)
	}
	return nil
}

// parseID parses a hex object id, what names the entity in the error
func parseID(s, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	if err != nil {
		return primitive.NilObjectID, ecode.BadRequest(ecode.FieldIsInvalid(what + " id"))
	}
	return id, nil
}

// parseDate parses a YYYY-MM-DD calendar date as UTC midnight
func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(structs.DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, ecode.BadRequest("The field 'due_date' must match the format YYYY-MM-DD.")
	}
	return t, nil
}

// internal passes API errors through and wraps anything else
func internal(err error) error {
	var e *ecode.Error
	if errors.As(err, &e) {
		return err
	}
	return ecode.Internal("", err)
}

// compensate runs undo when d cannot roll back, logging its failure. The
// undo step survives cancellation of the request.
func compensate(ctx context.Context, d *data.Data, what string, undo func(ctx context.Context) error) {
	if d.Transactional() {
		return
	}
	ctx, cancel := ctxutil.WithAsyncContext(ctx, 0)
	defer cancel()
	if err := undo(ctx); err != nil {
		logger.Error(ctx, "compensation failed", "step", what, "error", err)
	}
}
