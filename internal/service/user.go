package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/satvikmishra44/taskhub/ctxutil"
	"github.com/satvikmishra44/taskhub/ecode"
	"github.com/satvikmishra44/taskhub/internal/data"
	"github.com/satvikmishra44/taskhub/internal/data/repository"
	"github.com/satvikmishra44/taskhub/internal/policy"
	"github.com/satvikmishra44/taskhub/internal/structs"
	"github.com/satvikmishra44/taskhub/logging/logger"
)

// MaxRecentTasks caps the tasks embedded in a user view
const MaxRecentTasks = 100

// UserService handles the user directory.
type UserService struct {
	data  *data.Data
	views *viewBuilder
}

// NewUserService creates a new user service.
func NewUserService(d *data.Data, views *viewBuilder) *UserService {
	return &UserService{data: d, views: views}
}

func (s *UserService) load(ctx context.Context, targetID string) (*structs.User, error) {
	id, err := parseID(targetID, "user")
	if err != nil {
		return nil, err
	}
	user, err := s.data.Users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ecode.NotFound(msgUserNotFound)
	}
	if err != nil {
		return nil, internal(err)
	}
	return user, nil
}

// ChangeRole dispatches a role change request. Only promotion exists;
// demotion is always denied and unknown roles fail closed.
func (s *UserService) ChangeRole(ctx context.Context, actor structs.Actor, targetID string, cmd *structs.ChangeRoleCommand) (*structs.UserView, error) {
	if err := validate(cmd); err != nil {
		return nil, err
	}
	switch cmd.Role {
	case structs.RoleAdmin:
		return s.Promote(ctx, actor, targetID)
	case structs.RoleUser:
		return nil, policy.Check(actor, policy.UserDemote, policy.Target{})
	default:
		return nil, policy.Check(actor, policy.Action("user:set-role"), policy.Target{})
	}
}

// Promote grants the admin role to an ordinary user.
func (s *UserService) Promote(ctx context.Context, actor structs.Actor, targetID string) (*structs.UserView, error) {
	if !actor.IsAdmin() {
		return nil, policy.Check(actor, policy.UserPromote, policy.Target{})
	}
	target, err := s.load(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := policy.Check(actor, policy.UserPromote, policy.Target{UserID: target.ID, UserRole: target.Role}); err != nil {
		return nil, err
	}

	promoted, err := s.data.Users.SetRole(ctx, target.ID, structs.RoleUser, structs.RoleAdmin)
	if errors.Is(err, repository.ErrNotFound) {
		// changed since it was loaded: deleted or promoted concurrently
		if _, err := s.load(ctx, targetID); err != nil {
			return nil, err
		}
		return nil, policy.Check(actor, policy.UserPromote, policy.Target{UserID: target.ID, UserRole: structs.RoleAdmin})
	}
	if err != nil {
		return nil, internal(err)
	}

	logger.Info(ctx, "user promoted", "id", promoted.ID.Hex(), "by", actor.ID.Hex())
	view := structs.NewUserView(promoted)
	return &view, nil
}

// PromotedMessage is the confirmation returned after a promotion
func PromotedMessage(v *structs.UserView) string {
	return fmt.Sprintf("%s is now an admin", v.Name)
}

// Delete removes an ordinary user. Tasks assigned to the user become
// unassigned in the same unit of work.
func (s *UserService) Delete(ctx context.Context, actor structs.Actor, targetID string) error {
	if !actor.IsAdmin() {
		return policy.Check(actor, policy.UserDelete, policy.Target{})
	}
	target, err := s.load(ctx, targetID)
	if err != nil {
		return err
	}
	if err := policy.Check(actor, policy.UserDelete, policy.Target{UserID: target.ID, UserRole: target.Role}); err != nil {
		return err
	}

	var (
		unassigned int64
		deleted    bool
	)
	err = s.data.WithTx(ctx, func(ctx context.Context) error {
		if err := s.data.Users.Delete(ctx, target.ID); err != nil {
			return err
		}
		deleted = true
		n, err := s.data.Tasks.UnassignUser(ctx, target.ID)
		unassigned = n
		return err
	})
	if err != nil && deleted && !s.data.Transactional() {
		unassigned, err = s.finishUnassign(ctx, target)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return ecode.NotFound(msgUserNotFound)
	}
	if err != nil {
		logger.Error(ctx, "failed to delete user", "id", target.ID.Hex(), "error", err)
		return internal(err)
	}

	logger.Info(ctx, "user deleted", "id", target.ID.Hex(), "by", actor.ID.Hex(), "unassigned_tasks", unassigned)
	return nil
}

// finishUnassign retries clearing the assignee of a deleted user's tasks.
// The user is already gone, so the retry survives request cancellation.
func (s *UserService) finishUnassign(ctx context.Context, target *structs.User) (int64, error) {
	ctx, cancel := ctxutil.WithAsyncContext(ctx, 0)
	defer cancel()

	n, err := s.data.Tasks.UnassignUser(ctx, target.ID)
	if err != nil {
		ids := make([]string, 0, len(target.Tasks))
		for _, id := range target.Tasks {
			ids = append(ids, id.Hex())
		}
		logger.Error(ctx, "tasks still assigned to deleted user", "user", target.ID.Hex(), "tasks", ids, "error", err)
		return 0, err
	}
	return n, nil
}

// List returns users matching filter, name-only when requested.
func (s *UserService) List(ctx context.Context, actor structs.Actor, filter *structs.UserFilter) ([]structs.UserView, error) {
	if err := policy.Check(actor, policy.UserViewAll, policy.Target{}); err != nil {
		return nil, err
	}
	if filter == nil {
		filter = &structs.UserFilter{}
	}
	if err := validate(filter); err != nil {
		return nil, err
	}

	users, err := s.data.Users.List(ctx, filter)
	if err != nil {
		return nil, internal(err)
	}

	views := make([]structs.UserView, 0, len(users))
	for _, u := range users {
		if filter.NameOnly {
			views = append(views, structs.NewUserNameView(u))
		} else {
			views = append(views, structs.NewUserView(u))
		}
	}
	return views, nil
}

// GetWithRecentTasks returns a user with up to limit of their most recently
// created tasks. limit <= 0 returns every task. Actors may always view
// themselves; viewing anyone else requires the admin role.
func (s *UserService) GetWithRecentTasks(ctx context.Context, actor structs.Actor, targetID string, limit int) (*structs.UserDetailView, error) {
	id, err := parseID(targetID, "user")
	if err != nil {
		return nil, err
	}
	if id != actor.ID {
		if err := policy.Check(actor, policy.UserView, policy.Target{UserID: id}); err != nil {
			return nil, err
		}
	}
	user, err := s.load(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if limit > MaxRecentTasks {
		limit = MaxRecentTasks
	}
	tasks, err := s.data.Tasks.List(ctx, &structs.TaskFilter{IDs: user.OwnedTaskIDs()}, int64(limit))
	if err != nil {
		return nil, internal(err)
	}
	taskViews, err := s.views.tasks(ctx, tasks)
	if err != nil {
		return nil, err
	}

	return &structs.UserDetailView{UserView: structs.NewUserView(user), Tasks: taskViews}, nil
}

// Me returns the actor's own profile with recent tasks and capabilities.
func (s *UserService) Me(ctx context.Context, actor structs.Actor, limit int) (*structs.MeView, error) {
	view, err := s.GetWithRecentTasks(ctx, actor, actor.ID.Hex(), limit)
	if err != nil {
		return nil, err
	}
	return &structs.MeView{UserDetailView: *view, Capabilities: policy.Capabilities(actor)}, nil
}
