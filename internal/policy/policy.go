// Package policy decides whether an actor may perform an action on a
// target. Evaluation is pure: callers load the target and pass in the
// attributes the table needs.
package policy

import (
	"github.com/satvikmishra44/taskhub/ecode"
	"github.com/satvikmishra44/taskhub/internal/structs"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Action names an operation subject to authorization
type Action string

const (
	TaskCreate       Action = "task:create"
	TaskUpdate       Action = "task:update"
	TaskDelete       Action = "task:delete"
	TaskView         Action = "task:view"
	TaskUpdateStatus Action = "task:update-status"
	TaskViewOwn      Action = "task:view-own"
	TaskViewAll      Action = "task:view-all"
	UserViewAll      Action = "user:view-all"
	UserView         Action = "user:view"
	UserPromote      Action = "user:promote"
	UserDemote       Action = "user:demote"
	UserDelete       Action = "user:delete"
)

// Actions lists every known action in table order
var Actions = []Action{
	TaskCreate, TaskUpdate, TaskDelete, TaskView, TaskUpdateStatus, TaskViewOwn,
	TaskViewAll, UserViewAll, UserView, UserPromote, UserDemote, UserDelete,
}

// Decision is the outcome of an authorization check.
type Decision int

const (
	Deny Decision = iota
	Allow
)

// String returns "allow" or "deny".
func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// DenyReason describes why a check was denied.
type DenyReason int

const (
	ReasonNone DenyReason = iota
	ReasonNotAdmin
	ReasonNotAssignee
	ReasonNotSelf
	ReasonAlreadyAdmin
	ReasonDemotion
	ReasonAdminTarget
	ReasonUnknownAction
)

// String returns the client facing message for the reason
func (r DenyReason) String() string {
	switch r {
	case ReasonNone:
		return ""
	case ReasonNotAdmin:
		return "admin access required"
	case ReasonNotAssignee:
		return "task is not assigned to you"
	case ReasonNotSelf:
		return "you can only view your own tasks"
	case ReasonAlreadyAdmin:
		return "user is already an admin"
	case ReasonDemotion:
		return "demotion is not allowed"
	case ReasonAdminTarget:
		return "admins cannot be deleted"
	default:
		return "invalid update operation"
	}
}

// Target carries the attributes of the entity acted upon.
// Task actions use Assignee, user actions use UserID and UserRole.
type Target struct {
	UserID   primitive.ObjectID
	UserRole structs.Role
	Assignee *primitive.ObjectID
}

// Result is the outcome of Evaluate
type Result struct {
	Decision Decision
	Reason   DenyReason
}

func allow() Result { return Result{Decision: Allow} }
func deny(reason DenyReason) Result { return Result{Decision: Deny, Reason: reason} }

// Allowed reports whether the decision is Allow
func (r Result) Allowed() bool { return r.Decision == Allow }

// Err converts a denial into an API error, nil when allowed
func (r Result) Err() error {
	switch {
	case r.Decision == Allow:
		return nil
	case r.Reason == ReasonAlreadyAdmin, r.Reason == ReasonUnknownAction:
		return ecode.BadRequest(r.Reason.String())
	default:
		return ecode.Forbidden(r.Reason.String())
	}
}

// Evaluate applies the decision table to (actor, action, target)
func Evaluate(actor structs.Actor, action Action, target Target) Result {
	switch action {
	case TaskCreate, TaskUpdate, TaskDelete, TaskViewAll, UserViewAll, UserView:
		if !actor.IsAdmin() {
			return deny(ReasonNotAdmin)
		}
		return allow()

	case TaskView, TaskUpdateStatus:
		if actor.IsAdmin() {
			return allow()
		}
		if target.Assignee == nil || *target.Assignee != actor.ID {
			return deny(ReasonNotAssignee)
		}
		return allow()

	case TaskViewOwn:
		if target.UserID != actor.ID {
			return deny(ReasonNotSelf)
		}
		return allow()

	case UserPromote:
		if !actor.IsAdmin() {
			return deny(ReasonNotAdmin)
		}
		if target.UserRole != structs.RoleUser {
			return deny(ReasonAlreadyAdmin)
		}
		return allow()

	case UserDemote:
		return deny(ReasonDemotion)

	case UserDelete:
		if !actor.IsAdmin() {
			return deny(ReasonNotAdmin)
		}
		if target.UserRole == structs.RoleAdmin {
			return deny(ReasonAdminTarget)
		}
		return allow()

	default:
		return deny(ReasonUnknownAction)
	}
}

// Check is Evaluate returning an API error on denial
func Check(actor structs.Actor, action Action, target Target) error {
	return Evaluate(actor, action, target).Err()
}

// Capabilities lists the actions role may perform on its own tasks and on
// ordinary users. Clients use it to decide which controls to show; every
// request is still checked with Evaluate.
func Capabilities(actor structs.Actor) []string {
	self := actor.ID
	favourable := Target{UserID: self, UserRole: structs.RoleUser, Assignee: &self}

	caps := make([]string, 0, len(Actions))
	for _, a := range Actions {
		if Evaluate(actor, a, favourable).Allowed() {
			caps = append(caps, string(a))
		}
	}
	return caps
}
