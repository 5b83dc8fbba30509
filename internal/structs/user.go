// Package structs defines the user and task domain models, request
// commands and response views.
package structs

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role of a user
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a user entity.
type User struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name      string               `bson:"name" json:"name"`
	Email     string               `bson:"email" json:"email"`
	Password  string               `bson:"password" json:"-"`
	Role      Role                 `bson:"role" json:"role"`
	Tasks     []primitive.ObjectID `bson:"tasks" json:"tasks"`
	CreatedAt time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time            `bson:"updated_at" json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// RegisterBody is the registration payload. A role field is accepted for
// compatibility and ignored.
type RegisterBody struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role,omitempty"`
}

// LoginBody is the login payload
type LoginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangeRoleCommand requests a role transition for a user
type ChangeRoleCommand struct {
	Role Role `json:"role" validate:"required"`
}

// UserFilter narrows user listings
type UserFilter struct {
	Role     Role   `form:"role" validate:"omitempty,oneof=user admin"`
	Query    string `form:"q"`
	NameOnly bool   `form:"-"`
}

// UserView is the public representation of a user
type UserView struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email,omitempty"`
	Role      Role       `json:"role,omitempty"`
	TaskCount *int       `json:"task_count,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// NewUserView renders u without its password digest
func NewUserView(u *User) UserView {
	n := len(u.Tasks)
	created := u.CreatedAt
	return UserView{
		ID:        u.ID.Hex(),
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		TaskCount: &n,
		CreatedAt: &created,
	}
}

// NewUserNameView renders only id and name, used by assignment pickers
func NewUserNameView(u *User) UserView {
	return UserView{ID: u.ID.Hex(), Name: u.Name}
}

// Actor is the authenticated identity making a request
type Actor struct {
	ID   primitive.ObjectID
	Name string
	Role Role
}

// IsAdmin reports whether the actor holds the admin role
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// Session is the resolved bearer token of a request
type Session struct {
	Actor     Actor
	TokenID   string
	ExpiresAt time.Time
}

// LoginResult is returned by a successful login
type LoginResult struct {
	Token        string    `json:"token"`
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	ExpiresAt    time.Time `json:"expires_at"`
	Capabilities []string  `json:"capabilities"`
}

// UserDetailView is a user with their most recent tasks
type UserDetailView struct {
	UserView
	Tasks []TaskView `json:"tasks"`
}

// MeView is the self-service profile
type MeView struct {
	UserDetailView
	Capabilities []string `json:"capabilities"`
}

// OwnedTaskIDs returns the user's task set, never nil
func (u *User) OwnedTaskIDs() []primitive.ObjectID {
	if u.Tasks == nil {
		return []primitive.ObjectID{}
	}
	return u.Tasks
}
