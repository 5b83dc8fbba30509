package structs

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status of a task
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Priority of a task
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DateLayout is the wire format of due dates
const DateLayout = "2006-01-02"

// Unassigned is shown in place of a missing assignee
const Unassigned = "Unassigned"

// Task represents a task entity.
type Task struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty"`
	Title       string              `bson:"title"`
	Description string              `bson:"description"`
	Status      Status              `bson:"status"`
	Priority    Priority            `bson:"priority"`
	DueDate     time.Time           `bson:"due_date"`
	AssignedTo  *primitive.ObjectID `bson:"assigned_to,omitempty"`
	Attachments []Attachment        `bson:"attachments"`
	CreatedBy   primitive.ObjectID  `bson:"created_by"`
	CreatedAt   time.Time           `bson:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at"`
}

// IsAssignedTo reports whether id is the task's assignee
func (t *Task) IsAssignedTo(id primitive.ObjectID) bool {
	return t.AssignedTo != nil && *t.AssignedTo == id
}

// Attachment is a stored file reference. Path always uses forward slashes.
type Attachment struct {
	Path        string `bson:"path"`
	Name        string `bson:"name"`
	Size        int64  `bson:"size"`
	ContentType string `bson:"content_type"`
}

// CreateTaskBody holds the non-file fields of a task creation form
type CreateTaskBody struct {
	Title       string `form:"title" json:"title" validate:"required,max=200"`
	Description string `form:"description" json:"description" validate:"required"`
	Status      string `form:"status" json:"status" validate:"omitempty,oneof=pending in-progress completed"`
	Priority    string `form:"priority" json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     string `form:"due_date" json:"due_date" validate:"required,datetime=2006-01-02"`
	AssignedTo  string `form:"assigned_to" json:"assigned_to" validate:"required,mongodb"`
}

// UpdateTaskCommand is a partial task update. Nil fields are left unchanged.
type UpdateTaskCommand struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,min=1"`
	Status      *string `json:"status" validate:"omitempty,oneof=pending in-progress completed"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	AssignedTo  *string `json:"assigned_to" validate:"omitempty,mongodb"`
}

// Empty reports whether the command changes nothing
func (c *UpdateTaskCommand) Empty() bool {
	return c.Title == nil && c.Description == nil && c.Status == nil &&
		c.Priority == nil && c.DueDate == nil && c.AssignedTo == nil
}

// OnlyStatus reports whether status is the only field set
func (c *UpdateTaskCommand) OnlyStatus() bool {
	return c.Status != nil && c.Title == nil && c.Description == nil &&
		c.Priority == nil && c.DueDate == nil && c.AssignedTo == nil
}

// TaskPatch is a validated partial update applied by repositories
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *Priority
	DueDate     *time.Time
	AssignedTo  *primitive.ObjectID
}

// TaskFilter narrows task listings
type TaskFilter struct {
	Status     Status   `form:"status" validate:"omitempty,oneof=pending in-progress completed"`
	Priority   Priority `form:"priority" validate:"omitempty,oneof=low medium high"`
	DueBefore  string   `form:"due_before" validate:"omitempty,datetime=2006-01-02"`
	AssignedTo string   `form:"assigned_to" validate:"omitempty,mongodb"`

	// resolved by the service
	AttachmentPath string               `form:"-"`
	IDs            []primitive.ObjectID `form:"-"`
	DueBeforeTime  *time.Time           `form:"-"`
	AssigneeID     *primitive.ObjectID  `form:"-"`
}

// TaskStats counts tasks by status
type TaskStats struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
}

// Add counts n tasks with status s
func (st *TaskStats) Add(s Status, n int64) {
	switch s {
	case StatusPending:
		st.Pending += n
	case StatusInProgress:
		st.InProgress += n
	case StatusCompleted:
		st.Completed += n
	}
	st.Total += n
}

// AttachmentView is the public representation of an attachment
type AttachmentView struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// TaskView is the public representation of a task
type TaskView struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Status         Status           `json:"status"`
	Priority       Priority         `json:"priority"`
	DueDate        string           `json:"due_date"`
	AssignedTo     string           `json:"assigned_to,omitempty"`
	AssignedToName string           `json:"assigned_to_name"`
	Attachments    []AttachmentView `json:"attachments"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}
