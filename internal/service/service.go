// Package service contains the business logic of taskhub. Every operation
// receives the acting session explicitly and consults the policy package
// before touching the store.
package service

import (
	"github.com/satvikmishra44/taskhub/config"
	"github.com/satvikmishra44/taskhub/internal/data"
	"github.com/satvikmishra44/taskhub/security/jwt"
	"github.com/satvikmishra44/taskhub/storage"
)

// Recorder observes domain events, typically for metrics.
type Recorder interface {
	LoginAttempt(result string)
	TaskCreated()
}

type nopRecorder struct{}

func (nopRecorder) LoginAttempt(string) {}
func (nopRecorder) TaskCreated()        {}

// Options holds the dependencies of the services.
type Options struct {
	Data       *data.Data
	Storage    storage.Interface
	Tokens     *jwt.TokenManager
	Denylist   jwt.Denylist
	Auth       *config.Auth
	Attachment *config.Attachment
	// PublicPrefix is the URL path attachments are served under
	PublicPrefix string
	Recorder     Recorder
}

// Service aggregates all business logic services.
type Service struct {
	Auth       *AuthService
	User       *UserService
	Task       *TaskService
	Attachment *AttachmentService
}

// New creates a new service instance with all sub-services initialized.
func New(opts *Options) *Service {
	recorder := opts.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}
	auth := opts.Auth
	if auth == nil {
		auth = &config.Auth{JWT: &config.JWT{}}
	}
	if auth.SeedAdmin == nil {
		auth.SeedAdmin = &config.SeedAdmin{}
	}

	attachments := NewAttachmentService(opts.Storage, opts.Attachment, opts.PublicPrefix)
	views := &viewBuilder{data: opts.Data, attachments: attachments}

	return &Service{
		Auth:       NewAuthService(opts.Data, opts.Tokens, opts.Denylist, auth.SeedAdmin, recorder),
		User:       NewUserService(opts.Data, views),
		Task:       NewTaskService(opts.Data, attachments, views, recorder),
		Attachment: attachments,
	}
}
