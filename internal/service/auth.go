package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/satvikmishra44/taskhub/config"
	"github.com/satvikmishra44/taskhub/crypto"
	"github.com/satvikmishra44/taskhub/ecode"
	"github.com/satvikmishra44/taskhub/internal/data"
	"github.com/satvikmishra44/taskhub/internal/data/repository"
	"github.com/satvikmishra44/taskhub/internal/policy"
	"github.com/satvikmishra44/taskhub/internal/structs"
	"github.com/satvikmishra44/taskhub/logging/logger"
	"github.com/satvikmishra44/taskhub/security/jwt"
	"github.com/satvikmishra44/taskhub/validator"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// login attempt outcomes reported to the Recorder
const (
	LoginSuccess       = "success"
	LoginUnknownEmail  = "unknown_email"
	LoginWrongPassword = "wrong_password"
)

// AuthService handles registration, login and session resolution.
type AuthService struct {
	data     *data.Data
	tokens   *jwt.TokenManager
	denylist jwt.Denylist
	seed     *config.SeedAdmin
	recorder Recorder
}

// NewAuthService creates a new auth service. denylist may be nil, in which
// case logout is a client side operation only.
func NewAuthService(d *data.Data, tokens *jwt.TokenManager, denylist jwt.Denylist, seed *config.SeedAdmin, recorder Recorder) *AuthService {
	if seed == nil {
		seed = &config.SeedAdmin{}
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &AuthService{
		data:     d,
		tokens:   tokens,
		denylist: denylist,
		seed:     seed,
		recorder: recorder,
	}
}

// reserved reports whether email is the seed admin address awaiting its
// first registration
func (s *AuthService) reserved(email string) bool {
	return s.seed.Email != "" && s.seed.Password == "" && strings.EqualFold(s.seed.Email, email)
}

// Register creates a user. The requested role is ignored: registrations
// always receive the user role unless the email is the reserved seed admin.
func (s *AuthService) Register(ctx context.Context, body *structs.RegisterBody) (*structs.UserView, error) {
	body.Name = strings.TrimSpace(body.Name)
	body.Email = strings.ToLower(strings.TrimSpace(body.Email))
	if err := validate(body); err != nil {
		return nil, err
	}

	if _, err := s.data.Users.FindByEmail(ctx, body.Email); err == nil {
		return nil, ecode.Duplicate("Email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, internal(err)
	}

	hashed, err := crypto.HashPassword(body.Password)
	if errors.Is(err, crypto.ErrPasswordTooLong) {
		return nil, ecode.BadRequest("The field 'password' must be no longer than 72 bytes.")
	}
	if err != nil {
		return nil, internal(err)
	}

	role := structs.RoleUser
	if s.reserved(body.Email) {
		role = structs.RoleAdmin
	}
	if body.Role != "" && structs.Role(body.Role) != role {
		logger.Warn(ctx, "requested role ignored", "email", body.Email, "requested", body.Role)
	}

	user, err := s.data.Users.Create(ctx, &structs.User{
		Name:     body.Name,
		Email:    body.Email,
		Password: hashed,
		Role:     role,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ecode.Duplicate("Email already exists")
	}
	if err != nil {
		return nil, internal(err)
	}

	logger.Info(ctx, "user registered", "id", user.ID.Hex(), "role", user.Role)
	view := structs.NewUserView(user)
	return &view, nil
}

// Login verifies credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, body *structs.LoginBody) (*structs.LoginResult, error) {
	body.Email = strings.ToLower(strings.TrimSpace(body.Email))
	if err := validate(body); err != nil {
		return nil, err
	}

	user, err := s.data.Users.FindByEmail(ctx, body.Email)
	if errors.Is(err, repository.ErrNotFound) {
		s.recorder.LoginAttempt(LoginUnknownEmail)
		return nil, ecode.NotFound(msgUserNotFound)
	}
	if err != nil {
		return nil, internal(err)
	}

	ok, err := crypto.VerifyPassword(user.Password, body.Password)
	if err != nil {
		logger.Error(ctx, "stored password digest is unusable", "id", user.ID.Hex(), "error", err)
		return nil, internal(err)
	}
	if !ok {
		s.recorder.LoginAttempt(LoginWrongPassword)
		logger.Warn(ctx, "login rejected", "id", user.ID.Hex())
		return nil, ecode.NotAuthenticated("Invalid password")
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(uuid.NewString(), user.ID.Hex())
	if err != nil {
		return nil, internal(err)
	}
	s.recorder.LoginAttempt(LoginSuccess)

	actor := structs.Actor{ID: user.ID, Name: user.Name, Role: user.Role}
	return &structs.LoginResult{
		Token:        token,
		ID:           user.ID.Hex(),
		Name:         user.Name,
		Role:         user.Role,
		ExpiresAt:    expiresAt,
		Capabilities: policy.Capabilities(actor),
	}, nil
}

// Resolve turns a bearer token into a session. The actor's role is read from
// the store, so promotions take effect on the next request.
func (s *AuthService) Resolve(ctx context.Context, token string) (*structs.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ecode.NotAuthenticated("Missing token")
	}

	claims, err := s.tokens.ParseToken(token)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ecode.NotAuthenticated("Token expired")
	}
	if err != nil {
		return nil, ecode.NotAuthenticated("Invalid token")
	}

	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, claims.JTI)
		if err != nil {
			return nil, internal(err)
		}
		if revoked {
			return nil, ecode.NotAuthenticated("Token revoked")
		}
	}

	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return nil, ecode.NotAuthenticated("Invalid token")
	}
	user, err := s.data.Users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ecode.NotAuthenticated("Invalid token")
	}
	if err != nil {
		return nil, internal(err)
	}

	return &structs.Session{
		Actor:     structs.Actor{ID: user.ID, Name: user.Name, Role: user.Role},
		TokenID:   claims.JTI,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

// Logout revokes the session token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, session *structs.Session) error {
	if session == nil {
		return ecode.NotAuthenticated("")
	}
	if s.denylist == nil {
		return nil
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.denylist.Revoke(ctx, session.TokenID, ttl); err != nil {
		return internal(err)
	}
	logger.Info(ctx, "session revoked", "user", session.Actor.ID.Hex())
	return nil
}

// SeedAdmin provisions an administrator. It is idempotent: an existing admin
// is left unchanged and an existing user with the email is promoted.
func (s *AuthService) SeedAdmin(ctx context.Context, seed *config.SeedAdmin) (*structs.UserView, bool, error) {
	if seed == nil || seed.Email == "" {
		return nil, false, ecode.BadRequest(ecode.FieldIsRequired("email"))
	}
	email := strings.ToLower(strings.TrimSpace(seed.Email))
	if err := validator.Var(email, "email"); err != nil {
		return nil, false, ecode.BadRequest(ecode.FieldIsInvalid("email"))
	}

	existing, err := s.data.Users.FindByEmail(ctx, email)
	switch {
	case err == nil && existing.IsAdmin():
		view := structs.NewUserView(existing)
		return &view, false, nil
	case err == nil:
		promoted, err := s.data.Users.SetRole(ctx, existing.ID, structs.RoleUser, structs.RoleAdmin)
		if err != nil {
			return nil, false, internal(err)
		}
		logger.Info(ctx, "seed admin promoted", "id", promoted.ID.Hex())
		view := structs.NewUserView(promoted)
		return &view, true, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, false, internal(err)
	}

	if err := validator.Var(seed.Password, "min=6,max=72"); err != nil {
		return nil, false, ecode.BadRequest("The field 'password' must be between 6 and 72 characters long.")
	}
	hashed, err := crypto.HashPassword(seed.Password)
	if errors.Is(err, crypto.ErrPasswordTooLong) {
		return nil, false, ecode.BadRequest("The field 'password' must be no longer than 72 bytes.")
	}
	if err != nil {
		return nil, false, internal(err)
	}

	name := strings.TrimSpace(seed.Name)
	if name == "" {
		name = "Administrator"
	}
	user, err := s.data.Users.Create(ctx, &structs.User{
		Name:     name,
		Email:    email,
		Password: hashed,
		Role:     structs.RoleAdmin,
	})
	if err != nil {
		return nil, false, internal(err)
	}

	logger.Info(ctx, "seed admin created", "id", user.ID.Hex())
	view := structs.NewUserView(user)
	return &view, true, nil
}
