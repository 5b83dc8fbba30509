// Package middleware provides the gin middleware chain of the HTTP server.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/satvikmishra44/taskhub/ctxutil"
	"github.com/satvikmishra44/taskhub/ecode"
	"github.com/satvikmishra44/taskhub/internal/policy"
	"github.com/satvikmishra44/taskhub/internal/service"
	"github.com/satvikmishra44/taskhub/internal/structs"
	"github.com/satvikmishra44/taskhub/logging/logger"
	"github.com/satvikmishra44/taskhub/net/resp"
)

// bearer extracts the token of an "Authorization: Bearer <token>" header
func bearer(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Authenticate resolves the bearer token into a session and stores it
// under ctxutil.SessionKey. Requests without a valid token are rejected.
func Authenticate(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxutil.WithGinContext(c.Request.Context(), c)

		session, err := auth.Resolve(ctx, bearer(c.GetHeader("Authorization")))
		if err != nil {
			if ecode.CodeOf(err) == ecode.ServerErr {
				logger.Error(ctx, "failed to resolve session", "error", err)
			} else {
				logger.Debug(ctx, "request not authenticated", "path", c.Request.URL.Path, "reason", ecode.MessageOf(err))
			}
			resp.Fail(c.Writer, resp.FromError(err))
			c.Abort()
			return
		}

		ctx = ctxutil.SetValue(ctx, ctxutil.SessionKey, session)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAdmin rejects sessions that do not hold the admin role.
// It must run after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := SessionFrom(c)
		if !ok {
			resp.Fail(c.Writer, resp.FromError(ecode.NotAuthenticated("Missing token")))
			c.Abort()
			return
		}
		if !session.Actor.IsAdmin() {
			logger.Warn(c.Request.Context(), "access denied", "user", session.Actor.ID.Hex(), "path", c.Request.URL.Path)
			resp.Fail(c.Writer, resp.FromError(ecode.Forbidden(policy.ReasonNotAdmin.String())))
			c.Abort()
			return
		}
		c.Next()
	}
}

// SessionFrom returns the session stored by Authenticate
func SessionFrom(c *gin.Context) (*structs.Session, bool) {
	v, exists := c.Get(ctxutil.SessionKey)
	if !exists {
		return nil, false
	}
	session, ok := v.(*structs.Session)
	return session, ok && session != nil
}

// ActorFrom returns the authenticated actor, the zero Actor when absent
func ActorFrom(c *gin.Context) structs.Actor {
	if session, ok := SessionFrom(c); ok {
		return session.Actor
	}
	return structs.Actor{}
}
