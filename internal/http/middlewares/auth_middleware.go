package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/hrhub/internal/actorctx"
	"github.com/geocoder89/hrhub/internal/auth"
	"github.com/geocoder89/hrhub/internal/config"
	"github.com/geocoder89/hrhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Keep these small so tests can fake them easily.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

// ActorResolver confirms the token subject still exists and returns its current role.
type ActorResolver interface {
	ResolveActor(ctx context.Context, id string) (actorctx.Actor, error)
}

type AuthMiddleware struct {
	jwt    TokenVerifier
	actors ActorResolver
}

func NewAuthMiddleware(jwt TokenVerifier, actors ActorResolver) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, actors: actors}
}

const ctxActorKey = "auth.actor"

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":      "unauthorized",
			"message":   message,
			"requestId": c.GetString(CtxRequestID),
		},
	})
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "Missing or invalid Authorization header")
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			abortUnauthorized(c, "Missing or invalid access token")
			return
		}

		claims, err := m.jwt.VerifyAccessToken(raw)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired access token")
			return
		}

		cctx, cancel := config.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		actor, err := m.actors.ResolveActor(cctx, claims.UserID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				abortUnauthorized(c, "Account no longer exists")
				return
			}
			slog.Default().ErrorContext(c.Request.Context(), "resolve actor failed", "user_id", claims.UserID, "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"code":      "internal_error",
					"message":   "Could not verify identity",
					"requestId": c.GetString(CtxRequestID),
				},
			})
			return
		}

		c.Set(ctxActorKey, actor)
		c.Request = c.Request.WithContext(actorctx.WithActor(c.Request.Context(), actor))

		c.Next()
	}
}

// ActorFromContext returns the authenticated caller, if any.
func ActorFromContext(c *gin.Context) (actorctx.Actor, bool) {
	v, ok := c.Get(ctxActorKey)
	if !ok {
		return actorctx.From(c.Request.Context())
	}
	a, ok := v.(actorctx.Actor)
	return a, ok
}
