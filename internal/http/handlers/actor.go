package handlers

import (
	"time"

	"github.com/geocoder89/hrhub/internal/actorctx"
	"github.com/geocoder89/hrhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// storeTimeout bounds the store work of a single request.
const storeTimeout = 3 * time.Second

// actorFrom writes a 401 and reports false when the auth gate did not run.
func actorFrom(ctx *gin.Context) (actorctx.Actor, bool) {
	a, ok := middlewares.ActorFromContext(ctx)
	if !ok || a.ID == "" {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return actorctx.Actor{}, false
	}
	return a, true
}
