package actorctx

import (
	"context"

	"github.com/geocoder89/hrhub/internal/domain/user"
)

// Actor is the authenticated caller resolved by the auth gate.
type Actor struct {
	ID   string
	Role user.Role
}

type ctxKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

func From(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(Actor)

	return a, ok && a.ID != ""
}
