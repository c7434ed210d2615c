package access

import (
	"errors"
	"testing"

	"github.com/geocoder89/hrhub/internal/actorctx"
	"github.com/geocoder89/hrhub/internal/apperr"
	"github.com/geocoder89/hrhub/internal/domain/user"
)

func TestRequireStaff(t *testing.T) {
	tests := []struct {
		name    string
		actor   actorctx.Actor
		allowed bool
	}{
		{name: "admin", actor: actorctx.Actor{ID: "1", Role: user.RoleAdmin}, allowed: true},
		{name: "hr", actor: actorctx.Actor{ID: "2", Role: user.RoleHR}, allowed: true},
		{name: "employee", actor: actorctx.Actor{ID: "3", Role: user.RoleEmployee}},
		{name: "anonymous", actor: actorctx.Actor{Role: user.RoleAdmin}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireStaff(tt.actor)
			if tt.allowed && err != nil {
				t.Fatalf("expected access, got %v", err)
			}
			if !tt.allowed && !errors.Is(err, apperr.ErrForbidden) {
				t.Fatalf("expected forbidden, got %v", err)
			}
		})
	}
}

func TestRequireSpecificRole(t *testing.T) {
	a := actorctx.Actor{ID: "1", Role: user.RoleHR}

	if err := Require(a, user.RoleAdmin); err == nil {
		t.Fatalf("hr must not pass an admin-only check")
	}
	if err := Require(a, user.RoleEmployee, user.RoleHR); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
