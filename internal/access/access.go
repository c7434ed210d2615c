// Package access holds the single capability check used by the middleware and the services.
package access

import (
	"github.com/geocoder89/hrhub/internal/actorctx"
	"github.com/geocoder89/hrhub/internal/apperr"
	"github.com/geocoder89/hrhub/internal/domain/user"
)

// Staff is the admin/hr capability.
var Staff = []user.Role{user.RoleAdmin, user.RoleHR}

var ErrForbidden = apperr.Forbidden("insufficient role for this operation")

// Require fails unless the actor holds one of roles.
func Require(a actorctx.Actor, roles ...user.Role) error {
	if a.ID == "" {
		return ErrForbidden
	}
	for _, r := range roles {
		if a.Role == r {
			return nil
		}
	}
	return ErrForbidden
}

func RequireStaff(a actorctx.Actor) error {
	return Require(a, Staff...)
}
