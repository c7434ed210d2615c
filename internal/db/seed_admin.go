package db

import (
	"context"
	"errors"

	"github.com/geocoder89/hrhub/internal/config"
	"github.com/geocoder89/hrhub/internal/domain/user"
	"github.com/geocoder89/hrhub/internal/security"
)

// AdminStore is the slice of the user store the seeder needs.
type AdminStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
}

// EnsureAdminUser creates the bootstrap admin from ADMIN_EMAIL/ADMIN_PASSWORD when
// no account with that email exists. It reports whether a user was created.
func EnsureAdminUser(ctx context.Context, store AdminStore, cfg config.Config) (bool, error) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return false, nil
	}

	_, err := store.GetByEmail(ctx, user.NormalizeEmail(cfg.AdminEmail))

	if err == nil {
		return false, nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return false, err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return false, err
	}

	u := user.NewFromCreateRequest(user.CreateUserRequest{
		Name:     cfg.AdminName,
		Email:    cfg.AdminEmail,
		Role:     user.RoleAdmin,
		Position: "Administrator",
	}, hash)

	if _, err := store.Create(ctx, u); err != nil && !errors.Is(err, user.ErrEmailTaken) {
		return false, err
	}

	return true, nil
}
