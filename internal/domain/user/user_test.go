package user

import (
	"errors"
	"testing"

	"github.com/geocoder89/hrhub/internal/apperr"
)

func TestNewFromCreateRequest_Defaults(t *testing.T) {
	u := NewFromCreateRequest(CreateUserRequest{Name: "  Ada  ", Email: " Ada@Example.COM "}, "hash")

	if u.Role != RoleEmployee {
		t.Fatalf("role = %q, want employee", u.Role)
	}
	if u.Email != "ada@example.com" || u.Name != "Ada" {
		t.Fatalf("got name=%q email=%q", u.Name, u.Email)
	}
	if u.ID == "" || u.JoinDate.IsZero() {
		t.Fatalf("id and join date must be set")
	}
}

func TestUpdateUserRequest_Validate(t *testing.T) {
	blank := "   "
	bad := Role("owner")

	tests := []struct {
		name    string
		req     UpdateUserRequest
		wantErr bool
	}{
		{name: "empty_patch", req: UpdateUserRequest{}},
		{name: "blank_name", req: UpdateUserRequest{Name: &blank}, wantErr: true},
		{name: "blank_email", req: UpdateUserRequest{Email: &blank}, wantErr: true},
		{name: "unknown_role", req: UpdateUserRequest{Role: &bad}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("want a validation error, got %v", err)
			}
		})
	}
}

func TestRolePrivileged(t *testing.T) {
	if RoleEmployee.Privileged() || !RoleHR.Privileged() || !RoleAdmin.Privileged() {
		t.Fatal("only hr and admin are privileged")
	}
}
