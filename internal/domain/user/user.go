package user

import (
	"strings"
	"time"

	"github.com/geocoder89/hrhub/internal/apperr"
	"github.com/google/uuid"
)

type Role string

const (
	RoleEmployee Role = "employee"
	RoleHR       Role = "hr"
	RoleAdmin    Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleEmployee, RoleHR, RoleAdmin:
		return true
	default:
		return false
	}
}

// Privileged reports whether the role carries the admin/hr capability.
func (r Role) Privileged() bool {
	return r == RoleHR || r == RoleAdmin
}

type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"` // never expose hash in JSON
	Role           Role      `json:"role"`
	DepartmentID   *string   `json:"department,omitempty"`
	DepartmentName string    `json:"departmentName,omitempty"`
	Position       string    `json:"position,omitempty"`
	MobileNumber   string    `json:"mobileNumber,omitempty"`
	JoinDate       time.Time `json:"joinDate"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Summary is the slice of a user embedded in roster and leave projections.
type Summary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Position string `json:"position,omitempty"`
}

func (u User) Summary() Summary {
	return Summary{ID: u.ID, Name: u.Name, Email: u.Email, Position: u.Position}
}

var (
	ErrNotFound   = apperr.NotFound("user not found")
	ErrEmailTaken = apperr.Conflict("email is already in use")

	// ErrUnknownDepartment rejects a department reference that does not resolve.
	ErrUnknownDepartment = apperr.Validation("department does not exist")
)

type RegisterRequest struct {
	Name         string  `json:"name" binding:"required,min=2,max=120"`
	Email        string  `json:"email" binding:"required,email"`
	Password     string  `json:"password" binding:"required,min=6"`
	DepartmentID *string `json:"department" binding:"omitempty,max=64"`
	Position     string  `json:"position" binding:"omitempty,max=120"`
	MobileNumber string  `json:"mobileNumber" binding:"omitempty,max=32"`
}

type CreateUserRequest struct {
	Name         string  `json:"name" binding:"required,min=2,max=120"`
	Email        string  `json:"email" binding:"required,email"`
	Password     string  `json:"password" binding:"required,min=6"`
	Role         Role    `json:"role" binding:"omitempty,oneof=employee hr admin"`
	DepartmentID *string `json:"department" binding:"omitempty,max=64"`
	Position     string  `json:"position" binding:"omitempty,max=120"`
	MobileNumber string  `json:"mobileNumber" binding:"omitempty,max=32"`
}

// UpdateUserRequest is a patch: nil fields keep their stored value.
type UpdateUserRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=2,max=120"`
	Email        *string `json:"email" binding:"omitempty,email"`
	Role         *Role   `json:"role" binding:"omitempty,oneof=employee hr admin"`
	DepartmentID *string `json:"department" binding:"omitempty,max=64"`
	Position     *string `json:"position" binding:"omitempty,max=120"`
	MobileNumber *string `json:"mobileNumber" binding:"omitempty,max=32"`
}

func (req CreateUserRequest) Validate() error {
	if strings.TrimSpace(req.Name) == "" {
		return apperr.Validation("name is required")
	}
	if strings.TrimSpace(req.Email) == "" {
		return apperr.Validation("email is required")
	}
	if req.Role != "" && !req.Role.IsValid() {
		return apperr.Validation("role must be one of employee, hr, admin")
	}
	return nil
}

func (req UpdateUserRequest) Validate() error {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return apperr.Validation("name cannot be blank")
	}
	if req.Email != nil && strings.TrimSpace(*req.Email) == "" {
		return apperr.Validation("email cannot be blank")
	}
	if req.Role != nil && !req.Role.IsValid() {
		return apperr.Validation("role must be one of employee, hr, admin")
	}
	return nil
}

// NewFromCreateRequest builds a user; the password must already be hashed.
func NewFromCreateRequest(req CreateUserRequest, passwordHash string) User {
	now := time.Now().UTC()
	role := req.Role
	if role == "" {
		role = RoleEmployee
	}

	return User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        NormalizeEmail(req.Email),
		PasswordHash: passwordHash,
		Role:         role,
		DepartmentID: req.DepartmentID,
		Position:     req.Position,
		MobileNumber: req.MobileNumber,
		JoinDate:     now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
