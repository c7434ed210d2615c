package department

import (
	"strings"
	"time"

	"github.com/geocoder89/hrhub/internal/apperr"
	"github.com/google/uuid"
)

type Department struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ManagerID   *string   `json:"manager,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

var (
	ErrNotFound  = apperr.NotFound("department not found")
	ErrNameTaken = apperr.Conflict("department name is already in use")
)

type CreateRequest struct {
	Name        string  `json:"name" binding:"required,min=2,max=120"`
	ManagerID   *string `json:"manager" binding:"omitempty,max=64"`
	Description string  `json:"description" binding:"omitempty,max=1000"`
}

func NewFromCreateRequest(req CreateRequest) (Department, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Department{}, apperr.Validation("name is required")
	}

	return Department{
		ID:          uuid.NewString(),
		Name:        name,
		ManagerID:   req.ManagerID,
		Description: req.Description,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
