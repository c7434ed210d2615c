package project

import (
	"strings"
	"time"

	"github.com/geocoder89/hrhub/internal/apperr"
	"github.com/geocoder89/hrhub/internal/domain/user"
	"github.com/geocoder89/hrhub/internal/utils"
	"github.com/google/uuid"
)

type Status string

const (
	StatusPlanning  Status = "planning"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusOnHold    Status = "onhold"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPlanning, StatusOngoing, StatusCompleted, StatusOnHold:
		return true
	default:
		return false
	}
}

type Project struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	StartDate   time.Time      `json:"startDate"`
	EndDate     *time.Time     `json:"endDate,omitempty"` // nil means ongoing
	Status      Status         `json:"status"`
	Employees   []user.Summary `json:"employees"`
	Budget      *float64       `json:"budget,omitempty"`
	Revenue     float64        `json:"revenue"`
	Client      string         `json:"client,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// MemberIDs lists the roster in stored order.
func (p Project) MemberIDs() []string {
	ids := make([]string, 0, len(p.Employees))
	for _, e := range p.Employees {
		ids = append(ids, e.ID)
	}
	return ids
}

func (p Project) HasMember(userID string) bool {
	for _, e := range p.Employees {
		if e.ID == userID {
			return true
		}
	}
	return false
}

type Stats struct {
	TotalProjects     int     `json:"totalProjects"`
	CompletedProjects int     `json:"completedProjects"`
	OngoingProjects   int     `json:"ongoingProjects"`
	PlanningProjects  int     `json:"planningProjects"`
	OnHoldProjects    int     `json:"onholdProjects"`
	TotalRevenue      float64 `json:"totalRevenue"`
}

var (
	ErrNotFound      = apperr.NotFound("project not found")
	ErrMemberUnknown = apperr.Validation("roster references an unknown employee")
)

type CreateRequest struct {
	Name        string      `json:"name" binding:"required,min=1,max=200"`
	Description string      `json:"description" binding:"omitempty,max=2000"`
	StartDate   *utils.Date `json:"startDate" binding:"required"`
	EndDate     *utils.Date `json:"endDate"`
	Status      Status      `json:"status" binding:"omitempty,oneof=planning ongoing completed onhold"`
	Employees   []string    `json:"employees"`
	Budget      *float64    `json:"budget" binding:"omitempty,gte=0"`
	Revenue     *float64    `json:"revenue" binding:"omitempty,gte=0"`
	Client      string      `json:"client" binding:"omitempty,max=200"`
}

// UpdateRequest is a patch: nil fields keep their stored value, a non-nil
// Employees replaces the roster. EndDate and Budget can be cleared with null.
type UpdateRequest struct {
	Name        *string                    `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string                    `json:"description" binding:"omitempty,max=2000"`
	StartDate   *utils.Date                `json:"startDate"`
	EndDate     utils.Nullable[utils.Date] `json:"endDate"`
	Status      *Status                    `json:"status" binding:"omitempty,oneof=planning ongoing completed onhold"`
	Employees   *[]string                  `json:"employees"`
	Budget      utils.Nullable[float64]    `json:"budget"`
	Revenue     *float64                   `json:"revenue" binding:"omitempty,gte=0"`
	Client      *string                    `json:"client" binding:"omitempty,max=200"`
}

// Spec is the validated shape the roster service persists.
type Spec struct {
	Name        string
	Description string
	StartDate   time.Time
	EndDate     *time.Time
	Status      Status
	Members     []string
	Budget      *float64
	Revenue     float64
	Client      string
}

func (req CreateRequest) Spec() Spec {
	s := Spec{
		Name:        req.Name,
		Description: req.Description,
		EndDate:     req.EndDate.TimePtr(),
		Status:      req.Status,
		Members:     req.Employees,
		Budget:      req.Budget,
		Client:      req.Client,
	}
	if req.StartDate != nil {
		s.StartDate = req.StartDate.Time
	}
	if req.Revenue != nil {
		s.Revenue = *req.Revenue
	}
	return s
}

func (s Spec) Validate() error {
	fields := map[string]string{}

	if strings.TrimSpace(s.Name) == "" {
		fields["name"] = "is required"
	}
	if s.StartDate.IsZero() {
		fields["startDate"] = "is required"
	}
	if s.EndDate != nil && !s.StartDate.IsZero() && s.EndDate.Before(s.StartDate) {
		fields["endDate"] = "must not be before startDate"
	}
	if s.Status != "" && !s.Status.IsValid() {
		fields["status"] = "must be one of planning, ongoing, completed, onhold"
	}
	if s.Budget != nil && *s.Budget < 0 {
		fields["budget"] = "must not be negative"
	}
	if s.Revenue < 0 {
		fields["revenue"] = "must not be negative"
	}
	for _, id := range s.Members {
		if strings.TrimSpace(id) == "" {
			fields["employees"] = "must not contain blank ids"
			break
		}
	}

	if len(fields) > 0 {
		return apperr.ValidationWithDetails("invalid project", fields)
	}
	return nil
}

// New builds a project from a validated spec; the roster is deduplicated.
func New(s Spec) (Project, error) {
	if err := s.Validate(); err != nil {
		return Project{}, err
	}

	status := s.Status
	if status == "" {
		status = StatusPlanning
	}

	now := time.Now().UTC()
	p := Project{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(s.Name),
		Description: s.Description,
		StartDate:   s.StartDate,
		EndDate:     s.EndDate,
		Status:      status,
		Budget:      s.Budget,
		Revenue:     s.Revenue,
		Client:      s.Client,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for _, id := range DedupeMembers(s.Members) {
		p.Employees = append(p.Employees, user.Summary{ID: id})
	}
	if p.Employees == nil {
		p.Employees = []user.Summary{}
	}

	return p, nil
}

// Apply merges a patch into p. The returned roster is nil when the patch leaves it alone.
func Apply(p Project, req UpdateRequest) (Project, []string, error) {
	s := Spec{
		Name:        p.Name,
		Description: p.Description,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Status:      p.Status,
		Budget:      p.Budget,
		Revenue:     p.Revenue,
		Client:      p.Client,
	}

	if req.Name != nil {
		s.Name = *req.Name
	}
	if req.Description != nil {
		s.Description = *req.Description
	}
	if req.StartDate != nil {
		s.StartDate = req.StartDate.Time
	}
	if req.EndDate.Set {
		s.EndDate = req.EndDate.Value.TimePtr()
	}
	if req.Status != nil {
		s.Status = *req.Status
	}
	if req.Budget.Set {
		s.Budget = req.Budget.Value
	}
	if req.Revenue != nil {
		s.Revenue = *req.Revenue
	}
	if req.Client != nil {
		s.Client = *req.Client
	}
	if req.Employees != nil {
		s.Members = *req.Employees
	}

	if err := s.Validate(); err != nil {
		return Project{}, nil, err
	}

	p.Name = strings.TrimSpace(s.Name)
	p.Description = s.Description
	p.StartDate = s.StartDate
	p.EndDate = s.EndDate
	p.Status = s.Status
	p.Budget = s.Budget
	p.Revenue = s.Revenue
	p.Client = s.Client
	p.UpdatedAt = time.Now().UTC()

	var roster []string
	if req.Employees != nil {
		roster = DedupeMembers(*req.Employees)
		if roster == nil {
			roster = []string{}
		}
	}

	return p, roster, nil
}

// DedupeMembers keeps the first occurrence of each id.
func DedupeMembers(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	var out []string

	for _, id := range ids {
		id = strings.TrimSpace(id)
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
