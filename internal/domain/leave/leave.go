package leave

import (
	"strings"
	"time"

	"github.com/geocoder89/hrhub/internal/apperr"
	"github.com/geocoder89/hrhub/internal/domain/user"
	"github.com/geocoder89/hrhub/internal/utils"
	"github.com/google/uuid"
)

// AnnualAllowance is the fixed number of approved leave requests per user.
const AnnualAllowance = 20

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

type Type string

const (
	TypeSick     Type = "sick"
	TypeVacation Type = "vacation"
	TypePersonal Type = "personal"
	TypeOther    Type = "other"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeSick, TypeVacation, TypePersonal, TypeOther:
		return true
	default:
		return false
	}
}

type Leave struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeId"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	Reason     string    `json:"reason"`
	LeaveType  Type      `json:"leaveType"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// WithEmployee is a leave joined with its owner's public profile.
type WithEmployee struct {
	Leave
	Employee user.User `json:"employee"`
}

type Stats struct {
	TotalLeaves     int `json:"totalLeaves"`
	PendingLeaves   int `json:"pendingLeaves"`
	ApprovedLeaves  int `json:"approvedLeaves"`
	RemainingLeaves int `json:"remainingLeaves"`
}

var (
	ErrNotFound = apperr.NotFound("leave request not found")
	// ErrNotCancellable covers both a foreign owner and a decided request.
	ErrNotCancellable = apperr.NotFound("leave request not found or cannot be cancelled")
	ErrAlreadyDecided = apperr.Conflict("leave request has already been decided")
)

type CreateRequest struct {
	StartDate *utils.Date `json:"startDate" binding:"required"`
	EndDate   *utils.Date `json:"endDate" binding:"required"`
	Reason    string      `json:"reason" binding:"required,max=1000"`
	LeaveType Type        `json:"leaveType" binding:"required,oneof=sick vacation personal other"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required,oneof=approved rejected"`
}

// Input is the validated shape the workflow accepts.
type Input struct {
	StartDate time.Time
	EndDate   time.Time
	Reason    string
	LeaveType Type
}

func (req CreateRequest) Input() Input {
	var in Input
	if req.StartDate != nil {
		in.StartDate = req.StartDate.Time
	}
	if req.EndDate != nil {
		in.EndDate = req.EndDate.Time
	}
	in.Reason = req.Reason
	in.LeaveType = req.LeaveType
	return in
}

func (in Input) Validate() error {
	fields := map[string]string{}

	if in.StartDate.IsZero() {
		fields["startDate"] = "is required"
	}
	if in.EndDate.IsZero() {
		fields["endDate"] = "is required"
	}
	if !in.StartDate.IsZero() && !in.EndDate.IsZero() && in.EndDate.Before(in.StartDate) {
		fields["endDate"] = "must not be before startDate"
	}
	if strings.TrimSpace(in.Reason) == "" {
		fields["reason"] = "is required"
	}
	if !in.LeaveType.IsValid() {
		fields["leaveType"] = "must be one of sick, vacation, personal, other"
	}

	if len(fields) > 0 {
		return apperr.ValidationWithDetails("invalid leave request", fields)
	}
	return nil
}

// New builds a pending request owned by employeeID.
func New(employeeID string, in Input) (Leave, error) {
	if err := in.Validate(); err != nil {
		return Leave{}, err
	}

	now := time.Now().UTC()
	return Leave{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		Reason:     strings.TrimSpace(in.Reason),
		LeaveType:  in.LeaveType,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Remaining applies the annual allowance to an approved count.
func Remaining(approved int) int {
	return AnnualAllowance - approved
}
