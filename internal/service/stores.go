package service

import (
	"context"
	"time"

	"github.com/geocoder89/hrhub/internal/domain/department"
	"github.com/geocoder89/hrhub/internal/domain/leave"
	"github.com/geocoder89/hrhub/internal/domain/project"
	"github.com/geocoder89/hrhub/internal/domain/user"
)

type UserStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	Update(ctx context.Context, id string, req user.UpdateUserRequest) (user.User, error)
	Count(ctx context.Context) (int, error)
	CountJoinedSince(ctx context.Context, since time.Time) (int, error)
}

type LeaveStore interface {
	Create(ctx context.Context, l leave.Leave) (leave.Leave, error)
	GetByID(ctx context.Context, id string) (leave.Leave, error)
	// UpdateStatus overwrites the status; with onlyFromPending a decided request
	// yields leave.ErrAlreadyDecided.
	UpdateStatus(ctx context.Context, id string, status leave.Status, onlyFromPending bool) (leave.Leave, error)
	// DeletePendingOwned removes the request only if it is pending and owned by ownerID.
	DeletePendingOwned(ctx context.Context, id, ownerID string) error
	ListByOwner(ctx context.Context, ownerID string) ([]leave.Leave, error)
	ListWithEmployee(ctx context.Context, status *leave.Status) ([]leave.WithEmployee, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]leave.WithEmployee, error)
	CountByOwner(ctx context.Context, ownerID string, status *leave.Status) (int, error)
	CountByStatus(ctx context.Context, status leave.Status) (int, error)
}

type ProjectStore interface {
	Create(ctx context.Context, p project.Project) (project.Project, error)
	GetByID(ctx context.Context, id string) (project.Project, error)
	List(ctx context.Context) ([]project.Project, error)
	ListByMember(ctx context.Context, userID string) ([]project.Project, error)
	// Update replaces the scalar fields; a non-nil roster replaces the members.
	Update(ctx context.Context, p project.Project, roster []string) (project.Project, error)
	// AddMember is an atomic add-to-set.
	AddMember(ctx context.Context, projectID, userID string) (project.Project, error)
	RemoveMember(ctx context.Context, projectID, userID string) (project.Project, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (project.Stats, error)
	CountByStatus(ctx context.Context) (map[project.Status]int, error)
}

type DepartmentStore interface {
	Create(ctx context.Context, d department.Department) (department.Department, error)
	List(ctx context.Context) ([]department.Department, error)
	Count(ctx context.Context) (int, error)
}

// CascadeTx is the set of writes the user deletion cascade performs inside one transaction.
type CascadeTx interface {
	LockUser(ctx context.Context, id string) (user.User, error)
	DeleteLeavesByOwner(ctx context.Context, ownerID string) (int, error)
	ProjectIDsByMember(ctx context.Context, userID string) ([]string, error)
	// RemoveMember returns the roster size left behind.
	RemoveMember(ctx context.Context, projectID, userID string) (int, error)
	DeleteProject(ctx context.Context, id string) error
	DeleteUser(ctx context.Context, id string) error
}

// UnitOfWork runs fn atomically: an error from fn discards every write it made.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx CascadeTx) error) error
}
