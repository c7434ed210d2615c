package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/geocoder89/hrhub/internal/access"
	"github.com/geocoder89/hrhub/internal/actorctx"
	"github.com/geocoder89/hrhub/internal/apperr"
	"github.com/geocoder89/hrhub/internal/domain/leave"
	"github.com/geocoder89/hrhub/internal/domain/user"
	"github.com/geocoder89/hrhub/internal/observability"
	"github.com/geocoder89/hrhub/internal/security"
	"golang.org/x/sync/errgroup"
)

// newJoinWindow bounds the "new joins" dashboard counter.
const newJoinWindow = 30 * 24 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrSelfDelete    = apperr.Forbidden("you cannot delete your own account")
	ErrProtectedUser = apperr.Forbidden("admin and hr accounts cannot be deleted")
)

type TokenIssuer interface {
	GenerateAccessToken(userID, email, role string) (string, time.Time, error)
}

type AuthResult struct {
	User      user.User `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Profile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         user.Role `json:"role"`
	Department   string    `json:"department"`
	Position     string    `json:"position"`
	MobileNumber string    `json:"mobileNumber"`
	JoinDate     time.Time `json:"joinDate"`
}

type DashboardStats struct {
	TotalEmployees int            `json:"totalEmployees"`
	PendingLeaves  int            `json:"pendingLeaves"`
	Departments    int            `json:"departments"`
	NewJoins       int            `json:"newJoins"`
	TotalProjects  int            `json:"totalProjects"`
	ProjectStats   map[string]int `json:"projectStats"`
}

// DeleteResult reports what the cascade removed.
type DeleteResult struct {
	LeavesDeleted   int `json:"leavesDeleted"`
	ProjectsUpdated int `json:"projectsUpdated"`
	ProjectsDeleted int `json:"projectsDeleted"`
}

type UserService struct {
	users       UserStore
	leaves      LeaveStore
	projects    ProjectStore
	departments DepartmentStore
	uow         UnitOfWork
	tokens      TokenIssuer
	stats       *StatsCache
	prom        *observability.Prom
	log         *slog.Logger
}

type UserServiceDeps struct {
	Users       UserStore
	Leaves      LeaveStore
	Projects    ProjectStore
	Departments DepartmentStore
	UoW         UnitOfWork
	Tokens      TokenIssuer
	Stats       *StatsCache
	Prom        *observability.Prom
	Log         *slog.Logger
}

func NewUserService(d UserServiceDeps) *UserService {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	return &UserService{
		users:       d.Users,
		leaves:      d.Leaves,
		projects:    d.Projects,
		departments: d.Departments,
		uow:         d.UoW,
		tokens:      d.Tokens,
		stats:       d.Stats,
		prom:        d.Prom,
		log:         log,
	}
}

// Register creates a self-service account. The role is always employee.
func (s *UserService) Register(ctx context.Context, req user.RegisterRequest) (AuthResult, error) {
	u, err := s.create(ctx, user.CreateUserRequest{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Role:         user.RoleEmployee,
		DepartmentID: req.DepartmentID,
		Position:     req.Position,
		MobileNumber: req.MobileNumber,
	})
	if err != nil {
		return AuthResult{}, err
	}
	return s.issue(u)
}

func (s *UserService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	u, err := s.users.GetByEmail(ctx, user.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	if err := security.CheckPassword(u.PasswordHash, password); err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, apperr.Internal("check password", err)
	}

	return s.issue(u)
}

func (s *UserService) Create(ctx context.Context, actor actorctx.Actor, req user.CreateUserRequest) (user.User, error) {
	if err := access.RequireStaff(actor); err != nil {
		return user.User{}, err
	}
	return s.create(ctx, req)
}

func (s *UserService) Update(ctx context.Context, actor actorctx.Actor, id string, req user.UpdateUserRequest) (user.User, error) {
	if err := access.RequireStaff(actor); err != nil {
		return user.User{}, err
	}
	if err := req.Validate(); err != nil {
		return user.User{}, err
	}
	if req.Email != nil {
		e := user.NormalizeEmail(*req.Email)
		req.Email = &e
	}

	u, err := s.users.Update(ctx, id, req)
	if err != nil {
		return user.User{}, err
	}

	s.stats.Invalidate(ctx)
	return u, nil
}

func (s *UserService) List(ctx context.Context, actor actorctx.Actor) ([]user.User, error) {
	if err := access.RequireStaff(actor); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

func (s *UserService) Get(ctx context.Context, actor actorctx.Actor, id string) (user.User, error) {
	if err := access.RequireStaff(actor); err != nil {
		return user.User{}, err
	}
	return s.users.GetByID(ctx, id)
}

func (s *UserService) Profile(ctx context.Context, actor actorctx.Actor) (Profile, error) {
	if actor.ID == "" {
		return Profile{}, access.ErrForbidden
	}

	u, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return Profile{}, err
	}

	p := Profile{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		Department:   orDefault(u.DepartmentName, "Not assigned"),
		Position:     orDefault(u.Position, "Not specified"),
		MobileNumber: orDefault(u.MobileNumber, "Not provided"),
		JoinDate:     u.JoinDate,
	}
	return p, nil
}

// DashboardStats gathers the staff dashboard counters concurrently.
func (s *UserService) DashboardStats(ctx context.Context, actor actorctx.Actor) (DashboardStats, error) {
	if err := access.RequireStaff(actor); err != nil {
		return DashboardStats{}, err
	}

	var out DashboardStats
	err := s.stats.load(ctx, keyDashboardStats, &out, func(ctx context.Context) error {
		var (
			st       DashboardStats
			byStatus map[string]int
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			n, err := s.users.Count(gctx)
			st.TotalEmployees = n
			return err
		})
		g.Go(func() error {
			n, err := s.leaves.CountByStatus(gctx, leave.StatusPending)
			st.PendingLeaves = n
			return err
		})
		g.Go(func() error {
			n, err := s.departments.Count(gctx)
			st.Departments = n
			return err
		})
		g.Go(func() error {
			n, err := s.users.CountJoinedSince(gctx, time.Now().UTC().Add(-newJoinWindow))
			st.NewJoins = n
			return err
		})
		g.Go(func() error {
			counts, err := s.projects.CountByStatus(gctx)
			if err != nil {
				return err
			}
			byStatus = make(map[string]int, len(counts))
			for status, n := range counts {
				byStatus[string(status)] = n
				st.TotalProjects += n
			}
			return nil
		})

		if err := g.Wait(); err != nil {
			return err
		}

		st.ProjectStats = byStatus
		out = st
		return nil
	})
	if err != nil {
		return DashboardStats{}, err
	}
	return out, nil
}

// Delete removes a user together with everything they own. The guards run
// inside the transaction so a rejected delete leaves no trace.
func (s *UserService) Delete(ctx context.Context, actor actorctx.Actor, targetID string) (DeleteResult, error) {
	if err := access.RequireStaff(actor); err != nil {
		return DeleteResult{}, err
	}
	if actor.ID == targetID {
		return DeleteResult{}, ErrSelfDelete
	}

	var res DeleteResult
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx CascadeTx) error {
		res = DeleteResult{}

		target, err := tx.LockUser(ctx, targetID)
		if err != nil {
			return err
		}
		if target.Role.Privileged() {
			return ErrProtectedUser
		}

		n, err := tx.DeleteLeavesByOwner(ctx, targetID)
		if err != nil {
			return fmt.Errorf("delete leaves: %w", err)
		}
		res.LeavesDeleted = n

		projectIDs, err := tx.ProjectIDsByMember(ctx, targetID)
		if err != nil {
			return fmt.Errorf("list rosters: %w", err)
		}
		for _, pid := range projectIDs {
			remaining, err := tx.RemoveMember(ctx, pid, targetID)
			if err != nil {
				return fmt.Errorf("remove member from %s: %w", pid, err)
			}
			if remaining > 0 {
				res.ProjectsUpdated++
				continue
			}
			if err := tx.DeleteProject(ctx, pid); err != nil {
				return fmt.Errorf("delete emptied project %s: %w", pid, err)
			}
			res.ProjectsDeleted++
		}

		return tx.DeleteUser(ctx, targetID)
	})
	if err != nil {
		if apperr.Kind(err) == apperr.ErrInternal {
			s.log.ErrorContext(ctx, "user delete rolled back", "target_id", targetID, "err", err)
		}
		return DeleteResult{}, err
	}

	s.prom.AddCascadeDeletes("leaves", res.LeavesDeleted)
	s.prom.AddCascadeDeletes("projects", res.ProjectsDeleted)
	s.prom.AddCascadeDeletes("users", 1)
	s.stats.Invalidate(ctx)

	s.log.InfoContext(ctx, "user deleted",
		"actor_id", actor.ID,
		"target_id", targetID,
		"leaves_deleted", res.LeavesDeleted,
		"projects_updated", res.ProjectsUpdated,
		"projects_deleted", res.ProjectsDeleted,
	)
	return res, nil
}

// ResolveActor loads the caller's current role so a demoted or deleted user
// loses access without waiting for token expiry.
func (s *UserService) ResolveActor(ctx context.Context, id string) (actorctx.Actor, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return actorctx.Actor{}, err
	}
	return actorctx.Actor{ID: u.ID, Role: u.Role}, nil
}

func (s *UserService) create(ctx context.Context, req user.CreateUserRequest) (user.User, error) {
	if err := req.Validate(); err != nil {
		return user.User{}, err
	}
	if len(req.Password) < 6 {
		return user.User{}, apperr.Validation("password must be at least 6 characters")
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return user.User{}, apperr.Internal("hash password", err)
	}

	created, err := s.users.Create(ctx, user.NewFromCreateRequest(req, hash))
	if err != nil {
		return user.User{}, err
	}

	s.stats.Invalidate(ctx)
	return created, nil
}

func (s *UserService) issue(u user.User) (AuthResult, error) {
	token, exp, err := s.tokens.GenerateAccessToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		return AuthResult{}, apperr.Internal("issue token", err)
	}
	return AuthResult{User: u, Token: token, ExpiresAt: exp}, nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
