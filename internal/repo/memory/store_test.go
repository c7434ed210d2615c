package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/geocoder89/hrhub/internal/domain/leave"
	"github.com/geocoder89/hrhub/internal/domain/project"
	"github.com/geocoder89/hrhub/internal/domain/user"
	"github.com/geocoder89/hrhub/internal/service"
)

func seedUser(t *testing.T, s *Store, email string) user.User {
	t.Helper()
	u := user.NewFromCreateRequest(user.CreateUserRequest{Name: "Test User", Email: email}, "hash")
	created, err := s.Users().Create(context.Background(), u)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return created
}

func seedProject(t *testing.T, s *Store, name string, members ...string) project.Project {
	t.Helper()
	p, err := project.New(project.Spec{Name: name, StartDate: time.Now().UTC(), Members: members})
	if err != nil {
		t.Fatalf("new project: %v", err)
	}
	created, err := s.Projects().Create(context.Background(), p)
	if err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return created
}

func TestUsersRepo_EmailUniqueCaseInsensitive(t *testing.T) {
	s := NewStore()
	seedUser(t, s, "ann@example.com")

	dup := user.NewFromCreateRequest(user.CreateUserRequest{Name: "Ann Two", Email: "ANN@example.com"}, "hash")
	if _, err := s.Users().Create(context.Background(), dup); !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUsersRepo_UnknownDepartment(t *testing.T) {
	s := NewStore()
	dep := "missing"
	u := user.NewFromCreateRequest(user.CreateUserRequest{Name: "Bob", Email: "bob@example.com", DepartmentID: &dep}, "hash")

	if _, err := s.Users().Create(context.Background(), u); !errors.Is(err, user.ErrUnknownDepartment) {
		t.Fatalf("expected ErrUnknownDepartment, got %v", err)
	}
}

func TestLeavesRepo_DeletePendingOwned(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	owner := seedUser(t, s, "owner@example.com")
	other := seedUser(t, s, "other@example.com")

	l, err := leave.New(owner.ID, leave.Input{
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		Reason:    "rest",
		LeaveType: leave.TypeVacation,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Leaves().Create(ctx, l); err != nil {
		t.Fatal(err)
	}

	if err := s.Leaves().DeletePendingOwned(ctx, l.ID, other.ID); !errors.Is(err, leave.ErrNotCancellable) {
		t.Fatalf("foreign cancel: expected ErrNotCancellable, got %v", err)
	}
	if err := s.Leaves().DeletePendingOwned(ctx, l.ID, owner.ID); err != nil {
		t.Fatalf("owner cancel: %v", err)
	}
	if _, err := s.Leaves().GetByID(ctx, l.ID); !errors.Is(err, leave.ErrNotFound) {
		t.Fatalf("expected leave gone, got %v", err)
	}
}

func TestLeavesRepo_UpdateStatusStrict(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	owner := seedUser(t, s, "owner@example.com")

	l, _ := leave.New(owner.ID, leave.Input{
		StartDate: time.Now(), EndDate: time.Now(), Reason: "x", LeaveType: leave.TypeSick,
	})
	if _, err := s.Leaves().Create(ctx, l); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Leaves().UpdateStatus(ctx, l.ID, leave.StatusApproved, true); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := s.Leaves().UpdateStatus(ctx, l.ID, leave.StatusApproved, true); err != nil {
		t.Fatalf("re-approve should be a no-op, got %v", err)
	}
	if _, err := s.Leaves().UpdateStatus(ctx, l.ID, leave.StatusRejected, true); !errors.Is(err, leave.ErrAlreadyDecided) {
		t.Fatalf("expected ErrAlreadyDecided, got %v", err)
	}
	got, err := s.Leaves().UpdateStatus(ctx, l.ID, leave.StatusRejected, false)
	if err != nil || got.Status != leave.StatusRejected {
		t.Fatalf("lenient overwrite: got %v, %v", got.Status, err)
	}
}

func TestProjectsRepo_AddMemberIsSetLike(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	u := seedUser(t, s, "dev@example.com")
	p := seedProject(t, s, "Apollo")

	for i := 0; i < 3; i++ {
		if _, err := s.Projects().AddMember(ctx, p.ID, u.ID); err != nil {
			t.Fatalf("add member: %v", err)
		}
	}

	got, _ := s.Projects().GetByID(ctx, p.ID)
	if len(got.Employees) != 1 || got.Employees[0].ID != u.ID {
		t.Fatalf("expected exactly one member, got %+v", got.Employees)
	}
}

func TestProjectsRepo_CreateRejectsUnknownMember(t *testing.T) {
	s := NewStore()
	p, _ := project.New(project.Spec{Name: "Ghost", StartDate: time.Now(), Members: []string{"nobody"}})

	if _, err := s.Projects().Create(context.Background(), p); !errors.Is(err, project.ErrMemberUnknown) {
		t.Fatalf("expected ErrMemberUnknown, got %v", err)
	}
}

func TestProjectsRepo_ListByMemberOrdering(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	u := seedUser(t, s, "dev@example.com")

	day := func(d int) *time.Time {
		v := time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
		return &v
	}
	mk := func(name string, status project.Status, end *time.Time) {
		p, err := project.New(project.Spec{
			Name: name, StartDate: *day(1), EndDate: end, Status: status, Members: []string{u.ID},
		})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := s.Projects().Create(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	mk("ongoing-late", project.StatusOngoing, day(20))
	mk("completed", project.StatusCompleted, day(5))
	mk("ongoing-open", project.StatusOngoing, nil)
	mk("ongoing-early", project.StatusOngoing, day(10))

	got, err := s.Projects().ListByMember(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"completed", "ongoing-open", "ongoing-early", "ongoing-late"}
	if len(got) != len(want) {
		t.Fatalf("expected %d projects, got %d", len(want), len(got))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("position %d: expected %q, got %q", i, name, got[i].Name)
		}
	}
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	u := seedUser(t, s, "victim@example.com")
	p := seedProject(t, s, "Solo", u.ID)

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context, tx service.CascadeTx) error {
		if _, err := tx.RemoveMember(ctx, p.ID, u.ID); err != nil {
			return err
		}
		if err := tx.DeleteProject(ctx, p.ID); err != nil {
			return err
		}
		if err := tx.DeleteUser(ctx, u.ID); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if _, err := s.Users().GetByID(ctx, u.ID); err != nil {
		t.Fatalf("user should survive rollback: %v", err)
	}
	got, err := s.Projects().GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("project should survive rollback: %v", err)
	}
	if len(got.Employees) != 1 {
		t.Fatalf("roster should be restored, got %+v", got.Employees)
	}
}

func TestWithinTx_RollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	u := seedUser(t, s, "victim@example.com")
	p := seedProject(t, s, "Solo", u.ID)

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Fatal("expected the panic to propagate")
			}
		}()
		_ = s.WithinTx(ctx, func(ctx context.Context, tx service.CascadeTx) error {
			if err := tx.DeleteProject(ctx, p.ID); err != nil {
				return err
			}
			if err := tx.DeleteUser(ctx, u.ID); err != nil {
				return err
			}
			panic("cascade blew up")
		})
	}()

	if _, err := s.Users().GetByID(ctx, u.ID); err != nil {
		t.Fatalf("user should survive the panic: %v", err)
	}
	if _, err := s.Projects().GetByID(ctx, p.ID); err != nil {
		t.Fatalf("project should survive the panic: %v", err)
	}

	// the write lock must have been released
	seedUser(t, s, "after@example.com")
}
