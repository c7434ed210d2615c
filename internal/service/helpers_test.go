package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/geocoder89/hrhub/internal/actorctx"
	"github.com/geocoder89/hrhub/internal/auth"
	"github.com/geocoder89/hrhub/internal/cache"
	"github.com/geocoder89/hrhub/internal/domain/user"
	"github.com/geocoder89/hrhub/internal/repo/memory"
	"github.com/geocoder89/hrhub/internal/service"
)

type fixture struct {
	store    *memory.Store
	cache    *cache.Memory
	leaves   *service.LeaveService
	projects *service.ProjectService
	users    *service.UserService
	depts    *service.DepartmentService
	admin    actorctx.Actor
	hr       actorctx.Actor
}

func newFixture(t *testing.T, strict bool) *fixture {
	t.Helper()

	store := memory.NewStore()
	c := cache.NewMemory(time.Minute)
	stats := service.NewStatsCache(c, time.Minute, nil, nil)

	f := &fixture{
		store:    store,
		cache:    c,
		leaves:   service.NewLeaveService(store.Leaves(), stats, nil, strict),
		projects: service.NewProjectService(store.Projects(), store.Users(), stats),
		depts:    service.NewDepartmentService(store.Departments(), stats),
		users: service.NewUserService(service.UserServiceDeps{
			Users:       store.Users(),
			Leaves:      store.Leaves(),
			Projects:    store.Projects(),
			Departments: store.Departments(),
			UoW:         store,
			Tokens:      auth.NewManager("test-secret", time.Hour),
			Stats:       stats,
		}),
	}

	f.admin = f.seed(t, "admin@example.com", user.RoleAdmin)
	f.hr = f.seed(t, "hr@example.com", user.RoleHR)
	return f
}

func (f *fixture) seed(t *testing.T, email string, role user.Role) actorctx.Actor {
	t.Helper()
	u := user.NewFromCreateRequest(user.CreateUserRequest{Name: "User " + email, Email: email, Role: role}, "hash")
	created, err := f.store.Users().Create(context.Background(), u)
	if err != nil {
		t.Fatalf("seed %s: %v", email, err)
	}
	return actorctx.Actor{ID: created.ID, Role: created.Role}
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
