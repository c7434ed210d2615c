// Package memory is an in-process implementation of every store. All state lives
// behind one mutex; transactions snapshot the maps and restore them on error.
package memory

import (
	"context"
	"sync"

	"github.com/geocoder89/hrhub/internal/domain/department"
	"github.com/geocoder89/hrhub/internal/domain/leave"
	"github.com/geocoder89/hrhub/internal/domain/project"
	"github.com/geocoder89/hrhub/internal/domain/user"
	"github.com/geocoder89/hrhub/internal/service"
)

type userRec struct {
	u   user.User
	seq uint64
}

type leaveRec struct {
	l   leave.Leave
	seq uint64
}

// projectRec keeps the roster as ordered ids; Employees is expanded on read.
type projectRec struct {
	p       project.Project
	members []string
	seq     uint64
}

type state struct {
	users       map[string]userRec
	leaves      map[string]leaveRec
	projects    map[string]projectRec
	departments map[string]department.Department
}

func (s state) clone() state {
	out := state{
		users:       make(map[string]userRec, len(s.users)),
		leaves:      make(map[string]leaveRec, len(s.leaves)),
		projects:    make(map[string]projectRec, len(s.projects)),
		departments: make(map[string]department.Department, len(s.departments)),
	}
	for k, v := range s.users {
		out.users[k] = v
	}
	for k, v := range s.leaves {
		out.leaves[k] = v
	}
	for k, v := range s.projects {
		v.members = append([]string(nil), v.members...)
		out.projects[k] = v
	}
	for k, v := range s.departments {
		out.departments[k] = v
	}
	return out
}

type Store struct {
	mu  sync.RWMutex
	seq uint64
	st  state
}

func NewStore() *Store {
	return &Store{
		st: state{
			users:       make(map[string]userRec),
			leaves:      make(map[string]leaveRec),
			projects:    make(map[string]projectRec),
			departments: make(map[string]department.Department),
		},
	}
}

func (s *Store) Users() *UsersRepo             { return &UsersRepo{s: s} }
func (s *Store) Leaves() *LeavesRepo           { return &LeavesRepo{s: s} }
func (s *Store) Projects() *ProjectsRepo       { return &ProjectsRepo{s: s} }
func (s *Store) Departments() *DepartmentsRepo { return &DepartmentsRepo{s: s} }

// Ping satisfies the readiness probe.
func (s *Store) Ping(context.Context) error { return nil }

// next must be called with mu held for writing.
func (s *Store) next() uint64 {
	s.seq++
	return s.seq
}

// WithinTx holds the write lock for the whole of fn, so the cascade is isolated
// from every other writer and reader. State is restored when fn fails or panics.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx service.CascadeTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	defer func() {
		if r := recover(); r != nil {
			s.st = snapshot
			panic(r)
		}
	}()

	if err := fn(ctx, &cascadeTx{s: s}); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

var _ service.UnitOfWork = (*Store)(nil)
