package service

import (
	"context"

	"github.com/geocoder89/hrhub/internal/access"
	"github.com/geocoder89/hrhub/internal/actorctx"
	"github.com/geocoder89/hrhub/internal/domain/project"
)

type ProjectService struct {
	projects ProjectStore
	users    UserStore
	stats    *StatsCache
}

func NewProjectService(projects ProjectStore, users UserStore, stats *StatsCache) *ProjectService {
	return &ProjectService{projects: projects, users: users, stats: stats}
}

func (s *ProjectService) Create(ctx context.Context, actor actorctx.Actor, spec project.Spec) (project.Project, error) {
	if err := access.RequireStaff(actor); err != nil {
		return project.Project{}, err
	}

	p, err := project.New(spec)
	if err != nil {
		return project.Project{}, err
	}

	created, err := s.projects.Create(ctx, p)
	if err != nil {
		return project.Project{}, err
	}

	s.stats.Invalidate(ctx)
	return created, nil
}

func (s *ProjectService) Get(ctx context.Context, id string) (project.Project, error) {
	return s.projects.GetByID(ctx, id)
}

func (s *ProjectService) List(ctx context.Context) ([]project.Project, error) {
	return s.projects.List(ctx)
}

func (s *ProjectService) ListMine(ctx context.Context, actor actorctx.Actor) ([]project.Project, error) {
	if actor.ID == "" {
		return nil, access.ErrForbidden
	}
	return s.projects.ListByMember(ctx, actor.ID)
}

func (s *ProjectService) ByEmployee(ctx context.Context, actor actorctx.Actor, userID string) ([]project.Project, error) {
	if err := access.RequireStaff(actor); err != nil {
		return nil, err
	}
	return s.projects.ListByMember(ctx, userID)
}

func (s *ProjectService) Update(ctx context.Context, actor actorctx.Actor, id string, req project.UpdateRequest) (project.Project, error) {
	if err := access.RequireStaff(actor); err != nil {
		return project.Project{}, err
	}

	current, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return project.Project{}, err
	}

	next, roster, err := project.Apply(current, req)
	if err != nil {
		return project.Project{}, err
	}

	updated, err := s.projects.Update(ctx, next, roster)
	if err != nil {
		return project.Project{}, err
	}

	s.stats.Invalidate(ctx)
	return updated, nil
}

// Assign is idempotent: assigning a current member returns the project unchanged.
func (s *ProjectService) Assign(ctx context.Context, actor actorctx.Actor, projectID, userID string) (project.Project, error) {
	if err := access.RequireStaff(actor); err != nil {
		return project.Project{}, err
	}

	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return project.Project{}, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return project.Project{}, err
	}

	return s.projects.AddMember(ctx, projectID, userID)
}

// Remove drops userID from the roster. An absent member is a no-op and the
// project survives an empty roster.
func (s *ProjectService) Remove(ctx context.Context, actor actorctx.Actor, projectID, userID string) (project.Project, error) {
	if err := access.RequireStaff(actor); err != nil {
		return project.Project{}, err
	}
	return s.projects.RemoveMember(ctx, projectID, userID)
}

func (s *ProjectService) Delete(ctx context.Context, actor actorctx.Actor, id string) error {
	if err := access.RequireStaff(actor); err != nil {
		return err
	}

	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}

	s.stats.Invalidate(ctx)
	return nil
}

func (s *ProjectService) Stats(ctx context.Context, actor actorctx.Actor) (project.Stats, error) {
	if err := access.RequireStaff(actor); err != nil {
		return project.Stats{}, err
	}

	var out project.Stats
	err := s.stats.load(ctx, keyProjectStats, &out, func(ctx context.Context) error {
		st, err := s.projects.Stats(ctx)
		if err != nil {
			return err
		}
		out = st
		return nil
	})
	if err != nil {
		return project.Stats{}, err
	}
	return out, nil
}
