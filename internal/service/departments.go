package service

import (
	"context"

	"github.com/geocoder89/hrhub/internal/access"
	"github.com/geocoder89/hrhub/internal/actorctx"
	"github.com/geocoder89/hrhub/internal/domain/department"
)

type DepartmentService struct {
	departments DepartmentStore
	stats       *StatsCache
}

func NewDepartmentService(departments DepartmentStore, stats *StatsCache) *DepartmentService {
	return &DepartmentService{departments: departments, stats: stats}
}

func (s *DepartmentService) Create(ctx context.Context, actor actorctx.Actor, req department.CreateRequest) (department.Department, error) {
	if err := access.RequireStaff(actor); err != nil {
		return department.Department{}, err
	}

	d, err := department.NewFromCreateRequest(req)
	if err != nil {
		return department.Department{}, err
	}

	created, err := s.departments.Create(ctx, d)
	if err != nil {
		return department.Department{}, err
	}

	s.stats.Invalidate(ctx)
	return created, nil
}

func (s *DepartmentService) List(ctx context.Context) ([]department.Department, error) {
	return s.departments.List(ctx)
}
