package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/geocoder89/hrhub/internal/domain/department"
	"github.com/geocoder89/hrhub/internal/service"
)

type DepartmentsRepo struct {
	s *Store
}

var _ service.DepartmentStore = (*DepartmentsRepo)(nil)

func (r *DepartmentsRepo) Create(_ context.Context, d department.Department) (department.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.st.departments {
		if strings.EqualFold(existing.Name, d.Name) {
			return department.Department{}, department.ErrNameTaken
		}
	}

	r.s.st.departments[d.ID] = d
	return d, nil
}

func (r *DepartmentsRepo) List(_ context.Context) ([]department.Department, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]department.Department, 0, len(r.s.st.departments))
	for _, d := range r.s.st.departments {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *DepartmentsRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.st.departments), nil
}
