package memory

import (
	"context"
	"sort"
	"time"

	"github.com/geocoder89/hrhub/internal/domain/project"
	"github.com/geocoder89/hrhub/internal/domain/user"
	"github.com/geocoder89/hrhub/internal/service"
)

type ProjectsRepo struct {
	s *Store
}

var _ service.ProjectStore = (*ProjectsRepo)(nil)

func (r *ProjectsRepo) Create(_ context.Context, p project.Project) (project.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	members := project.DedupeMembers(p.MemberIDs())
	if !r.s.usersExist(members) {
		return project.Project{}, project.ErrMemberUnknown
	}

	p.Employees = nil
	r.s.st.projects[p.ID] = projectRec{p: p, members: members, seq: r.s.next()}
	return r.s.expand(r.s.st.projects[p.ID]), nil
}

func (r *ProjectsRepo) GetByID(_ context.Context, id string) (project.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.st.projects[id]
	if !ok {
		return project.Project{}, project.ErrNotFound
	}
	return r.s.expand(rec), nil
}

func (r *ProjectsRepo) List(_ context.Context) ([]project.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	recs := r.s.filterProjects(func(projectRec) bool { return true })
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq > recs[j].seq })
	return r.s.expandAll(recs), nil
}

// ListByMember orders by status, then end date with open-ended projects first.
func (r *ProjectsRepo) ListByMember(_ context.Context, userID string) ([]project.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	recs := r.s.filterProjects(func(rec projectRec) bool { return indexOf(rec.members, userID) >= 0 })
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i].p, recs[j].p
		if a.Status != b.Status {
			return a.Status < b.Status
		}
		switch {
		case a.EndDate == nil && b.EndDate != nil:
			return true
		case a.EndDate != nil && b.EndDate == nil:
			return false
		case a.EndDate != nil && !a.EndDate.Equal(*b.EndDate):
			return a.EndDate.Before(*b.EndDate)
		}
		return recs[i].seq < recs[j].seq
	})
	return r.s.expandAll(recs), nil
}

func (r *ProjectsRepo) Update(_ context.Context, p project.Project, roster []string) (project.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.st.projects[p.ID]
	if !ok {
		return project.Project{}, project.ErrNotFound
	}
	if roster != nil {
		roster = project.DedupeMembers(roster)
		if !r.s.usersExist(roster) {
			return project.Project{}, project.ErrMemberUnknown
		}
		rec.members = roster
	}

	p.Employees = nil
	p.CreatedAt = rec.p.CreatedAt
	rec.p = p
	r.s.st.projects[p.ID] = rec
	return r.s.expand(rec), nil
}

func (r *ProjectsRepo) AddMember(_ context.Context, projectID, userID string) (project.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.st.projects[projectID]
	if !ok {
		return project.Project{}, project.ErrNotFound
	}
	if _, ok := r.s.st.users[userID]; !ok {
		return project.Project{}, user.ErrNotFound
	}

	if indexOf(rec.members, userID) < 0 {
		rec.members = append(rec.members, userID)
		rec.p.UpdatedAt = time.Now().UTC()
		r.s.st.projects[projectID] = rec
	}
	return r.s.expand(rec), nil
}

func (r *ProjectsRepo) RemoveMember(_ context.Context, projectID, userID string) (project.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.st.projects[projectID]
	if !ok {
		return project.Project{}, project.ErrNotFound
	}

	if i := indexOf(rec.members, userID); i >= 0 {
		rec.members = append(rec.members[:i:i], rec.members[i+1:]...)
		rec.p.UpdatedAt = time.Now().UTC()
		r.s.st.projects[projectID] = rec
	}
	return r.s.expand(rec), nil
}

func (r *ProjectsRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.st.projects[id]; !ok {
		return project.ErrNotFound
	}
	delete(r.s.st.projects, id)
	return nil
}

func (r *ProjectsRepo) Stats(_ context.Context) (project.Stats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var st project.Stats
	for _, rec := range r.s.st.projects {
		st.TotalProjects++
		switch rec.p.Status {
		case project.StatusCompleted:
			st.CompletedProjects++
			st.TotalRevenue += rec.p.Revenue
		case project.StatusOngoing:
			st.OngoingProjects++
		case project.StatusPlanning:
			st.PlanningProjects++
		case project.StatusOnHold:
			st.OnHoldProjects++
		}
	}
	return st, nil
}

func (r *ProjectsRepo) CountByStatus(_ context.Context) (map[project.Status]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := map[project.Status]int{}
	for _, rec := range r.s.st.projects {
		out[rec.p.Status]++
	}
	return out, nil
}

func (s *Store) usersExist(ids []string) bool {
	for _, id := range ids {
		if _, ok := s.st.users[id]; !ok {
			return false
		}
	}
	return true
}

func (s *Store) filterProjects(keep func(projectRec) bool) []projectRec {
	var out []projectRec
	for _, rec := range s.st.projects {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func (s *Store) expand(rec projectRec) project.Project {
	p := rec.p
	p.Employees = make([]user.Summary, 0, len(rec.members))
	for _, id := range rec.members {
		if u, ok := s.st.users[id]; ok {
			p.Employees = append(p.Employees, u.u.Summary())
		}
	}
	return p
}

func (s *Store) expandAll(recs []projectRec) []project.Project {
	out := make([]project.Project, 0, len(recs))
	for _, rec := range recs {
		out = append(out, s.expand(rec))
	}
	return out
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
