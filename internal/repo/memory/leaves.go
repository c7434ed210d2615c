package memory

import (
	"context"
	"sort"
	"time"

	"github.com/geocoder89/hrhub/internal/domain/leave"
	"github.com/geocoder89/hrhub/internal/domain/user"
	"github.com/geocoder89/hrhub/internal/service"
)

type LeavesRepo struct {
	s *Store
}

var _ service.LeaveStore = (*LeavesRepo)(nil)

func (r *LeavesRepo) Create(_ context.Context, l leave.Leave) (leave.Leave, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.st.users[l.EmployeeID]; !ok {
		return leave.Leave{}, user.ErrNotFound
	}

	r.s.st.leaves[l.ID] = leaveRec{l: l, seq: r.s.next()}
	return l, nil
}

func (r *LeavesRepo) GetByID(_ context.Context, id string) (leave.Leave, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.st.leaves[id]
	if !ok {
		return leave.Leave{}, leave.ErrNotFound
	}
	return rec.l, nil
}

func (r *LeavesRepo) UpdateStatus(_ context.Context, id string, status leave.Status, onlyFromPending bool) (leave.Leave, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.st.leaves[id]
	if !ok {
		return leave.Leave{}, leave.ErrNotFound
	}
	if onlyFromPending && rec.l.Status != leave.StatusPending && rec.l.Status != status {
		return leave.Leave{}, leave.ErrAlreadyDecided
	}

	rec.l.Status = status
	rec.l.UpdatedAt = time.Now().UTC()
	r.s.st.leaves[id] = rec
	return rec.l, nil
}

func (r *LeavesRepo) DeletePendingOwned(_ context.Context, id, ownerID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.st.leaves[id]
	if !ok || rec.l.EmployeeID != ownerID || rec.l.Status != leave.StatusPending {
		return leave.ErrNotCancellable
	}

	delete(r.s.st.leaves, id)
	return nil
}

func (r *LeavesRepo) ListByOwner(_ context.Context, ownerID string) ([]leave.Leave, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	recs := r.s.filterLeaves(func(l leave.Leave) bool { return l.EmployeeID == ownerID })
	sortNewestFirst(recs)

	out := make([]leave.Leave, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.l)
	}
	return out, nil
}

func (r *LeavesRepo) ListWithEmployee(_ context.Context, status *leave.Status) ([]leave.WithEmployee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	recs := r.s.filterLeaves(func(l leave.Leave) bool { return status == nil || l.Status == *status })
	sortNewestFirst(recs)
	return r.s.joinEmployees(recs), nil
}

func (r *LeavesRepo) ListByEmployee(_ context.Context, employeeID string) ([]leave.WithEmployee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	recs := r.s.filterLeaves(func(l leave.Leave) bool { return l.EmployeeID == employeeID })
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].l.StartDate.Equal(recs[j].l.StartDate) {
			return recs[i].l.StartDate.After(recs[j].l.StartDate)
		}
		return recs[i].seq > recs[j].seq
	})
	return r.s.joinEmployees(recs), nil
}

func (r *LeavesRepo) CountByOwner(_ context.Context, ownerID string, status *leave.Status) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	recs := r.s.filterLeaves(func(l leave.Leave) bool {
		return l.EmployeeID == ownerID && (status == nil || l.Status == *status)
	})
	return len(recs), nil
}

func (r *LeavesRepo) CountByStatus(_ context.Context, status leave.Status) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return len(r.s.filterLeaves(func(l leave.Leave) bool { return l.Status == status })), nil
}

func (s *Store) filterLeaves(keep func(leave.Leave) bool) []leaveRec {
	var out []leaveRec
	for _, rec := range s.st.leaves {
		if keep(rec.l) {
			out = append(out, rec)
		}
	}
	return out
}

func (s *Store) joinEmployees(recs []leaveRec) []leave.WithEmployee {
	out := make([]leave.WithEmployee, 0, len(recs))
	for _, rec := range recs {
		owner, ok := s.st.users[rec.l.EmployeeID]
		if !ok {
			continue
		}
		out = append(out, leave.WithEmployee{Leave: rec.l, Employee: s.withDepartment(owner.u)})
	}
	return out
}

func sortNewestFirst(recs []leaveRec) {
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq > recs[j].seq })
}
