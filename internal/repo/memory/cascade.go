package memory

import (
	"context"
	"sort"

	"github.com/geocoder89/hrhub/internal/domain/project"
	"github.com/geocoder89/hrhub/internal/domain/user"
	"github.com/geocoder89/hrhub/internal/service"
)

// cascadeTx runs with Store.mu already held by WithinTx.
type cascadeTx struct {
	s *Store
}

var _ service.CascadeTx = (*cascadeTx)(nil)

func (t *cascadeTx) LockUser(_ context.Context, id string) (user.User, error) {
	rec, ok := t.s.st.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return rec.u, nil
}

func (t *cascadeTx) DeleteLeavesByOwner(_ context.Context, ownerID string) (int, error) {
	n := 0
	for id, rec := range t.s.st.leaves {
		if rec.l.EmployeeID == ownerID {
			delete(t.s.st.leaves, id)
			n++
		}
	}
	return n, nil
}

func (t *cascadeTx) ProjectIDsByMember(_ context.Context, userID string) ([]string, error) {
	var ids []string
	for id, rec := range t.s.st.projects {
		if indexOf(rec.members, userID) >= 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (t *cascadeTx) RemoveMember(_ context.Context, projectID, userID string) (int, error) {
	rec, ok := t.s.st.projects[projectID]
	if !ok {
		return 0, project.ErrNotFound
	}
	if i := indexOf(rec.members, userID); i >= 0 {
		rec.members = append(rec.members[:i:i], rec.members[i+1:]...)
		t.s.st.projects[projectID] = rec
	}
	return len(rec.members), nil
}

func (t *cascadeTx) DeleteProject(_ context.Context, id string) error {
	if _, ok := t.s.st.projects[id]; !ok {
		return project.ErrNotFound
	}
	delete(t.s.st.projects, id)
	return nil
}

func (t *cascadeTx) DeleteUser(_ context.Context, id string) error {
	if _, ok := t.s.st.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(t.s.st.users, id)
	return nil
}
