package memory

import (
	"context"
	"sort"
	"time"

	"github.com/geocoder89/hrhub/internal/domain/user"
	"github.com/geocoder89/hrhub/internal/service"
)

type UsersRepo struct {
	s *Store
}

var _ service.UserStore = (*UsersRepo)(nil)

func (r *UsersRepo) Create(_ context.Context, u user.User) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.emailTaken(u.Email, "") {
		return user.User{}, user.ErrEmailTaken
	}
	if !r.s.departmentExists(u.DepartmentID) {
		return user.User{}, user.ErrUnknownDepartment
	}

	r.s.st.users[u.ID] = userRec{u: u, seq: r.s.next()}
	return r.s.withDepartment(u), nil
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.st.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return r.s.withDepartment(rec.u), nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	email = user.NormalizeEmail(email)
	for _, rec := range r.s.st.users {
		if rec.u.Email == email {
			return r.s.withDepartment(rec.u), nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) List(_ context.Context) ([]user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	recs := make([]userRec, 0, len(r.s.st.users))
	for _, rec := range r.s.st.users {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq > recs[j].seq })

	out := make([]user.User, 0, len(recs))
	for _, rec := range recs {
		out = append(out, r.s.withDepartment(rec.u))
	}
	return out, nil
}

func (r *UsersRepo) Update(_ context.Context, id string, req user.UpdateUserRequest) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.st.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	u := rec.u

	if req.Email != nil {
		email := user.NormalizeEmail(*req.Email)
		if r.s.emailTaken(email, id) {
			return user.User{}, user.ErrEmailTaken
		}
		u.Email = email
	}
	if req.DepartmentID != nil {
		if !r.s.departmentExists(req.DepartmentID) {
			return user.User{}, user.ErrUnknownDepartment
		}
		dep := *req.DepartmentID
		u.DepartmentID = &dep
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	if req.Position != nil {
		u.Position = *req.Position
	}
	if req.MobileNumber != nil {
		u.MobileNumber = *req.MobileNumber
	}
	u.UpdatedAt = time.Now().UTC()

	rec.u = u
	r.s.st.users[id] = rec
	return r.s.withDepartment(u), nil
}

func (r *UsersRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.st.users), nil
}

func (r *UsersRepo) CountJoinedSince(_ context.Context, since time.Time) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, rec := range r.s.st.users {
		if !rec.u.JoinDate.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *Store) emailTaken(email, exceptID string) bool {
	for id, rec := range s.st.users {
		if id != exceptID && rec.u.Email == email {
			return true
		}
	}
	return false
}

func (s *Store) departmentExists(id *string) bool {
	if id == nil {
		return true
	}
	_, ok := s.st.departments[*id]
	return ok
}

func (s *Store) withDepartment(u user.User) user.User {
	u.DepartmentName = ""
	if u.DepartmentID != nil {
		if d, ok := s.st.departments[*u.DepartmentID]; ok {
			u.DepartmentName = d.Name
		}
	}
	return u
}
