package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/hrhub/internal/domain/user"
	"github.com/geocoder89/hrhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `u.id, u.name, u.email, u.password_hash, u.role, u.department_id,
	COALESCE(d.name, ''), u.position, u.mobile_number, u.join_date, u.created_at, u.updated_at`

const userFrom = ` FROM users u LEFT JOIN departments d ON d.id = u.department_id`

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func scanUser(row pgx.Row) (user.User, error) {
	var (
		u    user.User
		role string
	)

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&role,
		&u.DepartmentID,
		&u.DepartmentName,
		&u.Position,
		&u.MobileNumber,
		&u.JoinDate,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	u.Role = user.Role(role)
	return u, err
}

func mapUserWriteErr(err error) error {
	switch {
	case IsUniqueViolation(err):
		return user.ErrEmailTaken
	case IsForeignKeyViolation(err):
		return user.ErrUnknownDepartment
	}
	return err
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	err := observe(r.prom, "users.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users (id, name, email, password_hash, role, department_id, position, mobile_number, join_date, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), u.DepartmentID,
			u.Position, u.MobileNumber, u.JoinDate, u.CreatedAt, u.UpdatedAt,
		)
		return err
	})

	if err != nil {
		if mapped := mapUserWriteErr(err); mapped != err {
			return user.User{}, mapped
		}
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}

	return r.GetByID(ctx, u.ID)
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_id", `SELECT `+userColumns+userFrom+` WHERE u.id = $1`, id)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_email", `SELECT `+userColumns+userFrom+` WHERE lower(u.email) = lower($1)`, email)
}

func (r *UsersRepo) getOne(ctx context.Context, op, query string, arg any) (user.User, error) {
	var u user.User

	err := observe(r.prom, op, func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx, query, arg))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	out := make([]user.User, 0)

	err := observe(r.prom, "users.list", func() error {
		rows, err := r.pool.Query(ctx, `SELECT `+userColumns+userFrom+` ORDER BY u.created_at DESC, u.id`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return err
			}
			out = append(out, u)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

// Update applies a patch; NULL parameters keep the stored column.
func (r *UsersRepo) Update(ctx context.Context, id string, req user.UpdateUserRequest) (user.User, error) {
	var role *string
	if req.Role != nil {
		s := string(*req.Role)
		role = &s
	}

	var found bool
	err := observe(r.prom, "users.update", func() error {
		tag, err := r.pool.Exec(ctx, `
			UPDATE users
			SET name          = COALESCE($2, name),
			    email         = COALESCE($3, email),
			    role          = COALESCE($4, role),
			    department_id = COALESCE($5, department_id),
			    position      = COALESCE($6, position),
			    mobile_number = COALESCE($7, mobile_number),
			    updated_at    = NOW()
			WHERE id = $1`,
			id, req.Name, req.Email, role, req.DepartmentID, req.Position, req.MobileNumber,
		)
		found = tag.RowsAffected() > 0
		return err
	})

	if err != nil {
		if mapped := mapUserWriteErr(err); mapped != err {
			return user.User{}, mapped
		}
		return user.User{}, fmt.Errorf("update user: %w", err)
	}
	if !found {
		return user.User{}, user.ErrNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *UsersRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.pool, r.prom, "users.count", `SELECT COUNT(*) FROM users`)
}

func (r *UsersRepo) CountJoinedSince(ctx context.Context, since time.Time) (int, error) {
	return count(ctx, r.pool, r.prom, "users.count_joined_since", `SELECT COUNT(*) FROM users WHERE join_date >= $1`, since)
}

func count(ctx context.Context, q querier, prom *observability.Prom, op, query string, args ...any) (int, error) {
	var n int
	err := observe(prom, op, func() error {
		return q.QueryRow(ctx, query, args...).Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
