package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/hrhub/internal/domain/leave"
	"github.com/geocoder89/hrhub/internal/domain/user"
	"github.com/geocoder89/hrhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const leaveColumns = `l.id, l.employee_id, l.start_date, l.end_date, l.reason, l.leave_type, l.status, l.created_at, l.updated_at`

type LeavesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewLeavesRepo(pool *pgxpool.Pool, prom *observability.Prom) *LeavesRepo {
	return &LeavesRepo{pool: pool, prom: prom}
}

// leaveDest lists scan targets for leaveColumns.
func leaveDest(l *leave.Leave, typ, status *string) []any {
	return []any{&l.ID, &l.EmployeeID, &l.StartDate, &l.EndDate, &l.Reason, typ, status, &l.CreatedAt, &l.UpdatedAt}
}

func scanLeave(row pgx.Row) (leave.Leave, error) {
	var (
		l           leave.Leave
		typ, status string
	)
	err := row.Scan(leaveDest(&l, &typ, &status)...)
	l.LeaveType = leave.Type(typ)
	l.Status = leave.Status(status)
	return l, err
}

func scanLeaveWithEmployee(row pgx.Row) (leave.WithEmployee, error) {
	var (
		out               leave.WithEmployee
		typ, status, role string
	)

	dest := leaveDest(&out.Leave, &typ, &status)
	e := &out.Employee
	dest = append(dest,
		&e.ID, &e.Name, &e.Email, &e.PasswordHash, &role, &e.DepartmentID,
		&e.DepartmentName, &e.Position, &e.MobileNumber, &e.JoinDate, &e.CreatedAt, &e.UpdatedAt,
	)

	err := row.Scan(dest...)
	out.LeaveType = leave.Type(typ)
	out.Status = leave.Status(status)
	e.Role = user.Role(role)
	return out, err
}

func (r *LeavesRepo) Create(ctx context.Context, l leave.Leave) (leave.Leave, error) {
	err := observe(r.prom, "leaves.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO leaves (id, employee_id, start_date, end_date, reason, leave_type, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			l.ID, l.EmployeeID, l.StartDate, l.EndDate, l.Reason, string(l.LeaveType), string(l.Status), l.CreatedAt, l.UpdatedAt,
		)
		return err
	})

	if err != nil {
		if IsForeignKeyViolation(err) {
			return leave.Leave{}, user.ErrNotFound
		}
		return leave.Leave{}, fmt.Errorf("insert leave: %w", err)
	}
	return l, nil
}

func (r *LeavesRepo) GetByID(ctx context.Context, id string) (leave.Leave, error) {
	var l leave.Leave

	err := observe(r.prom, "leaves.get_by_id", func() error {
		var err error
		l, err = scanLeave(r.pool.QueryRow(ctx, `SELECT `+leaveColumns+` FROM leaves l WHERE l.id = $1`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Leave{}, leave.ErrNotFound
		}
		return leave.Leave{}, fmt.Errorf("get leave: %w", err)
	}
	return l, nil
}

// UpdateStatus is a single conditional UPDATE. When it matches nothing a second
// lookup tells a missing request apart from a decided one.
func (r *LeavesRepo) UpdateStatus(ctx context.Context, id string, status leave.Status, onlyFromPending bool) (leave.Leave, error) {
	var l leave.Leave

	err := observe(r.prom, "leaves.update_status", func() error {
		var err error
		l, err = scanLeave(r.pool.QueryRow(ctx, `
			UPDATE leaves l
			SET status = $2, updated_at = NOW()
			WHERE l.id = $1
			  AND (NOT $3 OR l.status = 'pending' OR l.status = $2)
			RETURNING `+leaveColumns,
			id, string(status), onlyFromPending,
		))
		return err
	})

	if err == nil {
		return l, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return leave.Leave{}, fmt.Errorf("update leave status: %w", err)
	}

	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return leave.Leave{}, getErr
	}
	return leave.Leave{}, leave.ErrAlreadyDecided
}

func (r *LeavesRepo) DeletePendingOwned(ctx context.Context, id, ownerID string) error {
	var affected int64

	err := observe(r.prom, "leaves.delete_pending_owned", func() error {
		tag, err := r.pool.Exec(ctx,
			`DELETE FROM leaves WHERE id = $1 AND employee_id = $2 AND status = 'pending'`,
			id, ownerID,
		)
		affected = tag.RowsAffected()
		return err
	})

	if err != nil {
		return fmt.Errorf("cancel leave: %w", err)
	}
	if affected == 0 {
		return leave.ErrNotCancellable
	}
	return nil
}

func (r *LeavesRepo) ListByOwner(ctx context.Context, ownerID string) ([]leave.Leave, error) {
	out := make([]leave.Leave, 0)

	err := observe(r.prom, "leaves.list_by_owner", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+leaveColumns+` FROM leaves l WHERE l.employee_id = $1 ORDER BY l.created_at DESC, l.id DESC`,
			ownerID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			l, err := scanLeave(rows)
			if err != nil {
				return err
			}
			out = append(out, l)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, fmt.Errorf("list leaves by owner: %w", err)
	}
	return out, nil
}

func (r *LeavesRepo) ListWithEmployee(ctx context.Context, status *leave.Status) ([]leave.WithEmployee, error) {
	var filter *string
	if status != nil {
		s := string(*status)
		filter = &s
	}

	return r.listJoined(ctx, "leaves.list_with_employee",
		` WHERE ($1::text IS NULL OR l.status = $1) ORDER BY l.created_at DESC, l.id DESC`, filter)
}

func (r *LeavesRepo) ListByEmployee(ctx context.Context, employeeID string) ([]leave.WithEmployee, error) {
	return r.listJoined(ctx, "leaves.list_by_employee",
		` WHERE l.employee_id = $1 ORDER BY l.start_date DESC, l.created_at DESC`, employeeID)
}

func (r *LeavesRepo) listJoined(ctx context.Context, op, tail string, arg any) ([]leave.WithEmployee, error) {
	out := make([]leave.WithEmployee, 0)

	err := observe(r.prom, op, func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+leaveColumns+`, `+userColumns+`
			FROM leaves l
			JOIN users u ON u.id = l.employee_id
			LEFT JOIN departments d ON d.id = u.department_id`+tail,
			arg,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			w, err := scanLeaveWithEmployee(rows)
			if err != nil {
				return err
			}
			out = append(out, w)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func (r *LeavesRepo) CountByOwner(ctx context.Context, ownerID string, status *leave.Status) (int, error) {
	var filter *string
	if status != nil {
		s := string(*status)
		filter = &s
	}
	return count(ctx, r.pool, r.prom, "leaves.count_by_owner",
		`SELECT COUNT(*) FROM leaves WHERE employee_id = $1 AND ($2::text IS NULL OR status = $2)`,
		ownerID, filter)
}

func (r *LeavesRepo) CountByStatus(ctx context.Context, status leave.Status) (int, error) {
	return count(ctx, r.pool, r.prom, "leaves.count_by_status",
		`SELECT COUNT(*) FROM leaves WHERE status = $1`, string(status))
}
