package postgres

import (
	"context"
	"fmt"

	"github.com/geocoder89/hrhub/internal/domain/department"
	"github.com/geocoder89/hrhub/internal/observability"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DepartmentsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewDepartmentsRepo(pool *pgxpool.Pool, prom *observability.Prom) *DepartmentsRepo {
	return &DepartmentsRepo{pool: pool, prom: prom}
}

func (r *DepartmentsRepo) Create(ctx context.Context, d department.Department) (department.Department, error) {
	err := observe(r.prom, "departments.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO departments (id, name, manager_id, description, created_at) VALUES ($1, $2, $3, $4, $5)`,
			d.ID, d.Name, d.ManagerID, d.Description, d.CreatedAt,
		)
		return err
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return department.Department{}, department.ErrNameTaken
		}
		return department.Department{}, fmt.Errorf("insert department: %w", err)
	}
	return d, nil
}

func (r *DepartmentsRepo) List(ctx context.Context) ([]department.Department, error) {
	out := make([]department.Department, 0)

	err := observe(r.prom, "departments.list", func() error {
		rows, err := r.pool.Query(ctx, `SELECT id, name, manager_id, description, created_at FROM departments ORDER BY name`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var d department.Department
			if err := rows.Scan(&d.ID, &d.Name, &d.ManagerID, &d.Description, &d.CreatedAt); err != nil {
				return err
			}
			out = append(out, d)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return out, nil
}

func (r *DepartmentsRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.pool, r.prom, "departments.count", `SELECT COUNT(*) FROM departments`)
}
