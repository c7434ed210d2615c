package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/hrhub/internal/domain/project"
	"github.com/geocoder89/hrhub/internal/domain/user"
	"github.com/geocoder89/hrhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const projectColumns = `p.id, p.name, p.description, p.start_date, p.end_date, p.status, p.budget, p.revenue, p.client, p.created_at, p.updated_at`

const projectMembersProjectFK = "project_members_project_id_fkey"

type ProjectsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewProjectsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ProjectsRepo {
	return &ProjectsRepo{pool: pool, prom: prom}
}

func scanProject(row pgx.Row) (project.Project, error) {
	var (
		p      project.Project
		status string
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.StartDate, &p.EndDate, &status, &p.Budget, &p.Revenue, &p.Client, &p.CreatedAt, &p.UpdatedAt)
	p.Status = project.Status(status)
	return p, err
}

// insertMembers adds ids in order; existing pairs are left alone.
func insertMembers(ctx context.Context, q querier, projectID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := q.Exec(ctx, `
		INSERT INTO project_members (project_id, user_id)
		SELECT $1, m.id
		FROM unnest($2::text[]) WITH ORDINALITY AS m(id, ord)
		ORDER BY m.ord
		ON CONFLICT DO NOTHING`,
		projectID, ids,
	)
	return err
}

func (r *ProjectsRepo) Create(ctx context.Context, p project.Project) (project.Project, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return project.Project{}, fmt.Errorf("begin create project: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = observe(r.prom, "projects.create", func() error {
		_, err := tx.Exec(ctx,
			`INSERT INTO projects (id, name, description, start_date, end_date, status, budget, revenue, client, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			p.ID, p.Name, p.Description, p.StartDate, p.EndDate, string(p.Status), p.Budget, p.Revenue, p.Client, p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			return err
		}
		return insertMembers(ctx, tx, p.ID, project.DedupeMembers(p.MemberIDs()))
	})
	if err != nil {
		if IsForeignKeyViolation(err) {
			return project.Project{}, project.ErrMemberUnknown
		}
		return project.Project{}, fmt.Errorf("insert project: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return project.Project{}, fmt.Errorf("commit create project: %w", err)
	}

	return r.GetByID(ctx, p.ID)
}

func (r *ProjectsRepo) GetByID(ctx context.Context, id string) (project.Project, error) {
	var p project.Project

	err := observe(r.prom, "projects.get_by_id", func() error {
		var err error
		p, err = scanProject(r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects p WHERE p.id = $1`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Project{}, project.ErrNotFound
		}
		return project.Project{}, fmt.Errorf("get project: %w", err)
	}

	out, err := r.expand(ctx, []project.Project{p})
	if err != nil {
		return project.Project{}, err
	}
	return out[0], nil
}

func (r *ProjectsRepo) List(ctx context.Context) ([]project.Project, error) {
	return r.list(ctx, "projects.list", `SELECT `+projectColumns+` FROM projects p ORDER BY p.created_at DESC, p.id`)
}

func (r *ProjectsRepo) ListByMember(ctx context.Context, userID string) ([]project.Project, error) {
	return r.list(ctx, "projects.list_by_member", `
		SELECT `+projectColumns+`
		FROM projects p
		WHERE EXISTS (SELECT 1 FROM project_members m WHERE m.project_id = p.id AND m.user_id = $1)
		ORDER BY p.status ASC, p.end_date ASC NULLS FIRST, p.created_at ASC`,
		userID,
	)
}

func (r *ProjectsRepo) list(ctx context.Context, op, query string, args ...any) ([]project.Project, error) {
	out := make([]project.Project, 0)

	err := observe(r.prom, op, func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanProject(rows)
			if err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return r.expand(ctx, out)
}

// expand fills Employees for every project with one roster query.
func (r *ProjectsRepo) expand(ctx context.Context, ps []project.Project) ([]project.Project, error) {
	if len(ps) == 0 {
		return ps, nil
	}

	ids := make([]string, 0, len(ps))
	for i := range ps {
		ids = append(ids, ps[i].ID)
		ps[i].Employees = []user.Summary{}
	}

	rosters := make(map[string][]user.Summary, len(ps))
	err := observe(r.prom, "projects.load_rosters", func() error {
		rows, err := r.pool.Query(ctx, `
			SELECT m.project_id, u.id, u.name, u.email, u.position
			FROM project_members m
			JOIN users u ON u.id = m.user_id
			WHERE m.project_id = ANY($1)
			ORDER BY m.added_seq`,
			ids,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				pid string
				s   user.Summary
			)
			if err := rows.Scan(&pid, &s.ID, &s.Name, &s.Email, &s.Position); err != nil {
				return err
			}
			rosters[pid] = append(rosters[pid], s)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("load rosters: %w", err)
	}

	for i := range ps {
		if members, ok := rosters[ps[i].ID]; ok {
			ps[i].Employees = members
		}
	}
	return ps, nil
}

// Update rewrites the scalar columns and, when roster is non-nil, replaces the
// members in the same transaction.
func (r *ProjectsRepo) Update(ctx context.Context, p project.Project, roster []string) (project.Project, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return project.Project{}, fmt.Errorf("begin update project: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var found bool
	err = observe(r.prom, "projects.update", func() error {
		tag, err := tx.Exec(ctx, `
			UPDATE projects
			SET name = $2, description = $3, start_date = $4, end_date = $5, status = $6,
			    budget = $7, revenue = $8, client = $9, updated_at = NOW()
			WHERE id = $1`,
			p.ID, p.Name, p.Description, p.StartDate, p.EndDate, string(p.Status), p.Budget, p.Revenue, p.Client,
		)
		if err != nil {
			return err
		}
		found = tag.RowsAffected() > 0
		if !found || roster == nil {
			return nil
		}

		if _, err := tx.Exec(ctx, `DELETE FROM project_members WHERE project_id = $1`, p.ID); err != nil {
			return err
		}
		return insertMembers(ctx, tx, p.ID, project.DedupeMembers(roster))
	})
	if err != nil {
		if IsForeignKeyViolation(err) {
			return project.Project{}, project.ErrMemberUnknown
		}
		return project.Project{}, fmt.Errorf("update project: %w", err)
	}
	if !found {
		return project.Project{}, project.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return project.Project{}, fmt.Errorf("commit update project: %w", err)
	}

	return r.GetByID(ctx, p.ID)
}

// AddMember relies on the composite primary key: a repeated assignment is a no-op.
func (r *ProjectsRepo) AddMember(ctx context.Context, projectID, userID string) (project.Project, error) {
	err := observe(r.prom, "projects.add_member", func() error {
		tag, err := r.pool.Exec(ctx,
			`INSERT INTO project_members (project_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			projectID, userID,
		)
		if err != nil || tag.RowsAffected() == 0 {
			return err
		}
		_, err = r.pool.Exec(ctx, `UPDATE projects SET updated_at = NOW() WHERE id = $1`, projectID)
		return err
	})

	if err != nil {
		if IsForeignKeyViolation(err) {
			if constraintOf(err) == projectMembersProjectFK {
				return project.Project{}, project.ErrNotFound
			}
			return project.Project{}, user.ErrNotFound
		}
		return project.Project{}, fmt.Errorf("add project member: %w", err)
	}

	return r.GetByID(ctx, projectID)
}

// RemoveMember never deletes the project, even when the roster empties.
func (r *ProjectsRepo) RemoveMember(ctx context.Context, projectID, userID string) (project.Project, error) {
	err := observe(r.prom, "projects.remove_member", func() error {
		tag, err := r.pool.Exec(ctx,
			`DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`,
			projectID, userID,
		)
		if err != nil || tag.RowsAffected() == 0 {
			return err
		}
		_, err = r.pool.Exec(ctx, `UPDATE projects SET updated_at = NOW() WHERE id = $1`, projectID)
		return err
	})

	if err != nil {
		return project.Project{}, fmt.Errorf("remove project member: %w", err)
	}

	return r.GetByID(ctx, projectID)
}

func (r *ProjectsRepo) Delete(ctx context.Context, id string) error {
	var affected int64

	err := observe(r.prom, "projects.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return err
	})

	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if affected == 0 {
		return project.ErrNotFound
	}
	return nil
}

func (r *ProjectsRepo) Stats(ctx context.Context) (project.Stats, error) {
	var st project.Stats

	err := observe(r.prom, "projects.stats", func() error {
		return r.pool.QueryRow(ctx, `
			SELECT COUNT(*),
			       COUNT(*) FILTER (WHERE status = 'completed'),
			       COUNT(*) FILTER (WHERE status = 'ongoing'),
			       COUNT(*) FILTER (WHERE status = 'planning'),
			       COUNT(*) FILTER (WHERE status = 'onhold'),
			       COALESCE(SUM(revenue) FILTER (WHERE status = 'completed'), 0)
			FROM projects`,
		).Scan(&st.TotalProjects, &st.CompletedProjects, &st.OngoingProjects, &st.PlanningProjects, &st.OnHoldProjects, &st.TotalRevenue)
	})

	if err != nil {
		return project.Stats{}, fmt.Errorf("project stats: %w", err)
	}
	return st, nil
}

func (r *ProjectsRepo) CountByStatus(ctx context.Context) (map[project.Status]int, error) {
	out := map[project.Status]int{}

	err := observe(r.prom, "projects.count_by_status", func() error {
		rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM projects GROUP BY status`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				status string
				n      int
			)
			if err := rows.Scan(&status, &n); err != nil {
				return err
			}
			out[project.Status(status)] = n
		}
		return rows.Err()
	})

	if err != nil {
		return nil, fmt.Errorf("count projects by status: %w", err)
	}
	return out, nil
}
