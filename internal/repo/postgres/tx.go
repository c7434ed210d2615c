package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/hrhub/internal/domain/project"
	"github.com/geocoder89/hrhub/internal/domain/user"
	"github.com/geocoder89/hrhub/internal/observability"
	"github.com/geocoder89/hrhub/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxRunner runs the user delete cascade inside a single pgx transaction.
type TxRunner struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewTxRunner(pool *pgxpool.Pool, prom *observability.Prom) *TxRunner {
	return &TxRunner{pool: pool, prom: prom}
}

var _ service.UnitOfWork = (*TxRunner)(nil)

func (r *TxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context, tx service.CascadeTx) error) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err = fn(ctx, &cascadeTx{tx: tx, prom: r.prom}); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type cascadeTx struct {
	tx   pgx.Tx
	prom *observability.Prom
}

var _ service.CascadeTx = (*cascadeTx)(nil)

// LockUser takes a row lock so concurrent writers referencing the user wait
// for the cascade to finish.
func (c *cascadeTx) LockUser(ctx context.Context, id string) (user.User, error) {
	var u user.User

	err := observe(c.prom, "cascade.lock_user", func() error {
		var err error
		u, err = scanUser(c.tx.QueryRow(ctx, `SELECT `+userColumns+userFrom+` WHERE u.id = $1 FOR UPDATE OF u`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, fmt.Errorf("lock user: %w", err)
	}
	return u, nil
}

func (c *cascadeTx) DeleteLeavesByOwner(ctx context.Context, ownerID string) (int, error) {
	var n int64

	err := observe(c.prom, "cascade.delete_leaves", func() error {
		tag, err := c.tx.Exec(ctx, `DELETE FROM leaves WHERE employee_id = $1`, ownerID)
		n = tag.RowsAffected()
		return err
	})
	return int(n), err
}

// ProjectIDsByMember locks the project rows as well as the memberships. A
// concurrent AddMember holds a key-share lock on the project row, so the lock
// waits for it and the remaining-member count that follows sees its row.
func (c *cascadeTx) ProjectIDsByMember(ctx context.Context, userID string) ([]string, error) {
	ids := make([]string, 0)

	err := observe(c.prom, "cascade.projects_by_member", func() error {
		rows, err := c.tx.Query(ctx,
			`SELECT m.project_id
			   FROM project_members m
			   JOIN projects p ON p.id = m.project_id
			  WHERE m.user_id = $1
			  ORDER BY m.project_id
			  FOR UPDATE OF p, m`,
			userID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return rows.Err()
	})
	return ids, err
}

func (c *cascadeTx) RemoveMember(ctx context.Context, projectID, userID string) (int, error) {
	var remaining int

	err := observe(c.prom, "cascade.remove_member", func() error {
		if _, err := c.tx.Exec(ctx,
			`DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`,
			projectID, userID,
		); err != nil {
			return err
		}
		return c.tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM project_members WHERE project_id = $1`,
			projectID,
		).Scan(&remaining)
	})
	return remaining, err
}

func (c *cascadeTx) DeleteProject(ctx context.Context, id string) error {
	var affected int64

	err := observe(c.prom, "cascade.delete_project", func() error {
		tag, err := c.tx.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return project.ErrNotFound
	}
	return nil
}

func (c *cascadeTx) DeleteUser(ctx context.Context, id string) error {
	var affected int64

	err := observe(c.prom, "cascade.delete_user", func() error {
		tag, err := c.tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return user.ErrNotFound
	}
	return nil
}
