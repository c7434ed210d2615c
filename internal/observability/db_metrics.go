package observability

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Outcome labels for hrhub_db_query_duration_seconds.
const (
	dbStatusOK       = "ok"
	dbStatusNotFound = "not_found"
	dbStatusError    = "error"
)

// pgClasses names the SQLSTATEs the repositories run into: duplicate emails and
// department names, unknown referenced rows, date-order checks and contention
// between concurrent user deletes. Anything else is reported by its raw code.
var pgClasses = map[string]string{
	"23505": "unique_violation",
	"23503": "foreign_key_violation",
	"23514": "check_violation",
	"23502": "not_null_violation",
	"40001": "serialization_failure",
	"40P01": "deadlock",
	"55P03": "lock_not_available",
	"57014": "query_canceled",
}

// ObserveDB times fn under a logical op name such as "leaves.update_status".
// A missing row is a normal lookup outcome for the 404 paths, so it is timed
// as not_found and kept out of the error counter. A nil *Prom just runs fn.
func (p *Prom) ObserveDB(op string, fn func() error) error {
	if p == nil {
		return fn()
	}

	start := time.Now()
	err := fn()

	status := dbStatusOK
	switch {
	case err == nil:
	case errors.Is(err, pgx.ErrNoRows):
		status = dbStatusNotFound
	default:
		status = dbStatusError
		p.DbErrorsTotal.WithLabelValues(op, dbErrorClass(err)).Inc()
	}

	p.DbQueryDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
	return err
}

func dbErrorClass(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if class, ok := pgClasses[pgErr.Code]; ok {
			return class
		}
		return "pg_" + pgErr.Code
	}

	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded), pgconn.Timeout(err):
		return "timeout"
	case errors.Is(err, pgx.ErrTxClosed), errors.Is(err, pgx.ErrTxCommitRollback):
		return "tx_closed"
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return "connection"
	}
	return "unknown"
}
