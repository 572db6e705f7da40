package internal

import (
	"context"
	"database/sql"
	"os"
	"strconv"
)

type ctxKey string

const dbConnKey ctxKey = "dbconn"

func rlsEnabled() bool {
	return os.Getenv("RLS_ENABLED") == "true"
}

// withDBConn pins a dedicated connection with the caller's organization set
// as a session GUC, so row-level-security policies can scope every query.
// orgID 0 (user without an organization) still gets a session; policies see
// no matching rows.
func withDBConn(ctx context.Context, db *sql.DB, orgID int64) (*sql.Conn, context.Context, error) {
	if !rlsEnabled() {
		return nil, ctx, nil
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, ctx, err
	}
	// SET cannot take bind parameters over the extended protocol; set_config can.
	_, err = conn.ExecContext(ctx, "SELECT set_config('app.current_org_id', $1::text, false)", strconv.FormatInt(orgID, 10))
	if err != nil {
		conn.Close()
		return nil, ctx, err
	}
	ctx2 := context.WithValue(ctx, dbConnKey, conn)
	return conn, ctx2, nil
}

// querier abstracts over *sql.DB and the pinned per-request *sql.Conn
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// dbFrom prefers the session-scoped connection when RLS is on, else the pool
func dbFrom(ctx context.Context, db *sql.DB) querier {
	if !rlsEnabled() {
		return db
	}
	if v := ctx.Value(dbConnKey); v != nil {
		if c, ok := v.(*sql.Conn); ok {
			return c
		}
	}
	return db // fallback
}
