package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/pgingest/pkg/pgingest"
)

// Querier is the subset of pgx execution methods the ingestion pipeline
// uses. Both pgx.Tx and *pgxpool.Conn satisfy it, and tests can substitute
// a recording fake.
type Querier interface {
	// Exec executes a statement without returning rows.
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)

	// CopyFrom performs a bulk COPY into the named table.
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Beginner starts transactions. Satisfied by *pgxpool.Conn and by Session.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Session owns one connection pool and one acquired connection for the
// duration of a run. Staging tables are session-scoped temp tables, so every
// file in a batch must execute on the same connection.
//
// Session is the single owner of both resources: Close releases the
// connection and closes the pool on every exit path. Callers that receive a
// *Session borrow it and must never close it themselves.
type Session struct {
	pool *pgxpool.Pool
	conn *pgxpool.Conn
}

// Connect validates the configuration, establishes a pool via the connector,
// and acquires the run's connection.
func Connect(ctx context.Context, connector pgingest.Connector, cfg *pgingest.ConnectionConfig) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := connector.Connect(ctx)
	if err != nil {
		return nil, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}

	return &Session{pool: pool, conn: conn}, nil
}

// Begin starts a transaction on the session connection.
func (s *Session) Begin(ctx context.Context) (pgx.Tx, error) {
	return s.conn.Begin(ctx)
}

// Close releases the connection and closes the pool. Safe to call more than
// once.
func (s *Session) Close() {
	if s.conn != nil {
		s.conn.Release()
		s.conn = nil
	}
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
}

var _ Beginner = (*Session)(nil)
