package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"regexp"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// validIdentifier matches table names that may be interpolated into SQL.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Querier is the subset of *sql.DB and *sql.Tx used to write components.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the relational source of truth for every entity and component.
type Store struct {
	db *sql.DB
}

// Open creates a SQLite database at path and installs the component schema.
//
// The pool is limited to a single connection. An in-memory database lives
// and dies with its connection, so a second connection would see an empty
// schema. The same limit also means a statement that still holds open rows
// blocks every other statement: callers must drain or Reset cursors before
// issuing the next query.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, newError("open", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, newError("connect", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, newError("pragmas", err)
	}

	if err := applySchema(context.Background(), db); err != nil {
		db.Close()
		return nil, newError("schema", err)
	}

	return &Store{db: db}, nil
}

// Close releases the connection. With MemoryPath this discards every row.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Execute runs one or more semicolon separated statements.
func (s *Store) Execute(ctx context.Context, query string) error {
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return newError("execute", err)
	}
	return nil
}

// Query executes a query and returns the resulting rows.
// Callers are responsible for closing the returned rows.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, newError("query", err)
	}
	return rows, nil
}

// WithTx runs fn inside BEGIN ... COMMIT. Any error from fn rolls the
// transaction back and is returned unchanged.
func (s *Store) WithTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return newError("begin", err)
	}
	defer tx.Rollback() // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return newError("commit", err)
	}
	return nil
}

// NewEntity inserts a fresh entity row and returns its id. The id is read
// back as the largest id in the table, which INTEGER PRIMARY KEY assignment
// guarantees is the row just inserted.
func NewEntity(ctx context.Context, q Querier) (int64, error) {
	if _, err := q.ExecContext(ctx, `INSERT INTO entity DEFAULT VALUES`); err != nil {
		return 0, newError("insert entity", err)
	}

	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM entity ORDER BY id DESC LIMIT 1`).Scan(&id)
	if err != nil {
		return 0, newError("read entity id", err)
	}
	return id, nil
}

// InsertEntity creates the entity row with a caller chosen id.
func InsertEntity(ctx context.Context, q Querier, id int64) error {
	if _, err := q.ExecContext(ctx, `INSERT INTO entity (id) VALUES (?)`, id); err != nil {
		return newError(fmt.Sprintf("insert entity %d", id), err)
	}
	return nil
}

// EntityExists reports whether an entity row with id exists.
func EntityExists(ctx context.Context, q Querier, id int64) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM entity WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return false, newError("lookup entity", err)
	}
	return count > 0, nil
}

// CountRows returns the number of rows in table.
func (s *Store) CountRows(ctx context.Context, table string) (int, error) {
	if !validIdentifier.MatchString(table) {
		return 0, fmt.Errorf("invalid table name %q", table)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
		return 0, newError("count "+table, err)
	}
	return count, nil
}

// DumpTable returns every row of table ordered by rowid, one map per row.
// Used by tests and the scenario harness to compare whole-store state.
func (s *Store) DumpTable(ctx context.Context, table string) ([]map[string]any, error) {
	if !validIdentifier.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+table+" ORDER BY rowid")
	if err != nil {
		return nil, newError("dump "+table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, newError("dump "+table, err)
	}

	out := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, newError("dump "+table, err)
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, newError("dump "+table, err)
	}
	return out, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema installs the component tables. Goose wraps each migration in
// its own transaction.
func applySchema(ctx context.Context, db *sql.DB) error {
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
