package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// State is the outcome of a Statement.Step.
type State int

const (
	// StateRow means a row is available through Read.
	StateRow State = iota
	// StateDone means the statement has no more rows.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateRow:
		return "Row"
	case StateDone:
		return "Done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrNoRow is returned by Read when Step has not produced a row.
var ErrNoRow = errors.New("no current row")

// Statement is a prepared query with named parameters and a cursor.
//
// A Statement is owned by a single system. Bind values persist across
// Reset, so a system typically binds once per tick, then either Exec's
// (mutations) or Step's until StateDone (queries).
//
// While a cursor is open it holds the store's only connection. Step
// closes it when the rows are exhausted; Reset closes it early.
type Statement struct {
	stmt *sql.Stmt
	args map[string]any

	rows    *sql.Rows
	columns int
	current []any
	done    bool
}

// Prepare compiles query against the store.
func (s *Store) Prepare(ctx context.Context, query string) (*Statement, error) {
	stmt, err := s.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, newError("prepare", err)
	}
	return &Statement{
		stmt: stmt,
		args: make(map[string]any),
	}, nil
}

// Bind sets a named parameter. The leading ':' is optional.
func (st *Statement) Bind(name string, value any) error {
	name = strings.TrimLeft(name, ":@$")
	if name == "" {
		return newError("bind", errors.New("empty parameter name"))
	}
	st.args[name] = value
	return nil
}

// Reset closes any open cursor so the statement can be stepped again.
func (st *Statement) Reset() error {
	st.current = nil
	st.done = false
	if st.rows == nil {
		return nil
	}
	err := st.rows.Close()
	st.rows = nil
	if err != nil {
		return newError("reset", err)
	}
	return nil
}

// Step advances the cursor, running the query on the first call after a
// Reset. Once StateDone is returned the cursor is closed and further Steps
// keep returning StateDone until Reset. A Step error also closes the cursor.
func (st *Statement) Step(ctx context.Context) (State, error) {
	if st.done {
		return StateDone, nil
	}

	if st.rows == nil {
		rows, err := st.stmt.QueryContext(ctx, st.namedArgs()...)
		if err != nil {
			return StateDone, newError("step", err)
		}
		cols, err := rows.Columns()
		if err != nil {
			rows.Close()
			return StateDone, newError("step", err)
		}
		st.rows = rows
		st.columns = len(cols)
	}

	if !st.rows.Next() {
		return StateDone, st.finish(st.rows.Err())
	}

	values := make([]any, st.columns)
	ptrs := make([]any, st.columns)
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := st.rows.Scan(ptrs...); err != nil {
		return StateDone, st.finish(err)
	}
	st.current = values
	return StateRow, nil
}

// finish closes the cursor, releasing the connection, and marks the
// statement done.
func (st *Statement) finish(err error) error {
	st.rows.Close()
	st.rows = nil
	st.current = nil
	st.done = true
	if err != nil {
		return newError("step", err)
	}
	return nil
}

// Exec runs a mutating statement to completion in a single step and
// returns the number of rows it changed.
func (st *Statement) Exec(ctx context.Context) (int64, error) {
	if err := st.Reset(); err != nil {
		return 0, err
	}
	res, err := st.stmt.ExecContext(ctx, st.namedArgs()...)
	if err != nil {
		return 0, newError("exec", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, newError("exec", err)
	}
	return n, nil
}

// Read returns column col of the current row as the driver produced it.
func (st *Statement) Read(col int) (any, error) {
	if st.current == nil {
		return nil, newError("read", ErrNoRow)
	}
	if col < 0 || col >= len(st.current) {
		return nil, newError("read", fmt.Errorf("column %d out of range [0,%d)", col, len(st.current)))
	}
	return st.current[col], nil
}

// ReadFloat reads column col as a float64. NULL reads as 0.
func (st *Statement) ReadFloat(col int) (float64, error) {
	v, err := st.Read(col)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	default:
		return 0, newError("read", fmt.Errorf("column %d: cannot read %T as float", col, v))
	}
}

// ReadInt reads column col as an int64. NULL reads as 0.
func (st *Statement) ReadInt(col int) (int64, error) {
	v, err := st.Read(col)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return n, nil
	case float64:
		return int64(n), nil
	default:
		return 0, newError("read", fmt.Errorf("column %d: cannot read %T as integer", col, v))
	}
}

// ReadString reads column col as text. NULL reads as "".
func (st *Statement) ReadString(col int) (string, error) {
	v, err := st.Read(col)
	if err != nil {
		return "", err
	}
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	default:
		return "", newError("read", fmt.Errorf("column %d: cannot read %T as text", col, v))
	}
}

// Close releases the cursor and the prepared statement.
func (st *Statement) Close() error {
	if err := st.Reset(); err != nil {
		st.stmt.Close()
		return err
	}
	if err := st.stmt.Close(); err != nil {
		return newError("close", err)
	}
	return nil
}

func (st *Statement) namedArgs() []any {
	args := make([]any, 0, len(st.args))
	for name, v := range st.args {
		args = append(args, sql.Named(name, v))
	}
	return args
}
