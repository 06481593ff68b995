package harness

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/roach88/sqlecs/internal/store"
)

// validIdentifier matches valid SQL identifiers (table/column names).
// Only allows alphanumeric and underscore, must start with letter or underscore.
// This prevents SQL injection via identifier interpolation.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// floatTolerance absorbs accumulated rounding in integrated positions.
const floatTolerance = 1e-9

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []FrameTrace // Frames for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nLast frame:\n")
		writeFrame(&buf, e.Trace[len(e.Trace)-1])
	}

	return buf.String()
}

// assertFinalState checks that the selected row of a component table holds
// the expected values.
//
// Security: Table and column names are validated against a whitelist pattern
// to prevent SQL injection via identifier interpolation.
func assertFinalState(ctx context.Context, st *store.Store, result *Result, assertion Assertion) error {
	if assertion.Table == "" {
		return fmt.Errorf("final_state assertion requires table name")
	}

	if !validIdentifier.MatchString(assertion.Table) {
		return fmt.Errorf("invalid table name %q: must match pattern %s", assertion.Table, validIdentifier.String())
	}

	where := make(map[string]interface{}, len(assertion.Where)+1)
	for k, v := range assertion.Where {
		where[k] = v
	}
	if assertion.Entity != "" {
		id, ok := result.Entities[assertion.Entity]
		if !ok {
			return fmt.Errorf("final_state: unknown entity label %q", assertion.Entity)
		}
		where["id"] = id
	}

	whereSQL, whereArgs, err := buildWhereClause(where)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("SELECT * FROM %s", assertion.Table)
	if whereSQL != "" {
		query += " WHERE " + whereSQL
	}

	rows, err := st.Query(ctx, query, whereArgs...)
	if err != nil {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("query table %s", assertion.Table),
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("get columns: %w", err)
	}

	if !rows.Next() {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("row in %s where %s", assertion.Table, formatWhereClause(where)),
			Actual:   "row not found",
			Trace:    result.Trace,
		}
	}

	values := make([]interface{}, len(columns))
	valuePtrs := make([]interface{}, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}
	if err := rows.Scan(valuePtrs...); err != nil {
		return fmt.Errorf("scan row: %w", err)
	}

	// Component uniqueness means this only fires on a broken store or a
	// where clause that is too loose.
	if rows.Next() {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("exactly one row in %s where %s", assertion.Table, formatWhereClause(where)),
			Actual:   "multiple rows matched (assertion is ambiguous)",
		}
	}

	actualRow := make(map[string]interface{})
	for i, col := range columns {
		actualRow[col] = values[i]
	}

	keys := make([]string, 0, len(assertion.Expect))
	for k := range assertion.Expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		expectedValue := assertion.Expect[key]
		actualValue, exists := actualRow[key]
		if !exists {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q to exist", key),
				Actual:   fmt.Sprintf("field %q not present in result columns: %v", key, columns),
			}
		}

		if !stateValuesEqual(expectedValue, actualValue) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("%s.%s = %v where %s", assertion.Table, key, expectedValue, formatWhereClause(where)),
				Actual:   fmt.Sprintf("%s.%s = %v", assertion.Table, key, actualValue),
				Trace:    result.Trace,
			}
		}
	}

	return nil
}

// assertRowCount checks the number of rows in a table.
func assertRowCount(ctx context.Context, st *store.Store, assertion Assertion) error {
	n, err := st.CountRows(ctx, assertion.Table)
	if err != nil {
		return err
	}
	if n != *assertion.Count {
		return &AssertionError{
			Type:     AssertRowCount,
			Expected: fmt.Sprintf("%d rows in %s", *assertion.Count, assertion.Table),
			Actual:   fmt.Sprintf("%d rows", n),
		}
	}
	return nil
}

// assertCollisionCount checks the pairs found by the last collision tick.
func assertCollisionCount(result *Result, assertion Assertion) error {
	if !result.CollisionRan {
		return &AssertionError{
			Type:     AssertCollisionCount,
			Expected: fmt.Sprintf("%d collisions", *assertion.Count),
			Actual:   "collision system never ran",
		}
	}
	if len(result.LastCollisions) != *assertion.Count {
		pairs := make([]string, 0, len(result.LastCollisions))
		for _, p := range result.LastCollisions {
			pairs = append(pairs, fmt.Sprintf("(%d,%d)", p.A.ID, p.B.ID))
		}
		return &AssertionError{
			Type:     AssertCollisionCount,
			Expected: fmt.Sprintf("%d collisions", *assertion.Count),
			Actual:   fmt.Sprintf("%d collisions %v", len(result.LastCollisions), pairs),
			Trace:    result.Trace,
		}
	}
	return nil
}

// buildWhereClause constructs parameterized WHERE clause from where.
// Returns SQL fragment, arguments slice, and error. Keys are sorted for determinism.
//
// Security: Column names are validated against a whitelist pattern to prevent
// SQL injection via identifier interpolation.
func buildWhereClause(where map[string]interface{}) (string, []interface{}, error) {
	if len(where) == 0 {
		return "", nil, nil
	}

	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]string, 0, len(keys))
	args := make([]interface{}, 0, len(keys))

	for _, key := range keys {
		if !validIdentifier.MatchString(key) {
			return "", nil, fmt.Errorf("invalid column name %q in where clause: must match pattern %s", key, validIdentifier.String())
		}
		clauses = append(clauses, fmt.Sprintf("%s = ?", key))
		args = append(args, toSQLValue(where[key]))
	}

	return strings.Join(clauses, " AND "), args, nil
}

// toSQLValue converts a YAML scalar to a SQL-compatible value.
func toSQLValue(v interface{}) interface{} {
	switch val := v.(type) {
	case int:
		return int64(val)
	case string, int64, float64, bool:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

// formatWhereClause creates a human-readable description of WHERE conditions.
func formatWhereClause(where map[string]interface{}) string {
	if len(where) == 0 {
		return "(no conditions)"
	}

	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, where[k]))
	}
	return strings.Join(parts, " AND ")
}

// stateValuesEqual compares expected and actual values from component tables.
// Numbers compare by value within floatTolerance regardless of whether YAML
// produced an int or SQLite produced a REAL.
func stateValuesEqual(expected, actual interface{}) bool {
	if expected == nil && actual == nil {
		return true
	}
	if expected == nil || actual == nil {
		return false
	}

	if e, ok := toFloat(expected); ok {
		a, ok := toFloat(actual)
		return ok && math.Abs(e-a) <= floatTolerance
	}

	switch exp := expected.(type) {
	case string:
		switch act := actual.(type) {
		case string:
			return exp == act
		case []byte:
			return exp == string(act)
		}
		return false
	case bool:
		if actualBool, ok := actual.(bool); ok {
			return exp == actualBool
		}
		if actualInt, ok := actual.(int64); ok {
			return exp == (actualInt != 0)
		}
		return false
	}

	return reflect.DeepEqual(expected, actual)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides database access for final_state and row_count.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertFinalState:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: final_state requires database context", i)
			} else {
				err = assertFinalState(actx.Ctx, actx.Store, result, assertion)
			}
		case AssertRowCount:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: row_count requires database context", i)
			} else {
				err = assertRowCount(actx.Ctx, actx.Store, assertion)
			}
		case AssertCollisionCount:
			err = assertCollisionCount(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
