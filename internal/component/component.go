// Package component defines the closed set of component kinds and the
// Builder that attaches them to entities.
//
// Adding a kind is a coordinated change: the schema migration in
// internal/store, the Kind enum and its struct here, Attach, and every
// system that joins against the new table.
package component

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/sqlecs/internal/store"
)

// Kind identifies a component variant.
type Kind int

const (
	KindPosition Kind = iota
	KindVelocity
	KindGravity
	KindGraphics
)

// Kinds lists every component kind in table order.
var Kinds = []Kind{KindPosition, KindVelocity, KindGravity, KindGraphics}

func (k Kind) String() string {
	switch k {
	case KindPosition:
		return "Position"
	case KindVelocity:
		return "Velocity"
	case KindGravity:
		return "Gravity"
	case KindGraphics:
		return "Graphics"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Table returns the store table holding components of this kind.
func (k Kind) Table() string {
	switch k {
	case KindPosition:
		return "position"
	case KindVelocity:
		return "velocity"
	case KindGravity:
		return "gravity"
	case KindGraphics:
		return "graphics"
	default:
		return ""
	}
}

// Component is one facet of an entity's state. The set of implementations
// is closed: only the four types in this package satisfy it.
type Component interface {
	Kind() Kind
	component()
}

// Position is the world-space center of an entity.
type Position struct {
	X, Y float64
}

// Velocity is measured in world units per second.
type Velocity struct {
	X, Y float64
}

// Gravity is a downward acceleration in units/sec². +y points down.
type Gravity struct {
	Amount float64
}

// Graphics is the AABB extent and named fill color of a drawable entity.
type Graphics struct {
	Width, Height float64
	Color         string
}

func (Position) Kind() Kind { return KindPosition }
func (Velocity) Kind() Kind { return KindVelocity }
func (Gravity) Kind() Kind  { return KindGravity }
func (Graphics) Kind() Kind { return KindGraphics }

func (Position) component() {}
func (Velocity) component() {}
func (Gravity) component()  {}
func (Graphics) component() {}

// Attach inserts the row for c into the table of its kind.
//
// Attach does not detect re-attachment; Builder is responsible for
// uniqueness.
func Attach(ctx context.Context, q store.Querier, entity int64, c Component) error {
	var (
		query string
		args  []any
	)

	switch c := c.(type) {
	case Position:
		query = `INSERT INTO position (id, x, y) VALUES (:id, :x, :y)`
		args = []any{sql.Named("id", entity), sql.Named("x", c.X), sql.Named("y", c.Y)}
	case Velocity:
		query = `INSERT INTO velocity (id, x, y) VALUES (:id, :x, :y)`
		args = []any{sql.Named("id", entity), sql.Named("x", c.X), sql.Named("y", c.Y)}
	case Gravity:
		query = `INSERT INTO gravity (id, amount) VALUES (:id, :amount)`
		args = []any{sql.Named("id", entity), sql.Named("amount", c.Amount)}
	case Graphics:
		query = `INSERT INTO graphics (id, width, height, color) VALUES (:id, :width, :height, :color)`
		args = []any{sql.Named("id", entity), sql.Named("width", c.Width), sql.Named("height", c.Height), sql.Named("color", c.Color)}
	default:
		return fmt.Errorf("attach: unknown component %T", c)
	}

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return &store.Error{Op: fmt.Sprintf("attach %s to entity %d", c.Kind(), entity), Err: err}
	}
	return nil
}
