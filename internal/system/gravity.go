package system

import (
	"context"

	"github.com/roach88/sqlecs/internal/store"
)

// +y points down, matching raster coordinates, so a positive amount
// increases velocity.y.
const gravitySQL = `
	UPDATE velocity AS v
	SET y = v.y + (g.amount * :delta)
	FROM gravity g WHERE g.id = v.id`

// Gravity accelerates the velocity of every entity with a gravity component.
type Gravity struct {
	stmt *store.Statement
}

// NewGravity prepares the gravity update.
func NewGravity(ctx context.Context, st *store.Store) (*Gravity, error) {
	stmt, err := st.Prepare(ctx, gravitySQL)
	if err != nil {
		return nil, err
	}
	return &Gravity{stmt: stmt}, nil
}

func (g *Gravity) Name() string { return "gravity" }

func (g *Gravity) Tick(ctx context.Context, delta float64) error {
	if err := g.stmt.Bind(":delta", delta); err != nil {
		return err
	}
	_, err := g.stmt.Exec(ctx)
	return err
}

func (g *Gravity) Close() error {
	return g.stmt.Close()
}
