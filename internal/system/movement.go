package system

import (
	"context"

	"github.com/roach88/sqlecs/internal/store"
)

const movementSQL = `
	UPDATE position AS p
	SET x = p.x + (v.x * :delta),
	    y = p.y + (v.y * :delta)
	FROM velocity v WHERE p.id = v.id`

// Movement integrates velocity into position for every entity that has
// both components.
type Movement struct {
	stmt *store.Statement
}

// NewMovement prepares the movement update.
func NewMovement(ctx context.Context, st *store.Store) (*Movement, error) {
	stmt, err := st.Prepare(ctx, movementSQL)
	if err != nil {
		return nil, err
	}
	return &Movement{stmt: stmt}, nil
}

func (m *Movement) Name() string { return "movement" }

// Tick advances positions by velocity * delta.
func (m *Movement) Tick(ctx context.Context, delta float64) error {
	if err := m.stmt.Bind(":delta", delta); err != nil {
		return err
	}
	_, err := m.stmt.Exec(ctx)
	return err
}

func (m *Movement) Close() error {
	return m.stmt.Close()
}
