package system

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlecs/internal/component"
	"github.com/roach88/sqlecs/internal/store"
	"github.com/roach88/sqlecs/internal/testutil"
)

// spawn builds an entity pinned to id with the given components.
func spawn(t *testing.T, st *store.Store, id int64, cs ...component.Component) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.InsertEntity(ctx, st.DB(), id))
	b := component.NewBuilder(st).SetEntity(id)
	for _, c := range cs {
		require.NoError(t, b.Add(c))
	}
	_, err := b.Finish(ctx)
	require.NoError(t, err)
}

func position(t *testing.T, st *store.Store, id int64) (float64, float64) {
	t.Helper()
	var x, y float64
	require.NoError(t, st.DB().QueryRow(`SELECT x, y FROM position WHERE id = ?`, id).Scan(&x, &y))
	return x, y
}

func velocity(t *testing.T, st *store.Store, id int64) (float64, float64) {
	t.Helper()
	var x, y float64
	require.NoError(t, st.DB().QueryRow(`SELECT x, y FROM velocity WHERE id = ?`, id).Scan(&x, &y))
	return x, y
}

func newWorld(t *testing.T) (*store.Store, *Movement, *Gravity) {
	t.Helper()
	ctx := context.Background()
	st := testutil.NewStore(t)

	m, err := NewMovement(ctx, st)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })

	g, err := NewGravity(ctx, st)
	require.NoError(t, err)
	t.Cleanup(func() { g.Close() })

	return st, m, g
}
