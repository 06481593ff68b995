package component

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlecs/internal/store"
	"github.com/roach88/sqlecs/internal/testutil"
)

func TestKind_StringAndTable(t *testing.T) {
	tests := []struct {
		kind  Kind
		name  string
		table string
	}{
		{KindPosition, "Position", "position"},
		{KindVelocity, "Velocity", "velocity"},
		{KindGravity, "Gravity", "gravity"},
		{KindGraphics, "Graphics", "graphics"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.name, tt.kind.String())
		assert.Equal(t, tt.table, tt.kind.Table())
	}
	assert.Equal(t, "Kind(9)", Kind(9).String())
	assert.Empty(t, Kind(9).Table())
	assert.Len(t, Kinds, 4)
}

func TestComponent_Kind(t *testing.T) {
	assert.Equal(t, KindPosition, Position{}.Kind())
	assert.Equal(t, KindVelocity, Velocity{}.Kind())
	assert.Equal(t, KindGravity, Gravity{}.Kind())
	assert.Equal(t, KindGraphics, Graphics{}.Kind())
}

func TestAttach_WritesRow(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewStore(t)

	id, err := store.NewEntity(ctx, st.DB())
	require.NoError(t, err)

	require.NoError(t, Attach(ctx, st.DB(), id, Velocity{X: 50, Y: 25}))
	require.NoError(t, Attach(ctx, st.DB(), id, Graphics{Width: 32, Height: 16, Color: "blue"}))

	var vx, vy float64
	require.NoError(t, st.DB().QueryRow(`SELECT x, y FROM velocity WHERE id = ?`, id).Scan(&vx, &vy))
	assert.Equal(t, 50.0, vx)
	assert.Equal(t, 25.0, vy)

	var w, h float64
	var color string
	require.NoError(t, st.DB().QueryRow(`SELECT width, height, color FROM graphics WHERE id = ?`, id).Scan(&w, &h, &color))
	assert.Equal(t, []any{32.0, 16.0, "blue"}, []any{w, h, color})
}

func TestAttach_MissingEntityIsStoreError(t *testing.T) {
	st := testutil.NewStore(t)

	err := Attach(context.Background(), st.DB(), 99, Position{})
	require.Error(t, err)
	assert.True(t, store.IsStoreError(err))
	assert.Contains(t, err.Error(), "attach Position to entity 99")
}
