package scene

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlecs/internal/component"
	"github.com/roach88/sqlecs/internal/testutil"
)

func TestSeed_Demo(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewStore(t)

	ids, err := Seed(ctx, st, Demo(), nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)

	for table, want := range map[string]int{
		"entity":   3,
		"position": 3,
		"velocity": 2,
		"gravity":  2,
		"graphics": 3,
	} {
		n, err := st.CountRows(ctx, table)
		require.NoError(t, err)
		assert.Equal(t, want, n, table)
	}

	var color string
	var w, h float64
	require.NoError(t, st.DB().QueryRowContext(ctx,
		`SELECT width, height, color FROM graphics WHERE id = 1`).Scan(&w, &h, &color))
	assert.Equal(t, 128.0, w)
	assert.Equal(t, 8.0, h)
	assert.Equal(t, "green", color)
}

func TestSeed_PinnedID(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewStore(t)

	sc, err := Load("testdata/pinned.yaml")
	require.NoError(t, err)

	ids, err := Seed(ctx, st, sc, nil)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, int64(42), ids[0])
	assert.Equal(t, int64(43), ids[1], "next id follows the largest existing id")

	var x, y float64
	require.NoError(t, st.DB().QueryRowContext(ctx,
		`SELECT x, y FROM position WHERE id = 42`).Scan(&x, &y))
	assert.Equal(t, 10.0, x)
	assert.Equal(t, 20.0, y)

	var color string
	require.NoError(t, st.DB().QueryRowContext(ctx,
		`SELECT color FROM graphics WHERE id = 42`).Scan(&color))
	assert.Equal(t, "Red", color, "loaded colors are stored as written")
}

func TestSeed_StopsAtFailingEntity(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewStore(t)

	sc := &Scene{Entities: []Entity{
		{Label: "ok", Position: &Vec{}},
		{Label: "empty"},
	}}

	ids, err := Seed(ctx, st, sc, nil)
	require.Error(t, err)
	assert.True(t, component.IsInvalidEntity(err))
	assert.Contains(t, err.Error(), "seed entity empty")
	assert.Equal(t, []int64{1}, ids)
}
