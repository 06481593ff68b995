package component

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/roach88/sqlecs/internal/store"
	"github.com/roach88/sqlecs/internal/testutil"
)

func countAll(t *testing.T, st *store.Store) map[string]int {
	t.Helper()
	out := make(map[string]int)
	for _, table := range []string{"entity", "position", "velocity", "gravity", "graphics"} {
		n, err := st.CountRows(context.Background(), table)
		require.NoError(t, err)
		out[table] = n
	}
	return out
}

func TestBuilder_RejectsDuplicateComponent(t *testing.T) {
	st := testutil.NewStore(t)
	b := NewBuilder(st)

	require.NoError(t, b.Add(Position{X: 0, Y: 0}))
	err := b.Add(Position{X: 0, Y: 0})
	require.Error(t, err)

	assert.True(t, IsDuplicateComponent(err))
	var de *DuplicateComponentError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, KindPosition, de.Component)
	assert.Equal(t, "DuplicateComponent", de.Kind())
	assert.Contains(t, err.Error(), "DuplicateComponent(Position)")

	assert.Equal(t, 1, b.Pending())
	for table, n := range countAll(t, st) {
		assert.Zero(t, n, "no rows before Finish in %s", table)
	}
}

func TestBuilder_DifferentKindsAccepted(t *testing.T) {
	b := NewBuilder(testutil.NewStore(t))

	require.NoError(t, b.Add(Graphics{Width: 8, Height: 8}))
	require.NoError(t, b.Add(Position{}))
	require.NoError(t, b.Add(Velocity{}))
	require.NoError(t, b.Add(Gravity{Amount: 1}))
	assert.Equal(t, 4, b.Pending())
}

func TestBuilder_RejectsNonFinite(t *testing.T) {
	b := NewBuilder(testutil.NewStore(t))

	assert.Error(t, b.Add(Position{X: math.NaN()}))
	assert.Error(t, b.Add(Gravity{Amount: math.Inf(-1)}))
	assert.Zero(t, b.Pending())
}

func TestBuilder_RejectsNilComponent(t *testing.T) {
	b := NewBuilder(testutil.NewStore(t))

	assert.ErrorIs(t, b.Add(nil), ErrNilComponent)
	assert.Zero(t, b.Pending())

	require.NoError(t, b.Add(Position{}))
	assert.ErrorIs(t, b.Add(nil), ErrNilComponent)
	assert.Equal(t, 1, b.Pending())
}

func TestBuilder_FinishCreatesEntityAndRows(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewStore(t)
	b := NewBuilder(st)

	require.NoError(t, b.Add(Position{X: 100, Y: 100}))
	require.NoError(t, b.Add(Velocity{X: 0, Y: 0}))
	require.NoError(t, b.Add(Gravity{Amount: 100}))
	id, err := b.Finish(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	require.NoError(t, b.Add(Position{X: 1, Y: 2}))
	id2, err := b.Finish(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), id2)

	assert.Equal(t, map[string]int{
		"entity":   2,
		"position": 2,
		"velocity": 1,
		"gravity":  1,
		"graphics": 0,
	}, countAll(t, st))
	assert.Zero(t, b.Pending(), "builder is empty after Finish")
}

func TestBuilder_FinishWithoutComponents(t *testing.T) {
	st := testutil.NewStore(t)

	_, err := NewBuilder(st).Finish(context.Background())
	require.Error(t, err)
	assert.True(t, IsInvalidEntity(err))
	assert.Equal(t, 0, countAll(t, st)["entity"])
}

func TestBuilder_PinnedEntity(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewStore(t)
	require.NoError(t, store.InsertEntity(ctx, st.DB(), 2))

	b := NewBuilder(st).SetEntity(2)
	require.NoError(t, b.Add(Position{X: 100, Y: 100}))
	require.NoError(t, b.Add(Velocity{X: 50, Y: 25}))

	id, err := b.Finish(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)
	assert.Equal(t, 1, countAll(t, st)["entity"])
}

func TestBuilder_PinnedMissingEntity(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewStore(t)

	b := NewBuilder(st).SetEntity(42)
	require.NoError(t, b.Add(Position{}))

	_, err := b.Finish(ctx)
	require.Error(t, err)

	var ie *InvalidEntityError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, int64(42), ie.Entity)
	assert.Equal(t, "InvalidEntity: entity 42: entity row does not exist", err.Error())

	// no orphan rows
	assert.Equal(t, 0, countAll(t, st)["position"])
}

func TestBuilder_SetEntityNegativeUnpins(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewStore(t)

	b := NewBuilder(st).SetEntity(42).SetEntity(-1)
	require.NoError(t, b.Add(Position{}))

	id, err := b.Finish(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestBuilder_FinishIsAtomic(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewStore(t)

	// the second attach fails after the entity and position rows are written
	require.NoError(t, st.Execute(ctx, `DROP TABLE gravity`))

	b := NewBuilder(st)
	require.NoError(t, b.Add(Position{X: 1, Y: 1}))
	require.NoError(t, b.Add(Gravity{Amount: 10}))

	_, err := b.Finish(ctx)
	require.Error(t, err)
	assert.True(t, store.IsStoreError(err))

	n, err := st.CountRows(ctx, "entity")
	require.NoError(t, err)
	assert.Zero(t, n, "entity insert rolled back")
	n, err = st.CountRows(ctx, "position")
	require.NoError(t, err)
	assert.Zero(t, n, "position insert rolled back")
	assert.Equal(t, 2, b.Pending(), "failed Finish keeps pending components")
}

func TestBuilder_LogsEntityCreation(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	b := NewBuilder(testutil.NewStore(t), WithLogger(zap.New(core)))

	require.NoError(t, b.Add(Position{}))
	id, err := b.Finish(context.Background())
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "builder: creating entity", entries[0].Message)
	assert.Equal(t, "builder: created entity", entries[1].Message)
	assert.Equal(t, id, entries[1].ContextMap()["entity"])
}

func TestBuilder_Uniqueness(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewStore(t)
	b := NewBuilder(st)

	for i := 0; i < 5; i++ {
		for _, c := range []Component{Position{}, Velocity{}, Gravity{}, Graphics{Width: 1, Height: 1}} {
			require.NoError(t, b.Add(c))
		}
		_, err := b.Finish(ctx)
		require.NoError(t, err)
	}

	for _, k := range Kinds {
		var max int
		require.NoError(t, st.DB().QueryRow(
			`SELECT COALESCE(MAX(n), 0) FROM (SELECT COUNT(*) AS n FROM `+k.Table()+` GROUP BY id)`).Scan(&max))
		assert.Equal(t, 1, max, "at most one %s row per entity", k)
	}
}
