package system

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlecs/internal/component"
)

func TestGravity_Accumulates(t *testing.T) {
	st, _, g := newWorld(t)
	spawn(t, st, 2, component.Velocity{X: 0, Y: 0}, component.Gravity{Amount: 25})
	spawn(t, st, 3, component.Velocity{X: 0, Y: 0}, component.Gravity{Amount: 0})

	require.NoError(t, g.Tick(context.Background(), 1.0))

	vx, vy := velocity(t, st, 2)
	assert.Equal(t, 0.0, vx)
	assert.Equal(t, 25.0, vy)

	vx, vy = velocity(t, st, 3)
	assert.Equal(t, 0.0, vx)
	assert.Equal(t, 0.0, vy)
}

func TestGravity_Monotonic(t *testing.T) {
	st, _, g := newWorld(t)
	spawn(t, st, 1, component.Velocity{X: 3, Y: -10}, component.Gravity{Amount: 9.8})

	_, prev := velocity(t, st, 1)
	for _, d := range []float64{0.016, 0, 0.5, 0.001, 1} {
		require.NoError(t, g.Tick(context.Background(), d))
		vx, vy := velocity(t, st, 1)
		assert.Equal(t, 3.0, vx, "horizontal velocity untouched")
		if d > 0 {
			assert.Greater(t, vy, prev)
		} else {
			assert.Equal(t, prev, vy)
		}
		prev = vy
	}
}

func TestGravity_RequiresVelocity(t *testing.T) {
	st, _, g := newWorld(t)
	spawn(t, st, 1, component.Position{}, component.Gravity{Amount: 100})

	require.NoError(t, g.Tick(context.Background(), 1))

	n, err := st.CountRows(context.Background(), "velocity")
	require.NoError(t, err)
	assert.Zero(t, n, "gravity never creates velocity rows")
}

func TestMovementThenGravity_OneFrameLag(t *testing.T) {
	st, m, g := newWorld(t)
	spawn(t, st, 1,
		component.Position{X: 100, Y: 100},
		component.Velocity{X: 0, Y: 0},
		component.Gravity{Amount: 25},
	)
	runner := NewRunner(m, g)

	want := []struct{ y, vy float64 }{
		{100, 25},
		{125, 50},
		{175, 75},
	}
	for frame, w := range want {
		require.NoError(t, runner.Tick(context.Background(), 1.0))

		x, y := position(t, st, 1)
		vx, vy := velocity(t, st, 1)
		assert.Equal(t, 100.0, x, "frame %d", frame+1)
		assert.Equal(t, w.y, y, "frame %d", frame+1)
		assert.Equal(t, 0.0, vx, "frame %d", frame+1)
		assert.Equal(t, w.vy, vy, "frame %d", frame+1)
	}
}
