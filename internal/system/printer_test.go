package system

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlecs/internal/component"
)

func TestPrinter_CountsDown(t *testing.T) {
	ctx := context.Background()
	st, _, _ := newWorld(t)
	spawn(t, st, 2, component.Position{X: 100, Y: 100}, component.Velocity{X: 50, Y: 25})

	var out bytes.Buffer
	p, err := NewPrinter(ctx, st, 1.0, &out)
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Tick(ctx, 0.4))
	require.NoError(t, p.Tick(ctx, 0.4))
	assert.Empty(t, out.String())
	assert.InDelta(t, 0.2, p.Remaining(), 1e-9)

	require.NoError(t, p.Tick(ctx, 0.4))
	assert.Equal(t, "2 { pos: (100.0, 100.0), vel: (50.0, 25.0) }\n", out.String())
	assert.Equal(t, 1.0, p.Remaining(), "countdown restarts after a dump")
}

func TestPrinter_OnlyMovingEntities(t *testing.T) {
	ctx := context.Background()
	st, m, _ := newWorld(t)
	spawn(t, st, 1, component.Position{X: 200, Y: 400}, component.Graphics{Width: 128, Height: 8})
	spawn(t, st, 2, component.Position{X: 0, Y: 0}, component.Velocity{X: 1.5, Y: -2})
	spawn(t, st, 3, component.Position{X: 10, Y: 10}, component.Velocity{X: 0, Y: 0})

	var out bytes.Buffer
	p, err := NewPrinter(ctx, st, 0, &out)
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, NewRunner(m, p).Tick(ctx, 1.0))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{
		"2 { pos: (1.5, -2.0), vel: (1.5, -2.0) }",
		"3 { pos: (10.0, 10.0), vel: (0.0, 0.0) }",
	}, lines)
}

func TestPrinter_SetInterval(t *testing.T) {
	ctx := context.Background()
	st, _, _ := newWorld(t)

	var out bytes.Buffer
	p, err := NewPrinter(ctx, st, 10, &out)
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Tick(ctx, 3))
	p.SetInterval(0.5)
	assert.Equal(t, 0.5, p.Remaining())

	require.NoError(t, p.Tick(ctx, 2))
	assert.Equal(t, 0.5, p.Remaining(), "overshoot clamps to zero and dumps")
}

func TestPrinter_DoesNotHoldConnection(t *testing.T) {
	ctx := context.Background()
	st, _, _ := newWorld(t)
	spawn(t, st, 1, component.Position{}, component.Velocity{})

	var out bytes.Buffer
	p, err := NewPrinter(ctx, st, 0, &out)
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Tick(ctx, 0))

	// would block forever on the single connection if the cursor were open
	n, err := st.CountRows(ctx, "velocity")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{100, "100.0"},
		{0, "0.0"},
		{math.Copysign(0, -1), "-0.0"},
		{1.5, "1.5"},
		{-2, "-2.0"},
		{0.1 + 0.2, "0.30000000000000004"},
		{1e20, "1e20"},
		{2.5e-7, "2.5e-7"},
		{math.Inf(1), "inf"},
		{math.Inf(-1), "-inf"},
		{math.NaN(), "NaN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatFloat(tt.in))
	}
}
