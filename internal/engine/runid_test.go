package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7Generator_ValidFormat(t *testing.T) {
	id := UUIDv7Generator{}.Generate()

	assert.Len(t, id, 36)
	assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`, id)

	parsed, err := uuid.Parse(id)
	require.NoError(t, err, "run id should be a valid UUID")
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestUUIDv7Generator_Uniqueness(t *testing.T) {
	gen := UUIDv7Generator{}
	const iterations = 1000

	ids := make(map[string]bool, iterations)
	for i := 0; i < iterations; i++ {
		id := gen.Generate()
		require.False(t, ids[id], "run id %s generated twice", id)
		ids[id] = true
	}
}

func TestUUIDv7Generator_Concurrent(t *testing.T) {
	gen := UUIDv7Generator{}
	const goroutines = 100

	ids := make(chan string, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- gen.Generate()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate run id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, goroutines)
}

func TestFixedGenerator_Sequential(t *testing.T) {
	gen := NewFixedGenerator("run-1", "run-2", "run-3")

	assert.Equal(t, "run-1", gen.Generate())
	assert.Equal(t, "run-2", gen.Generate())
	assert.Equal(t, "run-3", gen.Generate())
}

func TestFixedGenerator_PanicsWhenExhausted(t *testing.T) {
	gen := NewFixedGenerator("run-1")
	assert.Equal(t, "run-1", gen.Generate())

	assert.Panics(t, func() {
		gen.Generate()
	}, "should panic when all ids exhausted")
}

func TestFixedGenerator_EmptyIDs(t *testing.T) {
	gen := NewFixedGenerator()
	assert.Panics(t, func() {
		gen.Generate()
	})
}

func TestEngine_Run_UsesRunIDGenerator(t *testing.T) {
	e := New(&recordingTicker{}, nil,
		WithRunIDGenerator(NewFixedGenerator("run-a", "run-b")),
		WithMaxFrames(1),
		WithClock(newTestClock()),
	)

	first, err := e.Run(context.Background())
	require.NoError(t, err)
	second, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "run-a", first.RunID)
	assert.Equal(t, "run-b", second.RunID)
}
