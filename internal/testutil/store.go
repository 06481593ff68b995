package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlecs/internal/store"
)

// NewStore opens an in-memory store that is closed when the test ends.
func NewStore(t testing.TB) *store.Store {
	t.Helper()
	st, err := store.Open(store.MemoryPath)
	require.NoError(t, err, "open in-memory store")
	t.Cleanup(func() { st.Close() })
	return st
}
