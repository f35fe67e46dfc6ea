package drop_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/remap/pkg/remap/drop"
)

// storeFactory creates a store instance for testing.
type storeFactory func(t *testing.T) drop.Store

// storeContractTest runs contract tests against any Store implementation.
func storeContractTest(t *testing.T, name string, factory storeFactory) {
	t.Run(name+"/Append_and_List", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
		err := store.Append(drop.Dropped{
			EventID:   "evt-1",
			Reason:    "division by zero: 10 / 0",
			Payload:   []byte(`{"count": 0}`),
			DroppedAt: ts,
		})
		require.NoError(t, err)

		drops, err := store.List(0)
		require.NoError(t, err)
		require.Len(t, drops, 1)

		assert.Equal(t, "evt-1", drops[0].EventID)
		assert.Equal(t, "division by zero: 10 / 0", drops[0].Reason)
		assert.Equal(t, []byte(`{"count": 0}`), drops[0].Payload)
		assert.True(t, drops[0].DroppedAt.Equal(ts))
	})

	t.Run(name+"/List_Empty", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		drops, err := store.List(0)
		require.NoError(t, err)
		assert.Empty(t, drops)

		n, err := store.Len()
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run(name+"/List_Ordered", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		for _, id := range []string{"evt-1", "evt-2", "evt-3"} {
			require.NoError(t, store.Append(drop.Dropped{EventID: id, Reason: "r"}))
		}

		drops, err := store.List(0)
		require.NoError(t, err)
		require.Len(t, drops, 3)
		assert.Equal(t, "evt-1", drops[0].EventID)
		assert.Equal(t, "evt-2", drops[1].EventID)
		assert.Equal(t, "evt-3", drops[2].EventID)

		n, err := store.Len()
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run(name+"/List_Limit", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		for _, id := range []string{"evt-1", "evt-2", "evt-3"} {
			require.NoError(t, store.Append(drop.Dropped{EventID: id, Reason: "r"}))
		}

		drops, err := store.List(2)
		require.NoError(t, err)
		require.Len(t, drops, 2)
		assert.Equal(t, "evt-1", drops[0].EventID)
		assert.Equal(t, "evt-2", drops[1].EventID)
	})

	t.Run(name+"/FillsDroppedAt", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		require.NoError(t, store.Append(drop.Dropped{EventID: "evt-1", Reason: "r"}))

		drops, err := store.List(0)
		require.NoError(t, err)
		require.Len(t, drops, 1)
		assert.False(t, drops[0].DroppedAt.IsZero())
	})

	t.Run(name+"/PayloadCopy", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		payload := []byte("original payload")
		require.NoError(t, store.Append(drop.Dropped{EventID: "evt-1", Reason: "r", Payload: payload}))

		// Modify original slice after append
		payload[0] = 'X'

		drops, err := store.List(0)
		require.NoError(t, err)
		require.Len(t, drops, 1)
		assert.Equal(t, []byte("original payload"), drops[0].Payload)
	})

	t.Run(name+"/Close_ThenError", func(t *testing.T) {
		store := factory(t)
		require.NoError(t, store.Close())

		err := store.Append(drop.Dropped{EventID: "evt-1", Reason: "r"})
		assert.ErrorIs(t, err, drop.ErrStoreClosed)

		_, err = store.List(0)
		assert.ErrorIs(t, err, drop.ErrStoreClosed)

		_, err = store.Len()
		assert.ErrorIs(t, err, drop.ErrStoreClosed)
	})
}

// TestMemoryStore runs contract tests against MemoryStore.
func TestMemoryStore(t *testing.T) {
	factory := func(t *testing.T) drop.Store {
		return drop.NewMemoryStore(0)
	}
	storeContractTest(t, "MemoryStore", factory)
}

// TestSQLiteStore runs contract tests against SQLiteStore.
func TestSQLiteStore(t *testing.T) {
	factory := func(t *testing.T) drop.Store {
		store, err := drop.NewSQLiteStore(":memory:")
		require.NoError(t, err)
		return store
	}
	storeContractTest(t, "SQLiteStore", factory)
}
