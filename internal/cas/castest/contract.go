// Package castest provides the behavioral contract every cas.Storage must meet.
package castest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nucleus/internal/cas"
	"github.com/roach88/nucleus/internal/ir"
)

// RunStorageContract runs the shared CAS test suite against a fresh store.
func RunStorageContract(t *testing.T, newStorage func(t *testing.T) cas.Storage) {
	t.Helper()
	ctx := context.Background()

	t.Run("store returns content address", func(t *testing.T) {
		s := newStorage(t)
		content := []byte(`{"hello":"world"}`)

		addr, err := s.Store(ctx, content)
		require.NoError(t, err)
		assert.Equal(t, ir.ContentAddress(content), addr)

		got, found, err := s.Fetch(ctx, addr)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, content, got)
	})

	t.Run("unknown address", func(t *testing.T) {
		s := newStorage(t)
		_, found, err := s.Fetch(ctx, ir.ContentAddress([]byte("missing")))
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("store is idempotent", func(t *testing.T) {
		s := newStorage(t)
		a1, err := s.Store(ctx, []byte("x"))
		require.NoError(t, err)
		a2, err := s.Store(ctx, []byte("x"))
		require.NoError(t, err)
		assert.Equal(t, a1, a2)
	})

	t.Run("typed helpers", func(t *testing.T) {
		s := newStorage(t)
		entry := ir.NewLinkAddEntry("base", "target", "likes")
		header := ir.ChainHeader{
			EntryType:    entry.Type,
			EntryAddress: entry.Address(),
			Sources:      []string{"alice"},
			Seq:          1,
		}

		entryAddr, err := cas.StoreEntry(ctx, s, entry)
		require.NoError(t, err)
		assert.Equal(t, entry.Address(), entryAddr)

		headerAddr, err := cas.StoreHeader(ctx, s, header)
		require.NoError(t, err)
		assert.Equal(t, header.Address(), headerAddr)

		gotEntry, found, err := cas.FetchEntry(ctx, s, entryAddr)
		require.NoError(t, err)
		require.True(t, found)
		assert.True(t, entry.Equal(gotEntry))

		gotHeader, found, err := cas.FetchHeader(ctx, s, headerAddr)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, header, gotHeader)

		statusAddr, err := cas.StoreStatus(ctx, s, ir.CrudLive)
		require.NoError(t, err)
		assert.Equal(t, ir.CrudLive.Address(), statusAddr)
		status, found, err := cas.FetchStatus(ctx, s, statusAddr)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, ir.CrudLive, status)
	})
}
