package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nucleus/internal/cas"
	"github.com/roach88/nucleus/internal/cas/castest"
	"github.com/roach88/nucleus/internal/eav"
	"github.com/roach88/nucleus/internal/eav/eavtest"
	"github.com/roach88/nucleus/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "node.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestContentStorage_Contract(t *testing.T) {
	castest.RunStorageContract(t, func(t *testing.T) cas.Storage {
		return openStore(t).Content()
	})
}

func TestEAVStorage_Contract(t *testing.T) {
	eavtest.RunStorageContract(t, func(t *testing.T) eav.Storage {
		return openStore(t).EAV()
	})
}

func TestContentStorage_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "node.db")

	s, err := store.Open(path)
	require.NoError(t, err)
	addr, err := s.Content().Store(ctx, []byte("persisted"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = store.Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, found, err := s.Content().Fetch(ctx, addr)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("persisted"), got)

	n, err := s.Content().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
