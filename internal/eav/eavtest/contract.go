// Package eavtest provides the behavioral contract every eav.Storage must meet.
package eavtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nucleus/internal/eav"
	"github.com/roach88/nucleus/internal/ir"
)

// RunStorageContract runs the shared EAV test suite. newStorage must return
// an empty store each time it is called.
func RunStorageContract(t *testing.T, newStorage func(t *testing.T) eav.Storage) {
	t.Helper()
	ctx := context.Background()

	triple := func(t *testing.T, e, a, v string) eav.EntityAttributeValue {
		t.Helper()
		tr, err := eav.New(ir.Address(e), a, ir.Address(v))
		require.NoError(t, err)
		return tr
	}

	t.Run("empty store", func(t *testing.T) {
		s := newStorage(t)
		got, err := s.Fetch(ctx, eav.Query{})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("add then fetch", func(t *testing.T) {
		s := newStorage(t)
		tr := triple(t, "e1", "name", "v1")
		require.NoError(t, s.Add(ctx, tr))

		got, err := s.Fetch(ctx, eav.Query{})
		require.NoError(t, err)
		assert.Equal(t, eav.NewSet(tr), got)
	})

	t.Run("set semantics", func(t *testing.T) {
		s := newStorage(t)
		tr := triple(t, "e1", "name", "v1")
		require.NoError(t, s.Add(ctx, tr))
		require.NoError(t, s.Add(ctx, tr))

		got, err := s.Fetch(ctx, eav.Query{})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("fetch by constraint", func(t *testing.T) {
		s := newStorage(t)
		a := triple(t, "e1", "likes", "v1")
		b := triple(t, "e1", "owns", "v2")
		c := triple(t, "e2", "likes", "v2")
		for _, tr := range []eav.EntityAttributeValue{a, b, c} {
			require.NoError(t, s.Add(ctx, tr))
		}

		cases := []struct {
			name  string
			query eav.Query
			want  eav.Set
		}{
			{"entity", eav.Query{}.WithEntity("e1"), eav.NewSet(a, b)},
			{"attribute", eav.Query{}.WithAttribute("likes"), eav.NewSet(a, c)},
			{"value", eav.Query{}.WithValue("v2"), eav.NewSet(b, c)},
			{"entity and attribute", eav.Query{}.WithEntity("e1").WithAttribute("likes"), eav.NewSet(a)},
			{"all three", eav.Query{}.WithEntity("e2").WithAttribute("likes").WithValue("v2"), eav.NewSet(c)},
			{"no match", eav.Query{}.WithEntity("e2").WithAttribute("owns"), eav.NewSet()},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				got, err := s.Fetch(ctx, tc.query)
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
			})
		}
	})

	t.Run("rejects invalid attribute", func(t *testing.T) {
		s := newStorage(t)
		err := s.Add(ctx, eav.EntityAttributeValue{Entity: "e", Attribute: "a/b", Value: "v"})
		require.Error(t, err)
		assert.Equal(t, ir.KindGeneric, ir.KindOf(err))

		err = s.Add(ctx, eav.EntityAttributeValue{})
		require.Error(t, err)

		got, err := s.Fetch(ctx, eav.Query{})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("clone shares data", func(t *testing.T) {
		s := newStorage(t)
		clone := s.Clone()

		a := triple(t, "e1", "name", "v1")
		b := triple(t, "e2", "name", "v2")
		require.NoError(t, s.Add(ctx, a))
		require.NoError(t, clone.Add(ctx, b))

		for _, handle := range []eav.Storage{s, clone} {
			got, err := handle.Fetch(ctx, eav.Query{})
			require.NoError(t, err)
			assert.Equal(t, eav.NewSet(a, b), got)
		}
	})
}
