package eav_test

import (
	"context"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/roach88/nucleus/internal/eav"
	"github.com/roach88/nucleus/internal/ir"
)

// TestAttributeValidity verifies that an attribute is accepted exactly when
// it is non-empty and contains none of the forbidden characters.
func TestAttributeValidity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	const alphabet = `abz_- /:*?<>"'\|+`
	attr := gen.SliceOf(gen.IntRange(0, len(alphabet)-1)).
		Map(func(idx []int) string {
			var b strings.Builder
			for _, i := range idx {
				b.WriteByte(alphabet[i])
			}
			return b.String()
		})

	properties.Property("valid iff no forbidden character", prop.ForAll(
		func(a string) bool {
			want := a != "" && !strings.ContainsAny(a, `/:*?<>"'\|+`)
			return (eav.ValidateAttribute(a) == nil) == want
		},
		attr,
	))

	properties.TestingRun(t)
}

// TestFetchMatchesModel verifies that Fetch returns exactly the stored
// triples satisfying every constraint of the query.
func TestFetchMatchesModel(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	small := gen.IntRange(0, 2).Map(func(i int) string { return []string{"x", "y", "z"}[i] })

	properties.Property("fetch equals filtered model", prop.ForAll(
		func(es, as, vs []string, qe, qa, qv string, mask uint8) bool {
			ctx := context.Background()
			s := eav.NewMemoryStorage()
			model := eav.NewSet()

			n := min(len(es), len(as), len(vs))
			for i := 0; i < n; i++ {
				tr, err := eav.New(ir.Address(es[i]), as[i], ir.Address(vs[i]))
				if err != nil {
					return false
				}
				if err := s.Add(ctx, tr); err != nil {
					return false
				}
				model.Add(tr)
			}

			q := eav.Query{}
			if mask&1 != 0 {
				q = q.WithEntity(ir.Address(qe))
			}
			if mask&2 != 0 {
				q = q.WithAttribute(qa)
			}
			if mask&4 != 0 {
				q = q.WithValue(ir.Address(qv))
			}

			got, err := s.Fetch(ctx, q)
			if err != nil {
				return false
			}
			want := eav.NewSet()
			for tr := range model {
				if q.Matches(tr) {
					want.Add(tr)
				}
			}
			if len(got) != len(want) {
				return false
			}
			for tr := range want {
				if !got.Contains(tr) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(small), gen.SliceOf(small), gen.SliceOf(small),
		small, small, small,
		gen.UInt8Range(0, 7),
	))

	properties.TestingRun(t)
}
