package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/nucleus/internal/dna"
)

// TestDNA covers every validation package kind, both sharing modes and a
// rule on a system entry type.
const TestDNA = `
dna: {
	name: "testdna"
	zomes: {
		blog: entry_types: {
			post: {
				validation_package: "chain_full"
				validate:           "entry.value != \"\""
				reject_reason:      "post must not be empty"
			}
			comment: validation_package: "chain_entries"
			audit: validation_package: "chain_headers"
			secret: sharing: "private"
			thread: validation_package: custom: "thread-context"
		}
		links: entry_types: "%link_add": {
			validate:      "entry.link.tag != \"forbidden\""
			reject_reason: "tag is forbidden"
		}
	}
}
`

// DNA parses TestDNA.
func DNA(t testing.TB) *dna.DNA {
	t.Helper()
	d, err := dna.Parse(TestDNA)
	require.NoError(t, err)
	return d
}
