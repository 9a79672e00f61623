package dna

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nucleus/internal/ir"
)

func TestLoad_File(t *testing.T) {
	d, err := Load(filepath.Join("testdata", "blog.cue"))
	require.NoError(t, err)

	assert.Equal(t, "blog", d.Name)
	assert.Equal(t, "0.1.0", d.Version, "version defaults from schema")
	assert.Equal(t, []string{"posts", "social"}, d.ZomeNames())

	post, ok := d.EntryType("post")
	require.True(t, ok)
	assert.Equal(t, SharingPublic, post.Sharing)
	assert.Equal(t, ir.DefinitionChainFull, post.ValidationPackage.Kind)
	assert.Equal(t, "size(entry.value) <= 280", post.Validate)
	assert.Equal(t, "post too long", post.RejectReason)

	draft, ok := d.EntryType("draft")
	require.True(t, ok)
	assert.Equal(t, SharingPrivate, draft.Sharing)
	assert.Equal(t, ir.DefinitionEntry, draft.ValidationPackage.Kind)

	comment, ok := d.EntryType("comment")
	require.True(t, ok)
	assert.Equal(t, ir.CustomDefinition("thread"), comment.ValidationPackage)

	z, ok := d.ZomeForEntryType(ir.EntryTypeLinkAdd)
	require.True(t, ok)
	assert.Equal(t, "social", z.Name)
}

func TestLoad_Directory(t *testing.T) {
	d, err := Load("testdata")
	require.NoError(t, err)
	assert.Equal(t, "blog", d.Name)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.cue"))
	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, ErrCodeNotFound, le.Code)
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		code string
	}{
		{"missing dna", `other: 1`, ErrCodeMissingDNA},
		{"empty name", `dna: { name: "", zomes: {} }`, ErrCodeInvalidDNA},
		{"bad sharing", `dna: { name: "x", zomes: z: entry_types: t: sharing: "secret" }`, ErrCodeInvalidDNA},
		{"bad package", `dna: { name: "x", zomes: z: entry_types: t: validation_package: "everything" }`, ErrCodeInvalidDNA},
		{"duplicate type", `dna: { name: "x", zomes: { a: entry_types: t: {}, b: entry_types: t: {} } }`, ErrCodeInvalidDNA},
		{"syntax", `dna: {`, ErrCodeBuildFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.src)
			var le *LoadError
			require.True(t, errors.As(err, &le), "got %v", err)
			assert.Equal(t, tc.code, le.Code)
		})
	}
}

func TestDNA_KnowsAndCanPublish(t *testing.T) {
	d, err := Load(filepath.Join("testdata", "blog.cue"))
	require.NoError(t, err)

	assert.True(t, d.Knows("post"))
	assert.True(t, d.Knows(ir.EntryTypeAgentID))
	assert.False(t, d.Knows("unknown"))

	assert.True(t, d.CanPublish("post"))
	assert.False(t, d.CanPublish("draft"))
	assert.False(t, d.CanPublish("unknown"))
	assert.False(t, d.CanPublish(ir.EntryTypeDna))
	assert.True(t, d.CanPublish(ir.EntryTypeAgentID))
	assert.True(t, d.CanPublish(ir.EntryTypeLinkAdd))
}

func TestDNA_AddressIsStable(t *testing.T) {
	src, err := os.ReadFile(filepath.Join("testdata", "blog.cue"))
	require.NoError(t, err)

	a, err := Parse(string(src))
	require.NoError(t, err)
	b, err := Load(filepath.Join("testdata", "blog.cue"))
	require.NoError(t, err)
	assert.Equal(t, a.Address(), b.Address())

	c, err := Parse(`dna: { name: "other", zomes: {} }`)
	require.NoError(t, err)
	assert.NotEqual(t, a.Address(), c.Address())

	entry, err := a.Entry()
	require.NoError(t, err)
	assert.Equal(t, ir.EntryTypeDna, entry.Type)
}
