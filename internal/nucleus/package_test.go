package nucleus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nucleus/internal/action"
	"github.com/roach88/nucleus/internal/agent"
	"github.com/roach88/nucleus/internal/cas"
	"github.com/roach88/nucleus/internal/engine"
	"github.com/roach88/nucleus/internal/ir"
	"github.com/roach88/nucleus/internal/runtime"
	"github.com/roach88/nucleus/internal/state"
	"github.com/roach88/nucleus/internal/testutil"
)

// seedChain commits genesis, a post, a private secret and a comment.
func seedChain(t *testing.T, rc *runtime.Context) []ir.ChainHeader {
	t.Helper()
	ctx := testutil.Context(t)
	require.NoError(t, agent.Genesis(ctx, rc))
	for _, e := range []ir.Entry{
		ir.NewEntry("post", "first"),
		ir.NewEntry("secret", "hidden"),
		ir.NewEntry("comment", "nice"),
	} {
		_, err := agent.Append(ctx, rc, e)
		require.NoError(t, err)
	}
	headers, err := agent.Headers(ctx, rc)
	require.NoError(t, err)
	require.Len(t, headers, 5)
	return headers
}

func TestBuild_UnknownEntryType(t *testing.T) {
	rc := testutil.NewContext(t, "alice")
	seq := rc.State().Seq()

	fut := BuildValidationPackage(testutil.Context(t), rc, ir.NewEntry("bogus", "x"))
	p := fut.Poll()
	require.False(t, p.IsPending())
	_, err := p.Result()
	assert.True(t, ir.IsValidationFailed(err))
	assert.Equal(t, "Unknown entry type: 'bogus'", ir.ReasonOf(err))
	assert.Equal(t, seq, rc.State().Seq(), "nothing dispatched")
}

func TestBuild_ChainFullFiltersUnpublishable(t *testing.T) {
	rc := testutil.NewContext(t, "alice")
	headers := seedChain(t, rc)
	ctx := testutil.Context(t)

	entry := ir.NewEntry("post", "second")
	pkg, err := BuildValidationPackage(ctx, rc, entry).Await(ctx)
	require.NoError(t, err)

	require.NotNil(t, pkg.ChainHeader)
	assert.Equal(t, agent.NewChainHeader(rc.State().Agent(), entry), *pkg.ChainHeader)
	assert.Equal(t, int64(6), pkg.ChainHeader.Seq)

	// comment, post, %agent_id: the secret and %dna are not publishable.
	assert.Equal(t, []ir.ChainHeader{headers[0], headers[2], headers[3]}, pkg.SourceChainHeaders)
	assert.Equal(t, []ir.Entry{
		ir.NewEntry("comment", "nice"),
		ir.NewEntry("post", "first"),
		ir.NewEntry(ir.EntryTypeAgentID, "alice"),
	}, pkg.SourceChainEntries)
	assert.Nil(t, pkg.Custom)
}

func TestBuild_ChainEntriesOnly(t *testing.T) {
	rc := testutil.NewContext(t, "alice")
	seedChain(t, rc)
	ctx := testutil.Context(t)

	pkg, err := BuildValidationPackage(ctx, rc, ir.NewEntry("comment", "more")).Await(ctx)
	require.NoError(t, err)
	assert.Nil(t, pkg.SourceChainHeaders)
	assert.Len(t, pkg.SourceChainEntries, 3)
}

func TestBuild_ChainHeadersOnEmptyChain(t *testing.T) {
	rc := testutil.NewContext(t, "alice")
	ctx := testutil.Context(t)

	pkg, err := BuildValidationPackage(ctx, rc, ir.NewEntry("audit", "a")).Await(ctx)
	require.NoError(t, err)
	require.NotNil(t, pkg.SourceChainHeaders)
	assert.Empty(t, pkg.SourceChainHeaders)
	assert.Nil(t, pkg.SourceChainEntries)
	assert.Equal(t, int64(1), pkg.ChainHeader.Seq)
	assert.Empty(t, pkg.ChainHeader.Link)
}

func TestBuild_EntryAndCustom(t *testing.T) {
	rc := testutil.NewContext(t, "alice")
	seedChain(t, rc)
	ctx := testutil.Context(t)

	pkg, err := BuildValidationPackage(ctx, rc, ir.NewEntry("secret", "s2")).Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, ir.OnlyHeader(*pkg.ChainHeader), pkg)

	pkg, err = BuildValidationPackage(ctx, rc, ir.NewEntry("thread", "t")).Await(ctx)
	require.NoError(t, err)
	require.NotNil(t, pkg.Custom)
	assert.Equal(t, "thread-context", *pkg.Custom)
	assert.Nil(t, pkg.SourceChainEntries)
	assert.Nil(t, pkg.SourceChainHeaders)
}

func TestBuild_CommittedEntryUsesItsHeader(t *testing.T) {
	rc := testutil.NewContext(t, "alice")
	headers := seedChain(t, rc)
	ctx := testutil.Context(t)

	pkg, err := BuildValidationPackage(ctx, rc, ir.NewEntry("post", "first")).Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, headers[2], *pkg.ChainHeader)
}

func TestBuildFor_UsesGivenHeader(t *testing.T) {
	rc := testutil.NewContext(t, "alice")
	headers := seedChain(t, rc)
	ctx := testutil.Context(t)

	// Same content as the committed post, authored again on top.
	post := ir.NewEntry("post", "first")
	next := agent.NewChainHeader(rc.State().Agent(), post)
	pkg, err := BuildValidationPackageFor(ctx, rc, post, next).Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, next, *pkg.ChainHeader)
	assert.NotEqual(t, headers[2], *pkg.ChainHeader)
}

func TestBuildFor_HeaderOfOtherEntry(t *testing.T) {
	rc := testutil.NewContext(t, "alice")
	ctx := testutil.Context(t)
	seq := rc.State().Seq()

	other := agent.NewChainHeader(rc.State().Agent(), ir.NewEntry("post", "other"))
	_, err := BuildValidationPackageFor(ctx, rc, ir.NewEntry("post", "mine"), other).Await(ctx)
	require.Error(t, err)
	assert.Equal(t, ir.KindGeneric, ir.KindOf(err))
	assert.Equal(t, seq, rc.State().Seq(), "nothing dispatched")
}

func TestBuild_SystemEntryType(t *testing.T) {
	rc := testutil.NewContext(t, "alice")
	ctx := testutil.Context(t)

	entry := ir.NewLinkAddEntry("base", "target", "tag")
	pkg, err := BuildValidationPackage(ctx, rc, entry).Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, ir.EntryTypeLinkAdd, pkg.ChainHeader.EntryType)
}

func TestBuild_CallbackErrors(t *testing.T) {
	rib := &testutil.ScriptedRibosome{
		DefinitionErrs: map[ir.EntryType]error{"comment": errors.New("zome exploded")},
	}
	rc := testutil.NewContext(t, "alice", testutil.WithRibosome(rib))
	ctx := testutil.Context(t)

	_, err := BuildValidationPackage(ctx, rc, ir.NewEntry("post", "p")).Await(ctx)
	require.Error(t, err)
	assert.Equal(t, ir.KindGeneric, ir.KindOf(err))
	assert.Equal(t, "ValidationPackage callback not implemented for post", ir.ReasonOf(err))

	_, err = BuildValidationPackage(ctx, rc, ir.NewEntry("comment", "c")).Await(ctx)
	require.Error(t, err)
	assert.Equal(t, ir.KindGeneric, ir.KindOf(err))
	assert.Equal(t, "zome exploded", ir.ReasonOf(err))
}

func TestBuild_EntryMissingFromCAS(t *testing.T) {
	rc := testutil.NewContext(t, "alice")
	ctx := testutil.Context(t)

	lost := ir.NewEntry("post", "lost")
	header := agent.NewChainHeader(rc.State().Agent(), lost)
	_, err := cas.StoreHeader(ctx, rc.CAS(), header)
	require.NoError(t, err)
	rc.Engine().Dispatch(action.Commit{Entry: lost, Header: header})
	testutil.Await(t, rc, func(s *state.State) bool { return s.Agent().TopAddress() == header.Address() })

	_, err = BuildValidationPackage(ctx, rc, ir.NewEntry("comment", "c")).Await(ctx)
	require.Error(t, err)
	assert.Equal(t, ir.KindGeneric, ir.KindOf(err))
	assert.Contains(t, err.Error(), "missing from CAS")
}

func TestBuild_PoolSaturated(t *testing.T) {
	rib := &testutil.ScriptedRibosome{
		Definitions: map[ir.EntryType]ir.ValidationPackageDefinition{"post": {Kind: ir.DefinitionEntry}},
		Gate:        make(chan struct{}),
	}
	rc := testutil.NewContext(t, "alice",
		testutil.WithRibosome(rib),
		testutil.WithPool(engine.NewPool(1, engine.PoolReject, nil)))
	ctx := testutil.Context(t)

	blocked := BuildValidationPackage(ctx, rc, ir.NewEntry("post", "one"))
	_, err := BuildValidationPackage(ctx, rc, ir.NewEntry("post", "two")).Await(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POOL_SATURATED")

	close(rib.Gate)
	pkg, err := blocked.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, ir.NewEntry("post", "one").Address(), pkg.ChainHeader.EntryAddress)
}

func TestBuild_ResultIsLatched(t *testing.T) {
	rc := testutil.NewContext(t, "alice")
	ctx := testutil.Context(t)

	fut := BuildValidationPackage(ctx, rc, ir.NewEntry("post", "x"))
	first, err := fut.Await(ctx)
	require.NoError(t, err)

	_, err = agent.Append(ctx, rc, ir.NewEntry("post", "y"))
	require.NoError(t, err)
	again, err := fut.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestBuild_ResultForgottenOnceTaken(t *testing.T) {
	rc := testutil.NewContext(t, "alice")
	ctx := testutil.Context(t)

	_, err := BuildValidationPackage(ctx, rc, ir.NewEntry("post", "x")).Await(ctx)
	require.NoError(t, err)

	forget := action.ForgetValidation{RequestID: "alice-req-1"}
	testutil.Await(t, rc, func(s *state.State) bool {
		for _, w := range s.History() {
			if w.Action == forget {
				return true
			}
		}
		return false
	})
	assert.Nil(t, rc.State().Nucleus().ValidationPackageResult("alice-req-1"))
}
