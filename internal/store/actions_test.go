package store_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nucleus/internal/action"
	"github.com/roach88/nucleus/internal/store"
)

func TestActionLog_AppendAndRead(t *testing.T) {
	ctx := context.Background()
	log := openStore(t).Actions()

	last, err := log.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), last)

	wrappers := []action.Wrapper{
		{ID: 1, Action: action.InitDNA{Address: "dna"}},
		{ID: 2, Action: action.GetEntry{Address: "A"}},
		{ID: 3, Action: action.GetEntryTimeout{Address: "A"}},
	}
	for _, w := range wrappers {
		require.NoError(t, log.Append(ctx, w))
	}

	records, err := log.Read(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, rec := range records {
		assert.Equal(t, wrappers[i].ID, rec.Seq)
		assert.Equal(t, wrappers[i].Action.Kind(), rec.Kind)
	}

	var payload action.GetEntry
	require.NoError(t, json.Unmarshal(records[1].Payload, &payload))
	assert.Equal(t, action.GetEntry{Address: "A"}, payload)

	last, err = log.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), last)
}

func TestActionLog_ReadAfterAndLimit(t *testing.T) {
	ctx := context.Background()
	log := openStore(t).Actions()
	for i := int64(1); i <= 5; i++ {
		require.NoError(t, log.Append(ctx, action.Wrapper{ID: i, Action: action.InitDNA{Address: "dna"}}))
	}

	records, err := log.Read(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(3), records[0].Seq)
	assert.Equal(t, int64(4), records[1].Seq)

	records, err = log.Read(ctx, 5, 0)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestActionLog_DuplicateSeqKeepsFirst(t *testing.T) {
	ctx := context.Background()
	log := openStore(t).Actions()

	require.NoError(t, log.Append(ctx, action.Wrapper{ID: 1, Action: action.InitDNA{Address: "first"}}))
	require.NoError(t, log.Append(ctx, action.Wrapper{ID: 1, Action: action.InitDNA{Address: "second"}}))

	records, err := log.Read(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Contains(t, string(records[0].Payload), "first")
}

var _ interface {
	Append(context.Context, action.Wrapper) error
} = (*store.ActionLog)(nil)

func TestActionLog_Wrappers(t *testing.T) {
	ctx := context.Background()
	log := openStore(t).Actions()

	wrappers := []action.Wrapper{
		{ID: 1, Action: action.InitDNA{Address: "dna"}},
		{ID: 2, Action: action.ReturnValidationResult{RequestID: "r"}},
	}
	for _, w := range wrappers {
		require.NoError(t, log.Append(ctx, w))
	}

	got, err := log.Wrappers(ctx)
	require.NoError(t, err)
	assert.Equal(t, wrappers, got)
}
