package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidates(t *testing.T, s string) []any {
	t.Helper()
	var v []any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func addresses(b ListingBatch) []string {
	out := make([]string, len(b))
	for i, r := range b {
		out[i] = r.Address
	}
	return out
}

func TestBuildBatch_SortsByScoreDescendingAndStable(t *testing.T) {
	batch := BuildBatch(candidates(t, `[
		{"address": "a", "score": 0.5},
		{"address": "b", "score": 0.9},
		{"address": "c", "score": 0.5},
		{"address": "d", "score": 0.7},
		{"address": "e", "score": 0.5}
	]`))

	assert.Equal(t, []string{"b", "d", "a", "c", "e"}, addresses(batch))
}

func TestBuildBatch_PreservesProducerOrderWithoutScores(t *testing.T) {
	batch := BuildBatch(candidates(t, `[{"address": "z"}, {"address": "a"}, {"address": "m"}]`))

	assert.Equal(t, []string{"z", "a", "m"}, addresses(batch))
}

func TestBuildBatch_MissingScoreRanksAsZero(t *testing.T) {
	batch := BuildBatch(candidates(t, `[
		{"address": "none-1"},
		{"address": "neg", "score": -1},
		{"address": "pos", "score": 2},
		{"address": "none-2"}
	]`))

	assert.Equal(t, []string{"pos", "none-1", "none-2", "neg"}, addresses(batch))
}

func TestBuildBatch_DropsUnparseableElementsOnly(t *testing.T) {
	batch := BuildBatch(candidates(t, `[null, {"address": "kept"}, "garbage", 7, [], {}]`))

	require.Len(t, batch, 2)
	assert.Equal(t, "kept", batch[0].Address)
	assert.Equal(t, "", batch[1].Address)
}

func TestBuildBatch_EmptyInput(t *testing.T) {
	batch := BuildBatch(nil)

	content, err := batch.Serialize()
	require.NoError(t, err)
	assert.JSONEq(t, `{"listings": []}`, content)
}

func TestSerialize_NeverEmitsNullSlices(t *testing.T) {
	content, err := ListingBatch{{Address: "x"}}.Serialize()
	require.NoError(t, err)

	assert.JSONEq(t, `{"listings":[{
		"listingId": 0, "address": "x", "price": 0, "phoneNumbers": [], "url": "",
		"images": [], "features": [], "description": ""
	}]}`, content)
}

func TestBatchRoundTrip(t *testing.T) {
	batch := BuildBatch(candidates(t, `[
		{"listingId": 1, "address": "Podgorica", "price": 120000.75, "images": ["1.jpg"], "score": 0.3333333333333333},
		{"listingId": 2, "address": "Budva", "phoneNumbers": ["+382"], "features": ["sea view"]},
		{"description": "only description"}
	]`))

	content, err := batch.Serialize()
	require.NoError(t, err)

	parsed, err := ParseBatch(content)
	require.NoError(t, err)
	assert.Equal(t, batch, parsed)

	again, err := parsed.Serialize()
	require.NoError(t, err)
	assert.Equal(t, content, again)
}

func TestParseBatch_RejectsForeignContent(t *testing.T) {
	_, err := ParseBatch(`{"items": []}`)
	assert.Error(t, err)

	_, err = ParseBatch(`{}`)
	assert.Error(t, err)

	_, err = ParseBatch(`not json`)
	assert.Error(t, err)
}

func TestToolEventCandidates(t *testing.T) {
	arr := ToolEvent{Type: ToolEventResult, Result: json.RawMessage(`[{"address":"a"}]`)}
	got, ok := arr.Candidates()
	require.True(t, ok)
	assert.Len(t, got, 1)

	wrapped := ToolEvent{Type: ToolEventResult, Result: json.RawMessage(`{"listings":[{},{}]}`)}
	got, ok = wrapped.Candidates()
	require.True(t, ok)
	assert.Len(t, got, 2)

	_, ok = ToolEvent{Type: ToolEventResult, Result: json.RawMessage(`{"error":"boom"}`)}.Candidates()
	assert.False(t, ok)

	_, ok = ToolEvent{Type: ToolEventResult, Result: json.RawMessage(`null`)}.Candidates()
	assert.False(t, ok)

	_, ok = ToolEvent{Type: "text-delta", Result: json.RawMessage(`[]`)}.Candidates()
	assert.False(t, ok)
}
