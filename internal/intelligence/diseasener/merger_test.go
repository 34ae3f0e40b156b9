package diseasener

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeSpansEmpty(t *testing.T) {
	assert.Nil(t, mergeSpans(nil))
	assert.Nil(t, mergeSpans([]spanPrediction{}))
}

func TestMergeSpansAdjacentDiseaseLabels(t *testing.T) {
	preds := []spanPrediction{
		{start: 10, end: 18, label: LabelBegin, score: 0.8},
		{start: 21, end: 29, label: LabelInside, score: 0.6},
	}

	merged := mergeSpans(preds)
	require.Len(t, merged, 1)
	assert.Equal(t, 10, merged[0].start)
	assert.Equal(t, 29, merged[0].end)
	assert.Equal(t, LabelBegin, merged[0].label)
	assert.InDelta(t, 0.7, merged[0].score, 1e-9)
}

func TestMergeSpansGapTooWide(t *testing.T) {
	preds := []spanPrediction{
		{start: 0, end: 5, label: LabelBegin, score: 0.9},
		{start: 9, end: 14, label: LabelBegin, score: 0.9},
	}

	merged := mergeSpans(preds)
	assert.Len(t, merged, 2)
}

func TestMergeSpansGapAtLimit(t *testing.T) {
	preds := []spanPrediction{
		{start: 0, end: 5, label: LabelInside, score: 0.9},
		{start: 8, end: 14, label: LabelBegin, score: 0.9},
	}

	merged := mergeSpans(preds)
	require.Len(t, merged, 1)
	assert.Equal(t, LabelBegin, merged[0].label, "B label wins regardless of order")
}

func TestMergeSpansContainedSpanKeepsFurthestEnd(t *testing.T) {
	preds := []spanPrediction{
		{start: 0, end: 20, label: LabelBegin, score: 0.9},
		{start: 5, end: 10, label: LabelInside, score: 0.7},
	}

	merged := mergeSpans(preds)
	require.Len(t, merged, 1)
	assert.Equal(t, 20, merged[0].end)
}

func TestMergeSpansOverlappingDuplicatesFromWindows(t *testing.T) {
	// Overlapping windows predict the same token twice.
	preds := []spanPrediction{
		{start: 40, end: 48, label: LabelInside, score: 0.95},
		{start: 40, end: 48, label: LabelInside, score: 0.95},
	}

	merged := mergeSpans(preds)
	require.Len(t, merged, 1)
	assert.Equal(t, LabelInside, merged[0].label)
	assert.InDelta(t, 0.95, merged[0].score, 1e-9)
}

func TestMergeSpansWindowOrderDoesNotMatter(t *testing.T) {
	// Predictions arrive window by window, so neighbouring windows can
	// contribute the same region in either order. After the position sort
	// that precedes merging, both orders must produce identical spans.
	forward := []spanPrediction{
		{start: 10, end: 18, label: LabelBegin, score: 0.8},
		{start: 21, end: 29, label: LabelInside, score: 0.6},
		{start: 50, end: 58, label: LabelBegin, score: 0.9},
	}
	backward := []spanPrediction{forward[2], forward[1], forward[0]}

	byPosition := func(preds []spanPrediction) {
		sort.Slice(preds, func(i, j int) bool {
			if preds[i].start != preds[j].start {
				return preds[i].start < preds[j].start
			}
			return preds[i].end < preds[j].end
		})
	}
	byPosition(forward)
	byPosition(backward)

	assert.Equal(t, mergeSpans(forward), mergeSpans(backward))
}

func TestMergeSpansChainAveragesPairwise(t *testing.T) {
	preds := []spanPrediction{
		{start: 0, end: 4, label: LabelBegin, score: 1.0},
		{start: 5, end: 9, label: LabelInside, score: 0.5},
		{start: 10, end: 14, label: LabelInside, score: 0.75},
	}

	merged := mergeSpans(preds)
	require.Len(t, merged, 1)
	// (1.0+0.5)/2 = 0.75, then (0.75+0.75)/2 = 0.75.
	assert.InDelta(t, 0.75, merged[0].score, 1e-9)
}
