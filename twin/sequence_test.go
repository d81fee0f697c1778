package twin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func keysOf(entries []Entry) []string {
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys
}

func batchOf(keys ...string) map[string]RawRecord {
	batch := make(map[string]RawRecord, len(keys))
	for _, k := range keys {
		batch[k] = RawRecord{}
	}
	return batch
}

func TestOrderEntries_NumericBeforeLiveSentinel(t *testing.T) {
	got := OrderEntries(batchOf("entry_2", "entry_1", "entry_live", "entry_10"), "entry_live")
	assert.Equal(t, []string{"entry_1", "entry_2", "entry_10", "entry_live"}, keysOf(got))
}

func TestOrderEntries_SentinelLastRegardlessOfSpelling(t *testing.T) {
	// "live_reading" sorts lexicographically before "zz_9" but the sentinel
	// is pinned to the end by name, not by comparison.
	got := OrderEntries(batchOf("zz_9", "live_reading", "aa_1"), "live_reading")
	assert.Equal(t, []string{"aa_1", "zz_9", "live_reading"}, keysOf(got))
}

func TestOrderEntries_MixedSuffixesStayTransitive(t *testing.T) {
	// entry_9 < entry_10 numerically while entry_10 < entry_1x < entry_9
	// lexicographically; a pairwise fallback comparator cycles here. The
	// decomposed order puts numeric suffixes first, so the result is a
	// single consistent sequence.
	got := OrderEntries(batchOf("entry_10", "entry_1x", "entry_9", "entry_2"), "entry_live")
	assert.Equal(t, []string{"entry_2", "entry_9", "entry_10", "entry_1x"}, keysOf(got))
}

func TestOrderEntries_LexicographicWithoutNumericSuffix(t *testing.T) {
	got := OrderEntries(batchOf("run_b", "run_a", "boot"), "entry_live")
	assert.Equal(t, []string{"boot", "run_a", "run_b"}, keysOf(got))
}

func TestOrderEntries_PrefixGroupsBeforeSuffixOrder(t *testing.T) {
	got := OrderEntries(batchOf("b_1", "a_20", "a_3"), "entry_live")
	assert.Equal(t, []string{"a_3", "a_20", "b_1"}, keysOf(got))
}

func TestOrderEntries_Empty(t *testing.T) {
	assert.Empty(t, OrderEntries(nil, "entry_live"))
}
