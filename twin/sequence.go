package twin

import (
	"slices"
	"strconv"
	"strings"
)

// Entry is one keyed record of an ordered batch.
type Entry struct {
	Key    string
	Record RawRecord
}

// keyRank is the decomposed sort key for one batch entry. Ordering is by
// field, in order: live sentinel last, then prefix, then numeric suffixes
// before non-numeric ones, then suffix value. Decomposing once and comparing
// the tuple keeps the order total and transitive even when numeric and
// non-numeric suffixes interleave; a pairwise "numeric if both parse"
// fallback is not transitive (entry_9 < entry_10 numerically but
// entry_10 < entry_1x < entry_9 lexicographically forms a cycle).
type keyRank struct {
	live    bool
	prefix  string
	numeric bool
	num     int64
	suffix  string
}

func rankKey(key, liveKey string) keyRank {
	if key == liveKey {
		return keyRank{live: true}
	}
	r := keyRank{prefix: key, suffix: ""}
	if i := strings.LastIndexByte(key, '_'); i >= 0 {
		r.prefix, r.suffix = key[:i], key[i+1:]
		if n, err := strconv.ParseInt(r.suffix, 10, 64); err == nil {
			r.numeric = true
			r.num = n
		}
	}
	return r
}

func compareRanks(a, b keyRank) int {
	if a.live != b.live {
		if a.live {
			return 1
		}
		return -1
	}
	if c := strings.Compare(a.prefix, b.prefix); c != 0 {
		return c
	}
	if a.numeric != b.numeric {
		if a.numeric {
			return -1
		}
		return 1
	}
	if a.numeric {
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
	}
	return strings.Compare(a.suffix, b.suffix)
}

// OrderEntries orders a batch mapping into a deterministic temporal
// sequence. Entries named prefix_N sort numerically by N so chronological
// insertion order is recovered (entry_2 before entry_10); the liveKey
// sentinel is pinned to the end regardless of its spelling; everything else
// sorts lexicographically.
func OrderEntries(batch map[string]RawRecord, liveKey string) []Entry {
	entries := make([]Entry, 0, len(batch))
	for k, rec := range batch {
		entries = append(entries, Entry{Key: k, Record: rec})
	}
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return compareRanks(rankKey(a.Key, liveKey), rankKey(b.Key, liveKey))
	})
	return entries
}
