package ledger

import (
	"sort"
)

// Dedup folds records by label. An in-progress record always overwrites a
// completed one; a completed record overwrites only another completed one.
// Labels keep their first-seen position.
func Dedup(records []Semester) []Semester {
	index := make(map[string]int, len(records))
	out := make([]Semester, 0, len(records))
	for _, r := range records {
		i, seen := index[r.Label]
		if !seen {
			index[r.Label] = len(out)
			out = append(out, r)
			continue
		}
		if r.IsInProgress() || !out[i].IsInProgress() {
			out[i] = r
		}
	}
	return out
}

// SortChronological orders records by SortKey ascending. Unparsable labels
// sort first; ties keep their input order.
func SortChronological(records []Semester) []Semester {
	out := make([]Semester, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return SortKey(out[i].Label) < SortKey(out[j].Label)
	})
	return out
}

// Normalize deduplicates and sorts.
func Normalize(records []Semester) []Semester {
	return SortChronological(Dedup(records))
}
