package model

import "sort"

// Count is one category of a breakdown.
type Count struct {
	Key   string
	Count int
}

// SortedCounts orders a breakdown by count descending, ties by key.
func SortedCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for k, v := range m {
		out = append(out, Count{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// StatusCounts follows StatusOrder and drops zero counts. Statuses outside
// the known set are ignored.
func StatusCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(StatusOrder))
	for _, s := range StatusOrder {
		if n := m[s]; n > 0 {
			out = append(out, Count{Key: s, Count: n})
		}
	}
	return out
}
