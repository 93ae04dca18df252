package result

import "sort"

// Result is a single ranked hit: a product identifier and its score.
type Result struct {
	id    string
	score float64
}

// New creates a ranked result.
func New(id string, score float64) Result {
	return Result{id: id, score: score}
}

// ID returns the product identifier.
func (r Result) ID() string { return r.id }

// Score returns the ranking score.
func (r Result) Score() float64 { return r.score }

// Less reports whether r ranks before o: higher score first, then lower identifier.
func (r Result) Less(o Result) bool {
	if r.score != o.score {
		return r.score > o.score
	}
	return r.id < o.id
}

// Rank sorts results in place by Less and truncates them to limit.
// A non-positive limit yields an empty slice.
func Rank(results []Result, limit int) []Result {
	if limit <= 0 {
		return []Result{}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Less(results[j])
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
