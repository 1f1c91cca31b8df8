package rank

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Vector maps pages to their estimated PageRank.
type Vector map[string]float64

// Pages returns the pages of v in sorted order
func (v Vector) Pages() []string {
	pages := make([]string, 0, len(v))
	for p := range v {
		pages = append(pages, p)
	}
	sort.Strings(pages)
	return pages
}

// Sum returns the total probability mass of v
func (v Vector) Sum() float64 {
	values := make([]float64, 0, len(v))
	for _, p := range v.Pages() {
		values = append(values, v[p])
	}
	return floats.Sum(values)
}

// Distance returns the L1 distance between two rank vectors. Pages missing
// from one side count as zero.
func Distance(a, b Vector) float64 {
	union := make(map[string]bool, len(a))
	for p := range a {
		union[p] = true
	}
	for p := range b {
		union[p] = true
	}

	pages := make([]string, 0, len(union))
	for p := range union {
		pages = append(pages, p)
	}
	sort.Strings(pages)

	left := make([]float64, len(pages))
	right := make([]float64, len(pages))
	for i, p := range pages {
		left[i] = a[p]
		right[i] = b[p]
	}
	return floats.Distance(left, right, 1)
}
