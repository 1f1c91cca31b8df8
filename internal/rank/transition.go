package rank

import (
	"fmt"

	"github.com/alvmarrod/rank-weaver/internal/corpus"
)

// Distribution maps every page of a corpus to the probability of visiting it
// next.
type Distribution map[string]float64

// Transition returns the distribution over the next page a random surfer
// visits from page.
//
// With probability dampingFactor the surfer follows one of page's links,
// chosen uniformly; otherwise it jumps to any page of the corpus. A page
// without links jumps uniformly over the whole corpus, itself included.
func Transition(c *corpus.Corpus, page string, dampingFactor float64) (Distribution, error) {
	if c.Len() == 0 {
		return nil, ErrEmptyCorpus
	}
	if !c.Has(page) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPage, page)
	}
	if err := checkDamping(dampingFactor); err != nil {
		return nil, err
	}

	m := newModel(c)
	probs := make([]float64, len(m.pages))
	m.transition(m.index[page], dampingFactor, probs)

	dist := make(Distribution, len(m.pages))
	for i, p := range m.pages {
		dist[p] = probs[i]
	}
	return dist, nil
}

// model is an index-based view of a corpus used by the estimators' hot loops.
type model struct {
	pages    []string
	index    map[string]int
	outlinks [][]int
}

func newModel(c *corpus.Corpus) *model {
	pages := c.Pages()
	m := &model{
		pages:    pages,
		index:    make(map[string]int, len(pages)),
		outlinks: make([][]int, len(pages)),
	}
	for i, p := range pages {
		m.index[p] = i
	}
	for i, p := range pages {
		m.outlinks[i] = make([]int, 0, c.OutDegree(p))
		for _, target := range c.Links(p) {
			// self links never count as outbound, whatever the builder did
			if target == p {
				continue
			}
			m.outlinks[i] = append(m.outlinks[i], m.index[target])
		}
	}
	return m
}

// transition writes the next-page distribution of page into dst.
func (m *model) transition(page int, dampingFactor float64, dst []float64) {
	n := float64(len(m.pages))
	links := m.outlinks[page]

	if len(links) == 0 {
		for i := range dst {
			dst[i] = 1 / n
		}
		return
	}

	base := (1 - dampingFactor) / n
	for i := range dst {
		dst[i] = base
	}
	follow := dampingFactor / float64(len(links))
	for _, target := range links {
		dst[target] += follow
	}
}
