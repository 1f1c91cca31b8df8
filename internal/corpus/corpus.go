package corpus

import "sort"

// Corpus is an immutable directed link graph over a closed set of pages.
// Every link target is itself a page and no page links to itself.
type Corpus struct {
	pages []string            // sorted page ids
	links map[string][]string // page -> sorted outbound targets
}

// Edge is a single directed link between two pages
type Edge struct {
	From string
	To   string
}

// New builds a Corpus from a raw adjacency mapping.
// Self-links, duplicate links and links to pages that are not keys of raw
// are dropped.
func New(raw map[string][]string) *Corpus {
	c := &Corpus{
		pages: make([]string, 0, len(raw)),
		links: make(map[string][]string, len(raw)),
	}

	for page := range raw {
		c.pages = append(c.pages, page)
	}
	sort.Strings(c.pages)

	for _, page := range c.pages {
		seen := make(map[string]bool)
		targets := make([]string, 0, len(raw[page]))
		for _, target := range raw[page] {
			if target == page || seen[target] {
				continue
			}
			if _, ok := raw[target]; !ok {
				continue
			}
			seen[target] = true
			targets = append(targets, target)
		}
		sort.Strings(targets)
		c.links[page] = targets
	}

	return c
}

// Len returns the number of pages
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.pages)
}

// Pages returns all page ids in sorted order
func (c *Corpus) Pages() []string {
	if c == nil {
		return nil
	}
	pages := make([]string, len(c.pages))
	copy(pages, c.pages)
	return pages
}

// Has reports whether page is part of the corpus
func (c *Corpus) Has(page string) bool {
	if c == nil {
		return false
	}
	_, ok := c.links[page]
	return ok
}

// Links returns the sorted outbound targets of page, or nil if page is
// unknown.
func (c *Corpus) Links(page string) []string {
	if !c.Has(page) {
		return nil
	}
	links := make([]string, len(c.links[page]))
	copy(links, c.links[page])
	return links
}

// OutDegree returns the number of outbound links of page
func (c *Corpus) OutDegree(page string) int {
	if c == nil {
		return 0
	}
	return len(c.links[page])
}

// Dangling returns the pages without outbound links, sorted
func (c *Corpus) Dangling() []string {
	if c == nil {
		return nil
	}
	var dangling []string
	for _, page := range c.pages {
		if len(c.links[page]) == 0 {
			dangling = append(dangling, page)
		}
	}
	return dangling
}

// Edges returns every link in the corpus ordered by source then target
func (c *Corpus) Edges() []Edge {
	if c == nil {
		return nil
	}
	var edges []Edge
	for _, page := range c.pages {
		for _, target := range c.links[page] {
			edges = append(edges, Edge{From: page, To: target})
		}
	}
	return edges
}

// EdgeCount returns the total number of links
func (c *Corpus) EdgeCount() int {
	if c == nil {
		return 0
	}
	count := 0
	for _, targets := range c.links {
		count += len(targets)
	}
	return count
}
