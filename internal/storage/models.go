package storage

import "time"

// Node represents a page in the crawl graph. Name is stored in the
// domain_name column so crawl databases of the web crawler load as-is.
type Node struct {
	NodeID      int
	Name        string
	Description string
	CrawlCount  int
	CreatedAt   time.Time
}

// Edge represents a directed link between two nodes
type Edge struct {
	EdgeID     int
	FromNodeID int
	ToNodeID   int
	Weight     int
}

// Metrics records one ranking run for export on exit
type Metrics struct {
	RunID             string    `json:"run_id"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	CorpusSource      string    `json:"corpus_source"`
	Pages             int       `json:"pages"`
	Links             int       `json:"links"`
	DanglingPages     int       `json:"dangling_pages"`
	PagesParsed       int       `json:"pages_parsed"`
	PagesFailed       int       `json:"pages_failed"`
	LinksRecorded     int       `json:"links_recorded"`
	DampingFactor     float64   `json:"damping_factor"`
	Samples           int       `json:"samples"`
	Seed              uint64    `json:"seed"`
	SampleTimeMs      int64     `json:"sample_time_ms"`
	Tolerance         float64   `json:"tolerance"`
	Iterations        int       `json:"iterations"`
	FinalMaxDelta     float64   `json:"final_max_delta"`
	IterateTimeMs     int64     `json:"iterate_time_ms"`
	L1Distance        float64   `json:"l1_distance"`
	TerminationReason string    `json:"termination_reason"`
}
