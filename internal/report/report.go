package report

import (
	"fmt"
	"io"

	"github.com/alvmarrod/rank-weaver/internal/rank"
)

// Write prints title followed by one "  page: rank" line per page, in page
// order, with four decimals.
func Write(w io.Writer, title string, ranks rank.Vector) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	for _, page := range ranks.Pages() {
		if _, err := fmt.Fprintf(w, "  %s: %.4f\n", page, ranks[page]); err != nil {
			return err
		}
	}
	return nil
}

// Compare prints the L1 distance between the sampled and iterated ranks
func Compare(w io.Writer, sampled, iterated rank.Vector) error {
	_, err := fmt.Fprintf(w, "L1 distance between estimates: %.4f\n", rank.Distance(sampled, iterated))
	return err
}
