package rank

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCorpus is returned when a corpus has no pages
	ErrEmptyCorpus = errors.New("corpus has no pages")

	// ErrInvalidPage is returned when a page is not part of the corpus
	ErrInvalidPage = errors.New("page not in corpus")

	// ErrInvalidParameter is returned for out of range damping factors,
	// tolerances, sample counts or iteration ceilings
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNonConvergence is returned when the iterative solver reaches its
	// iteration ceiling before every page settles within tolerance
	ErrNonConvergence = errors.New("pagerank did not converge")
)

func checkDamping(dampingFactor float64) error {
	// written this way so NaN is rejected too
	if !(dampingFactor > 0 && dampingFactor < 1) {
		return fmt.Errorf("%w: damping factor %v must be in (0, 1)", ErrInvalidParameter, dampingFactor)
	}
	return nil
}

func checkTolerance(tolerance float64) error {
	if !(tolerance > 0) {
		return fmt.Errorf("%w: tolerance %v must be > 0", ErrInvalidParameter, tolerance)
	}
	return nil
}
