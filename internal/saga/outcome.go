package saga

import (
	"context"
	"errors"

	"github.com/MUR0612/smart-inventory/internal/apperr"
)

// Outcome is the tagged result of one ledger call inside a phase.
type Outcome uint8

const (
	OutcomeOK Outcome = iota
	OutcomeInsufficientStock
	OutcomeNotFound
	OutcomeUnavailable
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeInsufficientStock:
		return "insufficient_stock"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeUnavailable:
		return "unavailable"
	default:
		return "failed"
	}
}

func classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, apperr.ErrInsufficientStock):
		return OutcomeInsufficientStock
	case errors.Is(err, apperr.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, apperr.ErrUpstreamUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return OutcomeUnavailable
	default:
		return OutcomeFailed
	}
}

// step is one ledger call with its classified result.
type step struct {
	Outcome Outcome
	Err     error
}

func result(err error) step {
	s := step{Outcome: classify(err), Err: err}
	if s.Outcome == OutcomeUnavailable && !errors.Is(err, apperr.ErrUpstreamUnavailable) {
		s.Err = apperr.Unavailable(err)
	}
	return s
}
