package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/MUR0612/smart-inventory/internal/apperr"
)

// IllegalTransitionError names the moves that would have been accepted.
type IllegalTransitionError struct {
	From    Status
	To      Status
	Allowed []Status
}

func (e *IllegalTransitionError) Error() string {
	names := make([]string, len(e.Allowed))
	for i, s := range e.Allowed {
		names[i] = s.String()
	}
	return fmt.Sprintf("cannot transition from %s to %s; valid transitions: [%s]", e.From, e.To, strings.Join(names, ", "))
}

func (e *IllegalTransitionError) Unwrap() error { return apperr.ErrIllegalTransition }

// Transition moves the order to target. Only status, the matching lifecycle
// timestamp, notes and UpdatedAt change. A non-empty note is appended with a
// timestamp prefix.
func (o *Order) Transition(target Status, note string, now time.Time) error {
	if !CanTransition(o.Status, target) {
		return &IllegalTransitionError{From: o.Status, To: target, Allowed: o.Status.AllowedNext()}
	}
	o.Status = target
	switch target {
	case StatusPaid:
		o.PaidAt = &now
	case StatusShipped:
		o.ShippedAt = &now
	}
	o.AppendNote(note, now)
	o.UpdatedAt = now
	return nil
}

// Cancel moves a CREATED or PAID order to CANCELLED.
func (o *Order) Cancel(note string, now time.Time) error {
	if !o.Status.Cancellable() {
		return &IllegalTransitionError{From: o.Status, To: StatusCancelled, Allowed: o.Status.AllowedNext()}
	}
	o.Status = StatusCancelled
	o.AppendNote(note, now)
	o.UpdatedAt = now
	return nil
}

func (o *Order) AppendNote(note string, now time.Time) {
	note = strings.TrimSpace(note)
	if note == "" {
		return
	}
	line := fmt.Sprintf("[%s] %s", now.Format(time.RFC3339), note)
	if o.Notes == "" {
		o.Notes = line
		return
	}
	o.Notes += "\n" + line
}

type Timeline struct {
	CreatedAt time.Time  `json:"created_at"`
	PaidAt    *time.Time `json:"paid_at"`
	ShippedAt *time.Time `json:"shipped_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type Workflow struct {
	ID               string   `json:"id"`
	CurrentStatus    Status   `json:"current_status"`
	ValidTransitions []Status `json:"valid_transitions"`
	Timeline         Timeline `json:"timeline"`
	Notes            string   `json:"notes"`
}

// Describe is a read-only projection for clients that render next actions.
func (o *Order) Describe() Workflow {
	return Workflow{
		ID:               o.ID,
		CurrentStatus:    o.Status,
		ValidTransitions: o.Status.AllowedNext(),
		Timeline: Timeline{
			CreatedAt: o.CreatedAt,
			PaidAt:    o.PaidAt,
			ShippedAt: o.ShippedAt,
			UpdatedAt: o.UpdatedAt,
		},
		Notes: o.Notes,
	}
}
