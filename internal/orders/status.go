package orders

import (
	"fmt"
	"strings"
)

// Status is a closed set; the zero value is not a valid status.
type Status uint8

const (
	statusInvalid Status = iota
	StatusCreated
	StatusPaid
	StatusShipped
	StatusCancelled
	StatusRefunded
)

var statusNames = [...]string{
	statusInvalid:   "",
	StatusCreated:   "CREATED",
	StatusPaid:      "PAID",
	StatusShipped:   "SHIPPED",
	StatusCancelled: "CANCELLED",
	StatusRefunded:  "REFUNDED",
}

// validNext is the full transition table. CANCELLED and REFUNDED are terminal.
var validNext = [...][]Status{
	StatusCreated:   {StatusPaid, StatusCancelled},
	StatusPaid:      {StatusShipped, StatusRefunded},
	StatusShipped:   {StatusRefunded},
	StatusCancelled: {},
	StatusRefunded:  {},
}

func (s Status) Valid() bool { return s > statusInvalid && s <= StatusRefunded }

func (s Status) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
	return statusNames[s]
}

// AllowedNext returns a copy of the targets reachable from s.
func (s Status) AllowedNext() []Status {
	if !s.Valid() {
		return []Status{}
	}
	return append([]Status{}, validNext[s]...)
}

func (s Status) Terminal() bool { return s.Valid() && len(validNext[s]) == 0 }

// Cancellable reports whether the cancel operation accepts an order in s.
// It is wider than the table: a PAID order can be cancelled with its stock
// released, while a plain status update cannot move PAID to CANCELLED.
func (s Status) Cancellable() bool { return s == StatusCreated || s == StatusPaid }

func CanTransition(from, to Status) bool {
	if !from.Valid() {
		return false
	}
	for _, next := range validNext[from] {
		if next == to {
			return true
		}
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	for i, name := range statusNames {
		if name != "" && name == up {
			return Status(i), nil
		}
	}
	return statusInvalid, fmt.Errorf("unknown order status %q", s)
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid order status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
