// Package lifecycle moves bills through Draft, Sent to AG and Processed,
// and builds the AG Office queue over both bill kinds.
package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/fooddept/fdbms/internal/models"
)

// ErrInvalidTransition is matched by every rejected transition.
var ErrInvalidTransition = errors.New("invalid lifecycle transition")

// TransitionError reports a transition attempted from the wrong state.
// The bill it names is left unchanged.
type TransitionError struct {
	BillNumber string
	From       models.Status
	To         models.Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("bill %q is %s and cannot move to %s", e.BillNumber, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// Tracked is a bill kind that carries a lifecycle.
type Tracked[T any] interface {
	Number() string
	LifecycleState() models.Lifecycle
	WithLifecycle(models.Lifecycle) T
}

// Machine stamps transitions with the time returned by Now. The zero
// Machine uses the wall clock.
type Machine struct {
	Now func() time.Time
}

func (m Machine) now() time.Time {
	if m.Now == nil {
		return time.Now().UTC()
	}
	return m.Now().UTC()
}

// Create returns the state of a newly saved bill.
func (m Machine) Create() models.Lifecycle {
	return models.Lifecycle{Status: models.StatusDraft}
}

// SendToAG hands a draft bill to the AG Office. Any other state is
// rejected with a *TransitionError and the bill is returned as given.
func SendToAG[T Tracked[T]](m Machine, bill T) (T, error) {
	l := bill.LifecycleState()
	if l.Current() != models.StatusDraft {
		return bill, &TransitionError{BillNumber: bill.Number(), From: l.Current(), To: models.StatusSentToAG}
	}

	at := m.now()
	l.Status = models.StatusSentToAG
	l.SentAt = &at
	l.ProcessedAt = nil
	return bill.WithLifecycle(l), nil
}

// MarkProcessed marks every bill that is with the AG Office as processed,
// stamping the whole batch with one time. It returns all bills in input
// order, with the ones that could not move unchanged and a rejection for
// each of them.
func MarkProcessed[T Tracked[T]](m Machine, bills []T) ([]T, []error) {
	at := m.now()
	out := make([]T, len(bills))
	var rejected []error

	for i, bill := range bills {
		l := bill.LifecycleState()
		if l.Current() != models.StatusSentToAG {
			out[i] = bill
			rejected = append(rejected, &TransitionError{BillNumber: bill.Number(), From: l.Current(), To: models.StatusProcessed})
			continue
		}
		stamp := at
		l.Status = models.StatusProcessed
		l.ProcessedAt = &stamp
		out[i] = bill.WithLifecycle(l)
	}
	return out, rejected
}
