package lifecycle

import (
	"sort"
	"time"

	"github.com/fooddept/fdbms/internal/models"
)

// UnifiedBill is a bill of either kind as it appears in the AG Office
// queue. Exactly one of Transport and Grinding is set, matching Type.
type UnifiedBill struct {
	Type      models.BillType       `json:"billType"`
	Transport *models.TransportBill `json:"transport,omitempty"`
	Grinding  *models.GrindingBill  `json:"grinding,omitempty"`
}

// FromTransport tags a transportation bill for the queue.
func FromTransport(b models.TransportBill) UnifiedBill {
	return UnifiedBill{Type: models.BillTypeTransportation, Transport: &b}
}

// FromGrinding tags a grinding bill for the queue.
func FromGrinding(b models.GrindingBill) UnifiedBill {
	return UnifiedBill{Type: models.BillTypeGrinding, Grinding: &b}
}

// ID returns the id of the underlying bill.
func (u UnifiedBill) ID() string {
	switch {
	case u.Transport != nil:
		return u.Transport.ID
	case u.Grinding != nil:
		return u.Grinding.ID
	}
	return ""
}

// Number returns the bill number of the underlying bill.
func (u UnifiedBill) Number() string {
	switch {
	case u.Transport != nil:
		return u.Transport.BillNumber
	case u.Grinding != nil:
		return u.Grinding.BillNumber
	}
	return ""
}

// Party is the contractor or flour mill the bill is payable to.
func (u UnifiedBill) Party() string {
	switch {
	case u.Transport != nil:
		return u.Transport.ContractorName
	case u.Grinding != nil:
		return u.Grinding.FlourMillName
	}
	return ""
}

// Payable is the amount finally payable on the bill.
func (u UnifiedBill) Payable() float64 {
	switch {
	case u.Transport != nil:
		return u.Transport.NetAmount
	case u.Grinding != nil:
		return u.Grinding.FinalAmountToMill
	}
	return 0
}

// LifecycleState returns the state of the underlying bill.
func (u UnifiedBill) LifecycleState() models.Lifecycle {
	switch {
	case u.Transport != nil:
		return u.Transport.Lifecycle
	case u.Grinding != nil:
		return u.Grinding.Lifecycle
	}
	return models.Lifecycle{}
}

// WithLifecycle returns a copy whose underlying bill is in state l. The
// bill the receiver points to is not modified.
func (u UnifiedBill) WithLifecycle(l models.Lifecycle) UnifiedBill {
	switch {
	case u.Transport != nil:
		b := u.Transport.WithLifecycle(l)
		u.Transport = &b
	case u.Grinding != nil:
		b := u.Grinding.WithLifecycle(l)
		u.Grinding = &b
	}
	return u
}

// UnifiedQueue tags both bill kinds and orders them by the time they were
// sent, newest first. Bills never sent come last in their input order.
func UnifiedQueue(transport []models.TransportBill, grinding []models.GrindingBill) []UnifiedBill {
	queue := make([]UnifiedBill, 0, len(transport)+len(grinding))
	for _, b := range transport {
		queue = append(queue, FromTransport(b))
	}
	for _, b := range grinding {
		queue = append(queue, FromGrinding(b))
	}

	sort.SliceStable(queue, func(i, j int) bool {
		a, b := queue[i].LifecycleState().SentAt, queue[j].LifecycleState().SentAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	return queue
}

// Pending returns the bills waiting at the AG Office.
func Pending(queue []UnifiedBill) []UnifiedBill {
	return withStatus(queue, models.StatusSentToAG)
}

// Processed returns the bills the AG Office has processed.
func Processed(queue []UnifiedBill) []UnifiedBill {
	return withStatus(queue, models.StatusProcessed)
}

func withStatus(queue []UnifiedBill, s models.Status) []UnifiedBill {
	out := make([]UnifiedBill, 0, len(queue))
	for _, u := range queue {
		if u.LifecycleState().Current() == s {
			out = append(out, u)
		}
	}
	return out
}

const dateLayout = "2006-01-02"

// Report lists the bills sent and processed within a date range.
type Report struct {
	StartDate string        `json:"startDate"`
	EndDate   string        `json:"endDate"`
	Sent      []UnifiedBill `json:"sentBills"`
	Processed []UnifiedBill `json:"processedBills"`
}

// ReportInRange selects the bills sent, and separately the bills
// processed, on a day between start and end inclusive. Only the calendar
// date counts: timestamps are compared by their UTC date, the bounds by
// their own date.
func ReportInRange(queue []UnifiedBill, start, end time.Time) Report {
	from, to := start.Format(dateLayout), end.Format(dateLayout)
	inRange := func(t *time.Time) bool {
		if t == nil {
			return false
		}
		d := t.UTC().Format(dateLayout)
		return d >= from && d <= to
	}

	r := Report{StartDate: from, EndDate: to, Sent: []UnifiedBill{}, Processed: []UnifiedBill{}}
	for _, u := range queue {
		l := u.LifecycleState()
		if inRange(l.SentAt) {
			r.Sent = append(r.Sent, u)
		}
		if inRange(l.ProcessedAt) {
			r.Processed = append(r.Processed, u)
		}
	}
	return r
}
