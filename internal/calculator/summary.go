package calculator

import (
	"sort"
	"strconv"

	"github.com/fooddept/fdbms/internal/models"
	"github.com/fooddept/fdbms/internal/money"
)

// BillFilter narrows a statement to one contractor or mill and a bill date
// range. Zero values match everything; dates compare as YYYY-MM-DD strings.
type BillFilter struct {
	PartyID   int64  `json:"partyId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func (f BillFilter) matchDate(date string) bool {
	if f.StartDate != "" && date < f.StartDate {
		return false
	}
	if f.EndDate != "" && date > f.EndDate {
		return false
	}
	return true
}

// PartyTotal aggregates the bills of one contractor, mill or month.
type PartyTotal struct {
	Key             string  `json:"key"`
	Name            string  `json:"name"`
	TotalBills      int     `json:"totalBills"`
	GrandTotal      float64 `json:"grandTotal"`
	TotalDeductions float64 `json:"totalDeductions"`
	NetAmount       float64 `json:"netAmount"`
}

// Statement is the office summary over a set of bills.
type Statement struct {
	GrandTotal      float64      `json:"grandTotal"`
	TotalDeductions float64      `json:"totalDeductions"`
	NetAmount       float64      `json:"netAmount"`
	ByParty         []PartyTotal `json:"byParty"`
	ByMonth         []PartyTotal `json:"byMonth"`
}

type accumulator struct {
	order  []string
	totals map[string]*PartyTotal
}

func newAccumulator() *accumulator {
	return &accumulator{totals: make(map[string]*PartyTotal)}
}

func (a *accumulator) add(key, name string, gross, deductions, net float64) {
	t, ok := a.totals[key]
	if !ok {
		t = &PartyTotal{Key: key, Name: name}
		a.totals[key] = t
		a.order = append(a.order, key)
	}
	t.TotalBills++
	t.GrandTotal = money.Sum(t.GrandTotal, gross)
	t.TotalDeductions = money.Sum(t.TotalDeductions, deductions)
	t.NetAmount = money.Sum(t.NetAmount, net)
}

func (a *accumulator) list() []PartyTotal {
	out := make([]PartyTotal, 0, len(a.order))
	for _, k := range a.order {
		out = append(out, *a.totals[k])
	}
	return out
}

// SummarizeTransport builds the contractor statement for transportation
// bills. Contractors are ordered by net amount, largest first; months are
// newest first. Bills without a contractor count toward the overall and
// monthly totals only.
func SummarizeTransport(bills []models.TransportBill, filter BillFilter) Statement {
	parties := newAccumulator()
	months := newAccumulator()
	var st Statement

	for _, b := range bills {
		if filter.PartyID != 0 && b.ContractorID != filter.PartyID {
			continue
		}
		if !filter.matchDate(b.BillDate) {
			continue
		}

		st.GrandTotal = money.Sum(st.GrandTotal, b.GrandTotal)
		st.TotalDeductions = money.Sum(st.TotalDeductions, b.TotalDeductions)
		st.NetAmount = money.Sum(st.NetAmount, b.NetAmount)

		if b.ContractorID != 0 {
			parties.add(formatID(b.ContractorID), b.ContractorName, b.GrandTotal, b.TotalDeductions, b.NetAmount)
		}
		month := monthOf(b.BillDate)
		months.add(month, month, b.GrandTotal, b.TotalDeductions, b.NetAmount)
	}

	st.ByParty = sortByNet(parties.list())
	st.ByMonth = sortByKeyDesc(months.list())
	return st
}

// SummarizeGrinding builds the mill statement for grinding bills. A mill's
// net amount is what it finally receives.
func SummarizeGrinding(bills []models.GrindingBill, filter BillFilter) Statement {
	parties := newAccumulator()
	months := newAccumulator()
	var st Statement

	for _, b := range bills {
		if filter.PartyID != 0 && (b.FlourMillID == nil || *b.FlourMillID != filter.PartyID) {
			continue
		}
		if !filter.matchDate(b.BillDate) {
			continue
		}

		deductions := money.Sum(b.TotalDeduction, b.AmountToDirector)
		st.GrandTotal = money.Sum(st.GrandTotal, b.TotalAmount)
		st.TotalDeductions = money.Sum(st.TotalDeductions, deductions)
		st.NetAmount = money.Sum(st.NetAmount, b.FinalAmountToMill)

		if b.FlourMillID != nil {
			parties.add(formatID(*b.FlourMillID), b.FlourMillName, b.TotalAmount, deductions, b.FinalAmountToMill)
		}
		month := monthOf(b.BillDate)
		months.add(month, month, b.TotalAmount, deductions, b.FinalAmountToMill)
	}

	st.ByParty = sortByNet(parties.list())
	st.ByMonth = sortByKeyDesc(months.list())
	return st
}

func sortByNet(totals []PartyTotal) []PartyTotal {
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].NetAmount > totals[j].NetAmount
	})
	return totals
}

func sortByKeyDesc(totals []PartyTotal) []PartyTotal {
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Key > totals[j].Key
	})
	return totals
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// monthOf returns the YYYY-MM part of a bill date.
func monthOf(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}
