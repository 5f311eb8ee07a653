// Package billno derives bill numbers from the bills already on record.
//
// There is no stored counter: the next number for a period is one more
// than the largest suffix among existing numbers of that period, so
// manual edits and deletions never leave the sequence out of step.
package billno

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/fooddept/fdbms/internal/money"
)

// Scheme is a bill numbering format.
type Scheme struct {
	name   string
	format func(period time.Time, n int) string
	suffix func(number string, period time.Time) (int, bool)
}

// Name identifies the scheme in logs and metrics.
func (s Scheme) Name() string { return s.name }

// Transport numbers transportation bills as "M-1/Oct 2025/3".
var Transport = Scheme{
	name: "transport",
	format: func(period time.Time, n int) string {
		return fmt.Sprintf("M-1/%s/%d", transportPeriod(period), n)
	},
	suffix: func(number string, period time.Time) (int, bool) {
		parts := strings.Split(number, "/")
		if len(parts) != 3 || parts[0] != "M-1" || parts[1] != transportPeriod(period) {
			return 0, false
		}
		return money.ParseInt(parts[2]), true
	},
}

var grindingPattern = regexp.MustCompile(`\((\d{2})/(\d{4})/(\d+)\)`)

// Grinding numbers grinding bills as "(10/2025/3)". The number may carry
// other text around the parenthesised part.
var Grinding = Scheme{
	name: "grinding",
	format: func(period time.Time, n int) string {
		return fmt.Sprintf("(%02d/%d/%d)", int(period.Month()), period.Year(), n)
	},
	suffix: func(number string, period time.Time) (int, bool) {
		m := grindingPattern.FindStringSubmatch(number)
		if m == nil {
			return 0, false
		}
		if m[1] != fmt.Sprintf("%02d", int(period.Month())) || m[2] != fmt.Sprintf("%d", period.Year()) {
			return 0, false
		}
		return money.ParseInt(m[3]), true
	},
}

func transportPeriod(t time.Time) string {
	return t.Format("Jan 2006")
}

// Next returns the number following the largest suffix issued in the
// period of the given date, or number 1 when none was. Numbers of other
// periods and malformed numbers are ignored.
func (s Scheme) Next(numbers []string, period time.Time) string {
	highest := 0
	for _, number := range numbers {
		n, ok := s.suffix(number, period)
		if ok && n > highest {
			highest = n
		}
	}
	return s.format(period, highest+1)
}

// Numbered is a record that carries a bill number.
type Numbered interface {
	Number() string
}

// NextFor is Next over a collection of bills.
func NextFor[T Numbered](s Scheme, bills []T, period time.Time) string {
	numbers := make([]string, len(bills))
	for i, b := range bills {
		numbers[i] = b.Number()
	}
	return s.Next(numbers, period)
}
