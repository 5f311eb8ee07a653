// Package money holds the rounding and coercion rules shared by every
// billing calculation.
package money

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Round2 rounds an amount to two decimal places, half away from zero.
// Non-finite values round to 0.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Sum adds already-rounded amounts without reintroducing float drift.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.InexactFloat64()
}

// Sub returns a - b computed in decimal.
func Sub(a, b float64) float64 {
	return decimal.NewFromFloat(Finite(a)).Sub(decimal.NewFromFloat(Finite(b))).InexactFloat64()
}

// Finite returns v, or 0 when v is NaN or infinite.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Float coerces a loosely typed value to a finite float64. Anything that
// does not parse becomes 0; callers rely on this never failing.
func Float(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return Finite(n)
	case float32:
		return Finite(float64(n))
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case bool:
		if n {
			return 1
		}
		return 0
	case string:
		return ParseFloat(n)
	default:
		return 0
	}
}

// ParseFloat reads the longest numeric prefix of s, so "12.5kg" is 12.5
// and "abc" is 0.
func ParseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Finite(f)
	}
	end := numericPrefix(s, true)
	if end == 0 {
		return 0
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return Finite(f)
}

// Int coerces a loosely typed value to an integer, truncating any
// fractional part.
func Int(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case string:
		return ParseInt(n)
	default:
		return int(math.Trunc(Float(v)))
	}
}

// ParseInt reads the leading integer of s ("7 bags" is 7). Invalid input
// is 0.
func ParseInt(s string) int {
	s = strings.TrimSpace(s)
	end := numericPrefix(s, false)
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// numericPrefix returns the length of the leading number in s. With
// fraction set, a single decimal point and exponent are accepted.
func numericPrefix(s string, fraction bool) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if fraction && i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	if fraction && i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && s[k] >= '0' && s[k] <= '9' {
			k++
		}
		if k > j {
			i = k
		}
	}
	return i
}
