package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ZeroRupees is returned for zero, empty and unparseable amounts.
const ZeroRupees = "Rupees Zero Only"

var (
	ones = []string{
		"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
		"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen",
		"seventeen", "eighteen", "nineteen",
	}
	tens = []string{
		"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety",
	}
)

// Indian grouping: crore (10^7), lakh (10^5), thousand, hundred.
var scales = []struct {
	value int64
	name  string
}{
	{10_000_000, "crore"},
	{100_000, "lakh"},
	{1_000, "thousand"},
	{100, "hundred"},
}

// ParseAmount strips thousands separators and parses raw as a decimal.
// ok is false for empty or unparseable input, in which case the amount is zero.
func ParseAmount(raw string) (amount decimal.Decimal, ok bool) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// AmountInWords renders raw as "Rupees <Words> Only" using Indian numbering.
// Anything that does not parse, and zero itself, gives ZeroRupees.
// Fractions are rounded to paise and read digit by digit after "Point".
func AmountInWords(raw string) string {
	amount, _ := ParseAmount(raw)
	amount = amount.Round(2)
	if amount.IsZero() {
		return ZeroRupees
	}

	var parts []string
	if amount.IsNegative() {
		parts = append(parts, "minus")
		amount = amount.Neg()
	}

	whole := amount.Truncate(0)
	parts = append(parts, integerWords(whole))

	if frac := fractionDigits(amount.Sub(whole)); frac != "" {
		parts = append(parts, "point")
		for _, d := range frac {
			parts = append(parts, ones[d-'0'])
		}
	}

	words := cases.Title(language.Und).String(strings.Join(parts, " "))
	return "Rupees " + words + " Only"
}

// integerWords spells a non-negative whole amount.
// Values beyond int64 are spelled by recursing on the crore count.
func integerWords(n decimal.Decimal) string {
	crore := decimal.NewFromInt(10_000_000)
	if n.GreaterThanOrEqual(crore.Mul(crore)) {
		q := n.Div(crore).Truncate(0)
		r := n.Sub(q.Mul(crore))
		out := integerWords(q) + " crore"
		if r.IsPositive() {
			out += " " + integerWords(r)
		}
		return out
	}
	return spell(n.IntPart())
}

func spell(n int64) string {
	if n < 20 {
		return ones[n]
	}
	if n < 100 {
		if n%10 == 0 {
			return tens[n/10]
		}
		return tens[n/10] + " " + ones[n%10]
	}
	for _, s := range scales {
		if n >= s.value {
			out := spell(n/s.value) + " " + s.name
			if rest := n % s.value; rest > 0 {
				out += " " + spell(rest)
			}
			return out
		}
	}
	return ""
}

// fractionDigits returns the digits after the decimal point of a value in
// [0, 1) with two decimal places, trailing zeros removed.
func fractionDigits(frac decimal.Decimal) string {
	if frac.IsZero() {
		return ""
	}
	s := frac.StringFixed(2)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimRight(s, "0")
}
