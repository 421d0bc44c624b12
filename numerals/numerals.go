// Package numerals converts between Persian/Arabic numeral strings and
// canonical integers. Techsiro renders prices with Eastern Arabic digits
// and the Arabic thousands separator (e.g. "۶۳٬۶۰۰٬۰۰۰"), so every price
// that leaves the extractor goes through this package.
package numerals

import (
	"fmt"
	"strconv"
	"strings"
)

// ThousandsSeparator is the Arabic thousands mark (U+066C) used by the
// target site between digit groups.
const ThousandsSeparator = '٬'

var persianDigits = [10]rune{'۰', '۱', '۲', '۳', '۴', '۵', '۶', '۷', '۸', '۹'}

// ToASCIIDigits maps Persian (۰-۹) and Arabic-Indic (٠-٩) digits to their
// ASCII equivalents. Every other rune passes through unchanged, so the
// function is total and idempotent.
func ToASCIIDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= '۰' && r <= '۹': // Extended Arabic-Indic (Persian)
			b.WriteRune('0' + (r - '۰'))
		case r >= '٠' && r <= '٩': // Arabic-Indic
			b.WriteRune('0' + (r - '٠'))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ToCanonicalInteger normalizes digit scripts, strips everything that is not
// an ASCII digit (thousands separators, spaces, currency words, stray
// punctuation) and parses the remainder as an unsigned base-10 integer.
// It fails only when no digits remain.
func ToCanonicalInteger(s string) (int64, error) {
	ascii := ToASCIIDigits(s)

	var digits strings.Builder
	for _, r := range ascii {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	if digits.Len() == 0 {
		return 0, fmt.Errorf("no digits found in %q", s)
	}

	n, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %q as integer: %v", digits.String(), err)
	}

	return n, nil
}

// FormatGrouped renders a non-negative integer as Persian digits grouped in
// threes with the Arabic thousands separator, the way the site displays
// prices. Round-trips through ToCanonicalInteger.
func FormatGrouped(n int64) string {
	if n < 0 {
		n = 0
	}

	ascii := strconv.FormatInt(n, 10)

	var b strings.Builder
	for i, r := range ascii {
		if i > 0 && (len(ascii)-i)%3 == 0 {
			b.WriteRune(ThousandsSeparator)
		}
		b.WriteRune(persianDigits[r-'0'])
	}
	return b.String()
}

// StripSeparators removes thousands separators (both the Arabic mark and the
// ASCII comma) while preserving the digit script of the input.
func StripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ThousandsSeparator || r == ',' {
			return -1
		}
		return r
	}, s)
}
