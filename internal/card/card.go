// Package card implements number validation, brand detection and display
// formatting for payment cards.
package card

import "strings"

// Brand identifies the card network derived from the number prefix.
type Brand string

const (
	Visa       Brand = "visa"
	Mastercard Brand = "mastercard"
	Amex       Brand = "amex"
	Discover   Brand = "discover"
	JCB        Brand = "jcb"
	Unknown    Brand = "unknown"
)

// Digits strips everything but decimal digits from the input.
func Digits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// LuhnValid reports whether the number passes the Luhn checksum. Numbers
// shorter than 13 or longer than 19 digits are rejected outright.
func LuhnValid(number string) bool {
	digits := Digits(number)
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// Detect classifies the number by its prefix. The first matching rule wins;
// the rules are mutually exclusive by construction.
func Detect(number string) Brand {
	digits := Digits(number)
	switch {
	case strings.HasPrefix(digits, "4"):
		return Visa
	case len(digits) >= 2 && digits[0] == '5' && digits[1] >= '1' && digits[1] <= '5':
		return Mastercard
	case strings.HasPrefix(digits, "34") || strings.HasPrefix(digits, "37"):
		return Amex
	case strings.HasPrefix(digits, "6011") || strings.HasPrefix(digits, "65"):
		return Discover
	case isJCB(digits):
		return JCB
	default:
		return Unknown
	}
}

// isJCB matches 2131/1800 prefixed 15-digit numbers and 35xxx prefixed
// 16-digit numbers.
func isJCB(digits string) bool {
	if len(digits) == 15 && (strings.HasPrefix(digits, "2131") || strings.HasPrefix(digits, "1800")) {
		return true
	}
	return len(digits) == 16 && strings.HasPrefix(digits, "35")
}

// FormatNumber groups digits for display: 4-6-5 for amex, 4-4-4-4... for
// everything else. Formatting an already-formatted value yields the same
// string.
func FormatNumber(raw string) string {
	digits := Digits(raw)
	if digits == "" {
		return ""
	}
	if Detect(digits) == Amex {
		return formatGroups(digits, []int{4, 6, 5})
	}
	var groups []string
	for i := 0; i < len(digits); i += 4 {
		end := i + 4
		if end > len(digits) {
			end = len(digits)
		}
		groups = append(groups, digits[i:end])
	}
	return strings.Join(groups, " ")
}

func formatGroups(digits string, sizes []int) string {
	var groups []string
	rest := digits
	for _, size := range sizes {
		if rest == "" {
			break
		}
		if size > len(rest) {
			size = len(rest)
		}
		groups = append(groups, rest[:size])
		rest = rest[size:]
	}
	if rest != "" {
		groups = append(groups, rest)
	}
	return strings.Join(groups, " ")
}

// FormatExpiry normalises an MM/YY expiry as it is typed: digits only, at most
// four, with the slash inserted once a third digit is present.
func FormatExpiry(raw string) string {
	digits := Digits(raw)
	if len(digits) > 4 {
		digits = digits[:4]
	}
	if len(digits) <= 2 {
		return digits
	}
	return digits[:2] + "/" + digits[2:]
}

// Last4 returns the final four digits of the number, or the full digit string
// when fewer than four are present.
func Last4(number string) string {
	digits := Digits(number)
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}
