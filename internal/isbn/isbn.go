// Package isbn converts and validates International Standard Book Numbers.
//
// The ratings-catalog exports carry a mix of ISBN-10 and ISBN-13 values;
// everything downstream is keyed by ISBN-13, so loaders normalize through
// this package before touching the database.
package isbn

import "strings"

// Normalize13 returns the canonical ISBN-13 for a raw identifier, converting
// ISBN-10 input when necessary. The second return value is false when the
// input is neither a 13-digit ISBN nor a convertible ISBN-10.
func Normalize13(raw string) (string, bool) {
	cleaned := stripNonISBN(raw)
	switch len(cleaned) {
	case 13:
		if !digitsOnly(cleaned) {
			return "", false
		}
		return cleaned, true
	case 10:
		return From10(cleaned)
	default:
		return "", false
	}
}

// From10 converts an ISBN-10 to its ISBN-13 equivalent by prefixing 978 and
// recomputing the check digit. The ISBN-10 check digit (which may be X) is
// discarded; it is not validated, matching how the catalog exports treat it.
func From10(isbn10 string) (string, bool) {
	cleaned := stripNonISBN(isbn10)
	if len(cleaned) != 10 {
		return "", false
	}
	if !digitsOnly(cleaned[:9]) {
		return "", false
	}
	body := "978" + cleaned[:9]
	return body + string(rune('0'+CheckDigit13(body))), true
}

// CheckDigit13 computes the ISBN-13 check digit for a 12-digit body.
// Digits are weighted 1,3,1,3,... from the left.
func CheckDigit13(body string) int {
	sum := 0
	for i := 0; i < len(body) && i < 12; i++ {
		d := int(body[i] - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	return (10 - sum%10) % 10
}

// Valid13 reports whether the value is a well-formed ISBN-13 with a correct
// check digit.
func Valid13(value string) bool {
	cleaned := stripNonISBN(value)
	if len(cleaned) != 13 || !digitsOnly(cleaned) {
		return false
	}
	return int(cleaned[12]-'0') == CheckDigit13(cleaned[:12])
}

func stripNonISBN(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == 'X' || r == 'x' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
