// Package isbn validates and extracts International Standard Book
// Numbers. Validity is a pure function of the digits (checksum);
// plausibility additionally rejects placeholder patterns that pass the
// checksum but never identify a real book.
package isbn

import (
	"strings"
	"unicode"
)

// Normalize removes hyphens, spaces and common prefixes from an ISBN,
// keeping only digits and X (the ISBN-10 check digit), uppercased.
func Normalize(value string) string {
	value = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(value)), "ISBN:")
	value = strings.TrimPrefix(value, "ISBN")
	value = strings.TrimSpace(value)

	var b strings.Builder
	for _, r := range value {
		if unicode.IsDigit(r) || r == 'X' || r == 'x' {
			b.WriteRune(r)
		}
	}
	return strings.ToUpper(b.String())
}

// Valid10 validates an ISBN-10 checksum.
// ISBN-10 uses modulo 11 with weights 10,9,8,7,6,5,4,3,2,1; the check
// digit may be X, valued 10.
func Valid10(isbn string) bool {
	if len(isbn) != 10 {
		return false
	}

	var sum int
	for i, r := range isbn {
		var digit int
		switch {
		case r == 'X' || r == 'x':
			if i != 9 {
				return false // X only valid as check digit
			}
			digit = 10
		case unicode.IsDigit(r):
			digit = int(r - '0')
		default:
			return false
		}
		sum += digit * (10 - i)
	}
	return sum%11 == 0
}

// Valid13 validates an ISBN-13 checksum.
// ISBN-13 must carry a 978 or 979 bookland prefix and uses alternating
// weights of 1 and 3.
func Valid13(isbn string) bool {
	if len(isbn) != 13 {
		return false
	}
	if !strings.HasPrefix(isbn, "978") && !strings.HasPrefix(isbn, "979") {
		return false
	}

	var sum int
	for i, r := range isbn[:12] {
		if !unicode.IsDigit(r) {
			return false
		}
		digit := int(r - '0')
		if i%2 == 0 {
			sum += digit
		} else {
			sum += digit * 3
		}
	}
	check := (10 - sum%10) % 10
	return int(isbn[12]-'0') == check
}

// Valid reports whether the normalized value is a checksum-valid ISBN-10
// or ISBN-13.
func Valid(value string) bool {
	n := Normalize(value)
	return Valid10(n) || Valid13(n)
}

// Placeholder prefixes that show up in templates and scanner noise.
var placeholderPrefixes = []string{"0000", "1111", "1234", "9999"}

// Plausible reports whether the value is a valid ISBN that is also not an
// obvious placeholder: all-identical digits and well-known dummy prefixes
// are rejected regardless of checksum.
func Plausible(value string) bool {
	n := Normalize(value)
	if len(n) != 10 && len(n) != 13 {
		return false
	}
	if allSame(n) {
		return false
	}
	for _, p := range placeholderPrefixes {
		if strings.HasPrefix(n, p) {
			return false
		}
	}
	return Valid10(n) || Valid13(n)
}

func allSame(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return len(s) > 0
}

func distinctDigits(s string) int {
	seen := map[byte]bool{}
	for i := 0; i < len(s); i++ {
		seen[s[i]] = true
	}
	return len(seen)
}
