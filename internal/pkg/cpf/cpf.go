// Package cpf normalizes and validates Brazilian CPF numbers.
package cpf

import (
	"errors"
	"strings"
)

var ErrInvalid = errors.New("invalid CPF")

// Normalize keeps only the digits of s. Spreadsheets often drop leading
// zeros, so numbers with 9 or 10 digits are left-padded to 11.
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) >= 9 && len(digits) < 11 {
		digits = strings.Repeat("0", 11-len(digits)) + digits
	}
	return digits
}

// Valid reports whether s, after normalization, is a CPF with correct
// check digits. Sequences of a single repeated digit are rejected.
func Valid(s string) bool {
	d := Normalize(s)
	if len(d) != 11 {
		return false
	}
	if strings.Count(d, d[:1]) == 11 {
		return false
	}

	return checkDigit(d[:9], 10) == d[9] && checkDigit(d[:10], 11) == d[10]
}

// Parse normalizes s and validates it.
func Parse(s string) (string, error) {
	d := Normalize(s)
	if !Valid(d) {
		return "", ErrInvalid
	}
	return d, nil
}

// Format renders an 11 digit CPF as 000.000.000-00.
func Format(s string) string {
	d := Normalize(s)
	if len(d) != 11 {
		return s
	}
	return d[0:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:11]
}

func checkDigit(digits string, weight int) byte {
	sum := 0
	for _, r := range digits {
		sum += int(r-'0') * weight
		weight--
	}
	rest := (sum * 10) % 11
	if rest == 10 {
		rest = 0
	}
	return byte('0' + rest)
}
