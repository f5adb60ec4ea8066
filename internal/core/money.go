// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between cents and their decimal representation.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. Zero is a valid amount; negative
// values and malformed input return ErrInvalidAmount.
//
// Examples:
//   ParseDecimalToCents("12.34") -> 1234, nil
//   ParseDecimalToCents("12,34") -> 1234, nil
//   ParseDecimalToCents("12.345") -> 1235, nil (rounds up)
//   ParseDecimalToCents("0") -> 0, nil
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" && fracPart == "" {
		return 0, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) || r > unicode.MaxASCII {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv >= maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// Take first two fractional digits; then half-up rounding on third
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return iv*100 + fracCents, nil
}

// CentsFromFloat rounds a float amount half away from zero to cents.
// Only used to read amounts that were written as exponent-form JSON numbers.
func CentsFromFloat(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f >= math.MaxInt64/100 {
		return 0, ErrInvalidAmount
	}
	return int64(math.Round(f * 100)), nil
}

// String renders the amount with exactly two fractional digits, e.g. "150.00".
func (m Money) String() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	frac := strconv.FormatInt(cents%100, 10)
	if len(frac) == 1 {
		frac = "0" + frac
	}
	return sign + strconv.FormatInt(cents/100, 10) + "." + frac
}

// Format renders the amount followed by a currency label ("150.00 TL").
func (m Money) Format(label string) string {
	if label == "" {
		return m.String()
	}
	return m.String() + " " + label
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// MarshalJSON writes the amount as a plain JSON number ("150.50").
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	cents, err := ParseDecimalToCents(s)
	if err != nil {
		// Exponent forms like 1e3 are valid JSON numbers
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return ErrInvalidAmount
		}
		if cents, err = CentsFromFloat(f); err != nil {
			return err
		}
	}
	m.Cents = cents
	return nil
}
