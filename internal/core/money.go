// Package core provides money parsing and handling utilities.
//
// Amounts are stored as integer cents and exchange rates as integers
// scaled by RateScale, so arithmetic never touches floating point until
// a value is converted for display.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseAmountToCents converts a decimal string to cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// performs half-up rounding on the third decimal place. Zero is a valid
// amount (an expense may be created before any estimate exists).
// Returns an error for invalid formats or signed values.
//
// Examples:
//
//	ParseAmountToCents("12.34") -> 1234, nil
//	ParseAmountToCents("12,34") -> 1234, nil
//	ParseAmountToCents("12.345") -> 1234, nil (rounds down)
//	ParseAmountToCents("12.346") -> 1235, nil (rounds up)
func ParseAmountToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only unsigned values allowed
		return 0, ErrInvalidAmount
	}
	// Split into integer and fractional part
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	// Convert integer part - check for overflow
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// Take first two fractional digits; then half-up rounding on third
	var fracCents int64 = 0
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 {
				if fracPart[2] >= '5' {
					fracCents++
				}
			}
		}
	}
	return iv*100 + fracCents, nil
}

// Units returns the amount in major currency units as a float64 for
// display purposes. Use cents for calculations to avoid floating-point
// precision issues.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Float returns the real-valued rate (9200 -> 0.92).
func (r Rate) Float() float64 {
	return float64(r) / RateScale
}

func (r Rate) String() string {
	return strconv.FormatFloat(r.Float(), 'f', 4, 64)
}
