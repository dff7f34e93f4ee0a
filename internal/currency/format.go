package currency

import (
	"fmt"
	"strconv"
	"strings"
)

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CAD": "C$",
	"AUD": "A$",
}

// FormatAmount renders cents for display: symbol prefix, two decimals,
// thousands separators. Codes outside the symbol table are printed as
// the code itself followed by a space ("XXX 5.00").
func FormatAmount(amountCents int64, code string) string {
	prefix, ok := currencySymbols[code]
	if !ok {
		prefix = code + " "
	}

	negative := amountCents < 0
	if negative {
		amountCents = -amountCents
	}

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteString(prefix)
	b.WriteString(groupThousands(amountCents / 100))
	fmt.Fprintf(&b, ".%02d", amountCents%100)
	return b.String()
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
