package format

import (
	"fmt"
	"strings"
	"time"
)

// Price formats a whole-rupee amount for display.
// Example: Price(12345) => "PKR 12,345"
func Price(amount int64) string {
	return "PKR " + thousandSep(amount)
}

// PriceIn formats an amount in the given currency code. Prices are
// whole units; the storefront does not carry paisa.
func PriceIn(amount int64, currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "PKR"
	}
	return currency + " " + thousandSep(amount)
}

func thousandSep(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var out strings.Builder
	for i, c := range s {
		if i != 0 && (len(s)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(c)
	}
	if neg {
		return "-" + out.String()
	}
	return out.String()
}

// Date renders order and delivery dates in the storefront's short form.
func Date(t time.Time) string {
	return t.Format("Jan 2, 2006")
}
