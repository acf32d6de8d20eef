// Package pricing converts between pt-BR currency text ("R$ 4.299,00") and numeric prices.
package pricing

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// SentinelPrice demotes an offer whose price could not be read so it can never win
const SentinelPrice = 999999.0

// ErrUnparseable is returned when a price string does not hold a number
var ErrUnparseable = errors.New("unparseable price")

// noiseTokens are stripped before the number is read
var noiseTokens = []string{"r$", "brl", "agora"}

// ParsePrice reads a pt-BR formatted price, where "." groups thousands and "," marks decimals.
// Currency symbols, noise words and surrounding text are ignored.
func ParsePrice(raw string) (float64, error) {
	text := strings.ToLower(raw)
	for _, token := range noiseTokens {
		text = strings.ReplaceAll(text, token, "")
	}

	text = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)

	// A sign ahead of the number would be lost by the trim below
	if first := strings.IndexFunc(text, unicode.IsDigit); first > 0 && strings.ContainsAny(text[:first], "-−") {
		return 0, fmt.Errorf("%w: %q", ErrUnparseable, raw)
	}

	// Drop leading/trailing text such as "à vista" or "a partir de"
	text = strings.TrimFunc(text, func(r rune) bool {
		return !unicode.IsDigit(r)
	})
	if text == "" {
		return 0, fmt.Errorf("%w: %q", ErrUnparseable, raw)
	}

	for _, r := range text {
		if !unicode.IsDigit(r) && r != '.' && r != ',' {
			return 0, fmt.Errorf("%w: %q", ErrUnparseable, raw)
		}
	}

	text = strings.ReplaceAll(text, ".", "")
	text = strings.Replace(text, ",", ".", 1)

	value, err := decimal.NewFromString(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnparseable, raw)
	}

	price, _ := value.Float64()
	return price, nil
}

// IsValid reports whether a price can take part in the cheapest-offer comparison
func IsValid(price float64) bool {
	return price > 0 && !math.IsNaN(price) && !math.IsInf(price, 0)
}

// FormatBRL renders a price for display as "R$ 1.234,56"
func FormatBRL(price float64) string {
	value := decimal.NewFromFloat(price).Round(2)

	sign := ""
	if value.IsNegative() {
		sign = "-"
		value = value.Abs()
	}

	fixed := value.StringFixed(2)
	integer, cents, _ := strings.Cut(fixed, ".")

	return "R$ " + sign + groupThousands(integer) + "," + cents
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
