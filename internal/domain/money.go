package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SymbolPosition says where the currency symbol goes relative to the amount.
type SymbolPosition string

// Symbol positions.
const (
	PositionBefore SymbolPosition = "before"
	PositionAfter  SymbolPosition = "after"
)

// DefaultLocale is used when a requested locale has no currency format.
const DefaultLocale = "en"

// CurrencyFormat describes how a locale renders money.
type CurrencyFormat struct {
	Symbol   string         `json:"symbol"`
	Position SymbolPosition `json:"position"`
}

var currencyFormats = map[string]CurrencyFormat{
	"en": {Symbol: "$", Position: PositionBefore},
	"ar": {Symbol: "ر.س", Position: PositionAfter},
}

// SupportedLocales returns the locales that have a currency format, with the
// default locale first.
func SupportedLocales() []string {
	return []string{"en", "ar"}
}

// CurrencyFormatFor returns the currency format for locale, falling back to
// DefaultLocale. Region subtags are ignored ("en-GB" uses "en").
func CurrencyFormatFor(locale string) CurrencyFormat {
	base := strings.ToLower(locale)
	if i := strings.IndexAny(base, "-_"); i >= 0 {
		base = base[:i]
	}
	if f, ok := currencyFormats[base]; ok {
		return f
	}
	return currencyFormats[DefaultLocale]
}

// FormatMoney renders amount with exactly two decimal places and the
// currency symbol of f.
func FormatMoney(amount decimal.Decimal, f CurrencyFormat) string {
	value := amount.StringFixed(2)
	if f.Position == PositionAfter {
		return value + " " + f.Symbol
	}
	return f.Symbol + value
}
