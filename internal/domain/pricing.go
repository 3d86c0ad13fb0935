package domain

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidPromoCode is returned by ResolvePromo for a code that was entered
// but is not recognized.
var ErrInvalidPromoCode = errors.New("invalid promo code")

// promoCodes maps a normalized promo code to its discount rate.
var promoCodes = map[string]float64{
	"SAVE10": 0.10,
}

// PromoState is the promo code applied to a cart. The zero value means no
// code was entered.
type PromoState struct {
	Code         string  `json:"code"`
	DiscountRate float64 `json:"discount_rate"`
}

// NormalizePromoCode trims whitespace and upper-cases a user-entered code.
func NormalizePromoCode(input string) string {
	return strings.ToUpper(strings.TrimSpace(input))
}

// ResolvePromo looks up a user-entered promo code. An empty input resolves to
// the zero PromoState with no error. An unrecognized code resolves to a zero
// discount rate and ErrInvalidPromoCode.
func ResolvePromo(input string) (PromoState, error) {
	code := NormalizePromoCode(input)
	if code == "" {
		return PromoState{}, nil
	}
	rate, ok := promoCodes[code]
	if !ok {
		return PromoState{}, ErrInvalidPromoCode
	}
	return PromoState{Code: code, DiscountRate: rate}, nil
}

// Totals is the pricing summary of a cart. Amounts carry no currency.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
}

// ComputeTotals prices the line items and applies the promo discount rate.
func ComputeTotals(items []CartLineItem, promo PromoState) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		price := decimal.NewFromFloat(sanitizePrice(item.Product.Price))
		qty := decimal.NewFromInt(int64(sanitizeQuantity(item.Quantity)))
		subtotal = subtotal.Add(price.Mul(qty))
	}

	discount := subtotal.Mul(decimal.NewFromFloat(sanitizeRate(promo.DiscountRate)))

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		Total:          subtotal.Sub(discount),
	}
}

func sanitizePrice(price float64) float64 {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return 0
	}
	return price
}

func sanitizeQuantity(quantity int) int {
	if quantity < 0 {
		return 0
	}
	return quantity
}

func sanitizeRate(rate float64) float64 {
	switch {
	case math.IsNaN(rate) || rate < 0:
		return 0
	case rate > 1:
		return 1
	default:
		return rate
	}
}
