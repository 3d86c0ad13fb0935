package domain

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineItem(id string, price float64, qty int) CartLineItem {
	return CartLineItem{Product: Product{ID: id, Title: "Product " + id, Price: price}, Quantity: qty}
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(expected).Equal(actual), "expected %s, got %s", expected, actual)
}

// ============================================================================
// ComputeTotals
// ============================================================================

func TestComputeTotals_NoPromo(t *testing.T) {
	items := []CartLineItem{lineItem("a", 100, 2), lineItem("b", 50, 1)}

	totals := ComputeTotals(items, PromoState{})

	assertDecimal(t, "250", totals.Subtotal)
	assertDecimal(t, "0", totals.DiscountAmount)
	assertDecimal(t, "250", totals.Total)
}

func TestComputeTotals_WithSave10(t *testing.T) {
	items := []CartLineItem{lineItem("a", 100, 2), lineItem("b", 50, 1)}
	promo, err := ResolvePromo("SAVE10")
	require.NoError(t, err)

	totals := ComputeTotals(items, promo)

	assertDecimal(t, "250", totals.Subtotal)
	assertDecimal(t, "25", totals.DiscountAmount)
	assertDecimal(t, "225", totals.Total)
}

func TestComputeTotals_FractionalPrices(t *testing.T) {
	items := []CartLineItem{lineItem("a", 9.99, 3), lineItem("b", 0.1, 2)}

	totals := ComputeTotals(items, PromoState{Code: "SAVE10", DiscountRate: 0.10})

	assertDecimal(t, "30.17", totals.Subtotal)
	assertDecimal(t, "3.017", totals.DiscountAmount)
	assertDecimal(t, "27.153", totals.Total)
}

func TestComputeTotals_EmptyCart(t *testing.T) {
	totals := ComputeTotals(nil, PromoState{Code: "SAVE10", DiscountRate: 0.10})

	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.DiscountAmount.IsZero())
	assert.True(t, totals.Total.IsZero())
}

func TestComputeTotals_CoercesUnpriceableValuesToZero(t *testing.T) {
	items := []CartLineItem{
		lineItem("nan", math.NaN(), 2),
		lineItem("inf", math.Inf(1), 1),
		lineItem("neg-price", -5, 1),
		lineItem("neg-qty", 10, -3),
		lineItem("zero-qty", 10, 0),
		lineItem("ok", 20, 1),
	}

	totals := ComputeTotals(items, PromoState{})

	assertDecimal(t, "20", totals.Subtotal)
	assertDecimal(t, "20", totals.Total)
}

func TestComputeTotals_ClampsDiscountRate(t *testing.T) {
	items := []CartLineItem{lineItem("a", 100, 1)}

	over := ComputeTotals(items, PromoState{DiscountRate: 1.5})
	assertDecimal(t, "100", over.DiscountAmount)
	assertDecimal(t, "0", over.Total)

	under := ComputeTotals(items, PromoState{DiscountRate: -0.2})
	assertDecimal(t, "0", under.DiscountAmount)
	assertDecimal(t, "100", under.Total)
}

func TestComputeTotals_DoesNotMutateInput(t *testing.T) {
	items := []CartLineItem{lineItem("a", 100, 2)}
	_ = ComputeTotals(items, PromoState{DiscountRate: 0.1})
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 100.0, items[0].Product.Price)
}

// ============================================================================
// ResolvePromo
// ============================================================================

func TestResolvePromo_CaseAndWhitespaceInsensitive(t *testing.T) {
	for _, input := range []string{"SAVE10", "save10", " SAVE10 ", "\tSave10\n"} {
		promo, err := ResolvePromo(input)
		require.NoError(t, err, input)
		assert.Equal(t, PromoState{Code: "SAVE10", DiscountRate: 0.10}, promo, input)
	}
}

func TestResolvePromo_EmptyMeansNoCode(t *testing.T) {
	for _, input := range []string{"", "   "} {
		promo, err := ResolvePromo(input)
		assert.NoError(t, err)
		assert.Equal(t, PromoState{}, promo)
	}
}

func TestResolvePromo_UnknownCodeIsInvalid(t *testing.T) {
	promo, err := ResolvePromo("SAVE20")
	assert.ErrorIs(t, err, ErrInvalidPromoCode)
	assert.Equal(t, 0.0, promo.DiscountRate)
	assert.Empty(t, promo.Code)
}

func TestNormalizePromoCode(t *testing.T) {
	assert.Equal(t, "SAVE10", NormalizePromoCode("  save10 "))
	assert.Equal(t, "", NormalizePromoCode("   "))
}

// ============================================================================
// FormatMoney
// ============================================================================

func TestFormatMoney_TwoDecimals(t *testing.T) {
	en := CurrencyFormatFor("en")
	assert.Equal(t, "$250.00", FormatMoney(decimal.NewFromInt(250), en))
	assert.Equal(t, "$27.15", FormatMoney(decimal.RequireFromString("27.153"), en))
	assert.Equal(t, "$0.01", FormatMoney(decimal.RequireFromString("0.005"), en))
	assert.Equal(t, "$0.00", FormatMoney(decimal.Zero, en))
}

func TestFormatMoney_SymbolAfter(t *testing.T) {
	f := CurrencyFormat{Symbol: "€", Position: PositionAfter}
	assert.Equal(t, "225.00 €", FormatMoney(decimal.NewFromInt(225), f))
}

func TestCurrencyFormatFor(t *testing.T) {
	assert.Equal(t, CurrencyFormat{Symbol: "$", Position: PositionBefore}, CurrencyFormatFor("en-US"))
	assert.Equal(t, PositionAfter, CurrencyFormatFor("ar").Position)
	assert.Equal(t, PositionAfter, CurrencyFormatFor("AR_sa").Position)
	assert.Equal(t, CurrencyFormatFor(DefaultLocale), CurrencyFormatFor("xx"))
	assert.Equal(t, CurrencyFormatFor(DefaultLocale), CurrencyFormatFor(""))
}
