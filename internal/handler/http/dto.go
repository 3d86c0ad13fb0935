package http

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/middleware"
)

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding an item to the cart.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,notblank,max=64"`
	Quantity  int    `json:"quantity" validate:"omitempty,gte=1,lte=100"`
}

// UpdateQuantityRequest is the JSON request body for updating an item's
// quantity. Values below one leave the item unchanged.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"lte=100"`
}

type ApplyPromoRequest struct {
	Code string `json:"code" validate:"required,notblank,max=32"`
}

// --- Response DTOs ---

type productResponse struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Price          float64  `json:"price"`
	PriceFormatted string   `json:"price_formatted"`
	Rating         float64  `json:"rating"`
	Category       *string  `json:"category,omitempty"`
	Thumbnail      string   `json:"thumbnail"`
	Image          string   `json:"image"`
	Images         []string `json:"images,omitempty"`
	Description    *string  `json:"description,omitempty"`
}

type productListResponse struct {
	Products    []productResponse `json:"products"`
	Categories  []string          `json:"categories"`
	Total       int               `json:"total"`
	Empty       bool              `json:"empty"`
	Narrowed    bool              `json:"narrowed"`
	LastFetched *time.Time        `json:"last_fetched,omitempty"`
}

type shareResponse struct {
	URL     string `json:"url"`
	Message string `json:"message"`
}

type lineItemResponse struct {
	Product            productResponse `json:"product"`
	Quantity           int             `json:"quantity"`
	LineTotal          float64         `json:"line_total"`
	LineTotalFormatted string          `json:"line_total_formatted"`
}

type promoResponse struct {
	Code         string  `json:"code,omitempty"`
	Status       string  `json:"status"`
	DiscountRate float64 `json:"discount_rate"`
	Notice       string  `json:"notice,omitempty"`
}

type totalsResponse struct {
	Subtotal                float64 `json:"subtotal"`
	SubtotalFormatted       string  `json:"subtotal_formatted"`
	DiscountAmount          float64 `json:"discount_amount"`
	DiscountAmountFormatted string  `json:"discount_amount_formatted"`
	Total                   float64 `json:"total"`
	TotalFormatted          string  `json:"total_formatted"`
}

type cartResponse struct {
	Items       []lineItemResponse `json:"items"`
	ItemCount   int                `json:"item_count"`
	PromoStatus string             `json:"promo_status"`
	Promo       promoResponse      `json:"promo"`
	Totals      totalsResponse     `json:"totals"`
}

type favoritesResponse struct {
	IDs      []string          `json:"ids"`
	Products []productResponse `json:"products"`
}

type toggleFavoriteResponse struct {
	ProductID string `json:"product_id"`
	Favorited bool   `json:"favorited"`
	favoritesResponse
}

// --- Mapping ---

func currencyFormat(ctx context.Context) domain.CurrencyFormat {
	return domain.CurrencyFormatFor(middleware.LocaleFromContext(ctx))
}

func amount(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func toProductResponse(p domain.Product, f domain.CurrencyFormat) productResponse {
	return productResponse{
		ID:             p.ID,
		Title:          p.Title,
		Price:          p.Price,
		PriceFormatted: domain.FormatMoney(decimal.NewFromFloat(p.Price), f),
		Rating:         p.Rating,
		Category:       p.Category,
		Thumbnail:      p.Thumbnail,
		Image:          p.PrimaryImage(),
		Images:         p.Images,
		Description:    p.Description,
	}
}

func toProductResponses(products []domain.Product, f domain.CurrencyFormat) []productResponse {
	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = toProductResponse(p, f)
	}
	return out
}

func toCartResponse(v *service.CartView, f domain.CurrencyFormat) cartResponse {
	items := make([]lineItemResponse, len(v.Items))
	for i, item := range v.Items {
		line := domain.ComputeTotals([]domain.CartLineItem{item}, domain.PromoState{}).Subtotal
		items[i] = lineItemResponse{
			Product:            toProductResponse(item.Product, f),
			Quantity:           item.Quantity,
			LineTotal:          amount(line),
			LineTotalFormatted: domain.FormatMoney(line, f),
		}
	}

	promo := promoResponse{
		Code:         v.PromoInput,
		Status:       string(v.PromoStatus),
		DiscountRate: v.Promo.DiscountRate,
	}
	switch v.PromoStatus {
	case service.PromoApplied:
		pct := decimal.NewFromFloat(v.Promo.DiscountRate).Mul(decimal.NewFromInt(100))
		promo.Notice = fmt.Sprintf("%s applied: %s%% off", v.Promo.Code, pct.String())
	case service.PromoInvalid:
		promo.Notice = "Invalid promo code"
	}

	return cartResponse{
		Items:       items,
		ItemCount:   v.ItemCount,
		PromoStatus: string(v.PromoStatus),
		Promo:       promo,
		Totals: totalsResponse{
			Subtotal:                amount(v.Totals.Subtotal),
			SubtotalFormatted:       domain.FormatMoney(v.Totals.Subtotal, f),
			DiscountAmount:          amount(v.Totals.DiscountAmount),
			DiscountAmountFormatted: domain.FormatMoney(v.Totals.DiscountAmount, f),
			Total:                   amount(v.Totals.Total),
			TotalFormatted:          domain.FormatMoney(v.Totals.Total, f),
		},
	}
}

func toFavoritesResponse(v *service.FavoritesView, f domain.CurrencyFormat) favoritesResponse {
	return favoritesResponse{
		IDs:      v.IDs,
		Products: toProductResponses(v.Products, f),
	}
}
