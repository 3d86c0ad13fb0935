// Package catalog fetches products from the remote catalog API.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/utafrali/storefront/internal/domain"
)

// Source is a remote product catalog.
type Source interface {
	FetchProducts(ctx context.Context) ([]domain.Product, error)
	FetchProductByID(ctx context.Context, id string) (*domain.Product, error)
}

// productID accepts a JSON number or string. Numbers keep their literal
// form, so 7 becomes "7".
type productID string

func (id *productID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("product id is null")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = productID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product id: %w", err)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return fmt.Errorf("product id: %w", err)
	}
	*id = productID(n.String())
	return nil
}

type wireProduct struct {
	ID          productID `json:"id"`
	Title       string    `json:"title"`
	Price       float64   `json:"price"`
	Rating      float64   `json:"rating"`
	Category    *string   `json:"category"`
	Thumbnail   string    `json:"thumbnail"`
	Images      []string  `json:"images"`
	Description *string   `json:"description"`
}

func (w wireProduct) toDomain() domain.Product {
	return domain.Product{
		ID:          string(w.ID),
		Title:       w.Title,
		Price:       w.Price,
		Rating:      w.Rating,
		Category:    w.Category,
		Thumbnail:   w.Thumbnail,
		Images:      w.Images,
		Description: w.Description,
	}
}

// decodeProductList accepts either {"products": [...]} or a bare array.
func decodeProductList(raw []byte) ([]domain.Product, error) {
	raw = bytes.TrimSpace(raw)
	var items []wireProduct
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode product list: %w", err)
		}
	} else {
		var envelope struct {
			Products []wireProduct `json:"products"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, fmt.Errorf("decode product list: %w", err)
		}
		items = envelope.Products
	}

	products := make([]domain.Product, 0, len(items))
	for _, it := range items {
		products = append(products, it.toDomain())
	}
	return products, nil
}
