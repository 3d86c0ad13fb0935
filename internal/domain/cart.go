package domain

// CartLineItem is one product and its requested quantity. A cart holds at most
// one line item per product ID.
type CartLineItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal returns price times quantity for the line item, coercing values
// that cannot be priced to zero.
func (i CartLineItem) Subtotal() float64 {
	return sanitizePrice(i.Product.Price) * float64(sanitizeQuantity(i.Quantity))
}

// FindLineItem returns the index of the line item for productID, or -1.
func FindLineItem(items []CartLineItem, productID string) int {
	for i := range items {
		if items[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

// AddToCart adds one unit of product. An already-present product has its
// quantity incremented instead of gaining a second line item.
func AddToCart(items []CartLineItem, product Product) []CartLineItem {
	out := cloneItems(items)
	if idx := FindLineItem(out, product.ID); idx >= 0 {
		out[idx].Quantity++
		return out
	}
	return append(out, CartLineItem{Product: product, Quantity: 1})
}

// SetQuantity sets the quantity of the line item for productID. Quantities
// below one are ignored, as are unknown product IDs; removing a line item is
// RemoveFromCart's job.
func SetQuantity(items []CartLineItem, productID string, quantity int) []CartLineItem {
	out := cloneItems(items)
	if quantity < 1 {
		return out
	}
	if idx := FindLineItem(out, productID); idx >= 0 {
		out[idx].Quantity = quantity
	}
	return out
}

// RemoveFromCart drops the line item for productID, if any.
func RemoveFromCart(items []CartLineItem, productID string) []CartLineItem {
	out := make([]CartLineItem, 0, len(items))
	for _, item := range items {
		if item.Product.ID != productID {
			out = append(out, item)
		}
	}
	return out
}

// ClearCart returns an empty cart.
func ClearCart() []CartLineItem {
	return []CartLineItem{}
}

// ItemCount returns the total number of units across all line items.
func ItemCount(items []CartLineItem) int {
	var count int
	for _, item := range items {
		count += sanitizeQuantity(item.Quantity)
	}
	return count
}

func cloneItems(items []CartLineItem) []CartLineItem {
	out := make([]CartLineItem, len(items), len(items)+1)
	copy(out, items)
	return out
}
