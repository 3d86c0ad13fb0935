package domain

// Product represents a catalog product as served by the remote catalog API.
// Optional fields are nil when the catalog omits them.
type Product struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Price       float64  `json:"price"`
	Rating      float64  `json:"rating"`
	Category    *string  `json:"category,omitempty"`
	Thumbnail   string   `json:"thumbnail"`
	Images      []string `json:"images,omitempty"`
	Description *string  `json:"description,omitempty"`
}

// CategoryName returns the product category and whether one is set.
func (p Product) CategoryName() (string, bool) {
	if p.Category == nil {
		return "", false
	}
	return *p.Category, true
}

// PrimaryImage returns the first gallery image, falling back to the thumbnail.
func (p Product) PrimaryImage() string {
	if len(p.Images) > 0 && p.Images[0] != "" {
		return p.Images[0]
	}
	return p.Thumbnail
}

// FindProduct returns the product with the given ID and whether it was found.
func FindProduct(products []Product, id string) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
