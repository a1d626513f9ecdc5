package domain

type Category string

const (
	CategoryApparel     Category = "apparel"
	CategoryAccessories Category = "accessories"
	CategoryMusic       Category = "music"
	CategoryDigital     Category = "digital"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryApparel, CategoryAccessories, CategoryMusic, CategoryDigital:
		return true
	}
	return false
}

// Product is one merch catalog entry. Price is in minor currency units
// (cents for USD) and all arithmetic on it stays integer.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Currency    string   `json:"currency"`
	Images      []string `json:"images"`
	Category    Category `json:"category"`
	Sizes       []string `json:"sizes,omitempty"`
	Colors      []string `json:"colors,omitempty"`
	InStock     bool     `json:"in_stock"`
	Featured    bool     `json:"featured,omitempty"`
}

// HasSizes reports whether a cart line for this product must carry a size.
func (p *Product) HasSizes() bool {
	return len(p.Sizes) > 0
}

// HasColors reports whether a cart line for this product must carry a color.
func (p *Product) HasColors() bool {
	return len(p.Colors) > 0
}

// FirstImage returns the lead image reference, or "" when none exist.
func (p *Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
