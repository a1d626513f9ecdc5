package checkout

import (
	"context"
	"strings"

	"github.com/Southwavecodes/Southwaveapp/internal/cart"
)

// LineItem is one entry of a hosted-checkout session request. UnitAmount is
// the product's integer minor-unit price passed through unchanged.
type LineItem struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	UnitAmount  int64  `json:"unit_amount"`
	Currency    string `json:"currency"`
	Quantity    int    `json:"quantity"`
}

// buildDescription concatenates the selected variant fragments, omitting an
// absent attribute entirely rather than emitting an empty label.
func buildDescription(size, color string) string {
	var parts []string
	if size != "" {
		parts = append(parts, "Size: "+size)
	}
	if color != "" {
		parts = append(parts, "Color: "+color)
	}
	return strings.Join(parts, " ")
}

// buildLineItems joins cart lines against the live catalog; prices and
// display data are re-read here, never snapshotted at add time.
func buildLineItems(ctx context.Context, lines []cart.Line, catalog cart.ProductReader) ([]LineItem, error) {
	items := make([]LineItem, 0, len(lines))
	for _, l := range lines {
		product, err := catalog.GetProduct(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}

		items = append(items, LineItem{
			Name:        product.Name,
			Description: buildDescription(l.Size, l.Color),
			Image:       product.FirstImage(),
			UnitAmount:  product.Price,
			Currency:    product.Currency,
			Quantity:    l.Quantity,
		})
	}
	return items, nil
}
