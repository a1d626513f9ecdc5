package cart

import (
	"context"
	"sync"

	"github.com/Southwavecodes/Southwaveapp/internal/domain"
)

// ProductReader is the slice of the catalog the cart needs.
type ProductReader interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

// Service owns one cart per browser session. Carts live only in process
// memory and vanish with it; there is deliberately no store behind this map.
type Service struct {
	catalog ProductReader

	mu    sync.Mutex
	carts map[string]*Cart
}

func NewService(catalog ProductReader) *Service {
	return &Service{
		catalog: catalog,
		carts:   make(map[string]*Cart),
	}
}

func (s *Service) cart(sessionID string) *Cart {
	c, ok := s.carts[sessionID]
	if !ok {
		c = &Cart{}
		s.carts[sessionID] = c
	}
	return c
}

// AddItem resolves the product from the catalog and merges it into the
// session's cart.
func (s *Service) AddItem(ctx context.Context, sessionID, productID string, quantity int, size, color string) error {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart(sessionID).AddItem(product, quantity, size, color)
}

func (s *Service) UpdateQuantity(sessionID string, index, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart(sessionID).UpdateQuantity(index, quantity)
}

func (s *Service) RemoveLine(sessionID string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart(sessionID).RemoveLine(index)
}

func (s *Service) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart(sessionID).Clear()
}

// Lines returns a copy of the session's cart lines in insertion order.
func (s *Service) Lines(sessionID string) []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	src := s.cart(sessionID).Lines
	lines := make([]Line, len(src))
	copy(lines, src)
	return lines
}

// LineView is a cart line joined with its live product data for display.
type LineView struct {
	Line
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Currency  string `json:"currency"`
	Image     string `json:"image,omitempty"`
}

// Summary is the cart as the front end renders it.
type Summary struct {
	Lines     []LineView `json:"lines"`
	ItemCount int        `json:"item_count"`
	Total     int64      `json:"total"`
	Currency  string     `json:"currency,omitempty"`
}

// Summarize joins the session's cart against the current catalog. Prices are
// read live, never from a snapshot.
func (s *Service) Summarize(ctx context.Context, sessionID string) (*Summary, error) {
	lines := s.Lines(sessionID)

	summary := &Summary{Lines: make([]LineView, 0, len(lines))}
	for _, l := range lines {
		product, err := s.catalog.GetProduct(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}

		summary.Lines = append(summary.Lines, LineView{
			Line:      l,
			Name:      product.Name,
			UnitPrice: product.Price,
			Currency:  product.Currency,
			Image:     product.FirstImage(),
		})
		summary.ItemCount += l.Quantity
		summary.Total += product.Price * int64(l.Quantity)
		if summary.Currency == "" {
			summary.Currency = product.Currency
		}
	}

	return summary, nil
}
