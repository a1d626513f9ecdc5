// Package checkout translates a session's cart into a hosted-checkout
// session request and hands control to the payment provider's redirect flow.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Southwavecodes/Southwaveapp/internal/cart"
)

var (
	ErrEmptyCart        = errors.New("cart is empty, nothing to checkout")
	ErrCheckoutInFlight = errors.New("checkout already in progress")
	ErrMissingSession   = errors.New("checkout session response carried no session id")
)

// RedirectError reports a created session that cannot be navigated to.
type RedirectError struct {
	SessionID string
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("checkout session %s carried no redirect url", e.SessionID)
}

// Session is the provider's hosted-checkout handle.
type Session struct {
	ID  string
	URL string
}

// SessionCreator creates a hosted-checkout session from assembled line items.
type SessionCreator interface {
	CreateSession(ctx context.Context, items []LineItem) (*Session, error)
}

// CartReader is the slice of the cart service the builder consumes.
type CartReader interface {
	Lines(sessionID string) []cart.Line
}

type Service struct {
	carts    CartReader
	catalog  cart.ProductReader
	sessions SessionCreator
	log      *slog.Logger

	mu     sync.Mutex
	status map[string]Status
}

func NewService(carts CartReader, catalog cart.ProductReader, sessions SessionCreator, log *slog.Logger) *Service {
	return &Service{
		carts:    carts,
		catalog:  catalog,
		sessions: sessions,
		log:      log,
		status:   make(map[string]Status),
	}
}

// Status reports the checkout state for a browser session.
func (s *Service) Status(sessionID string) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.status[sessionID]; ok {
		return st
	}
	return StatusIdle
}

func (s *Service) begin(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status[sessionID] == StatusSubmitting {
		return ErrCheckoutInFlight
	}
	s.status[sessionID] = StatusSubmitting
	return nil
}

func (s *Service) finish(sessionID string, st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[sessionID] = st
}

// Begin validates the cart, creates a hosted session and returns its
// redirect URL. A second trigger while one is in flight is refused, an empty
// cart fails before any network call, and no failure path touches the cart —
// the user can simply retry.
func (s *Service) Begin(ctx context.Context, sessionID string) (string, error) {
	if err := s.begin(sessionID); err != nil {
		return "", err
	}

	lines := s.carts.Lines(sessionID)
	if len(lines) == 0 {
		s.finish(sessionID, StatusIdle)
		return "", ErrEmptyCart
	}

	items, err := buildLineItems(ctx, lines, s.catalog)
	if err != nil {
		s.finish(sessionID, StatusIdle)
		return "", fmt.Errorf("failed to build checkout line items: %w", err)
	}

	session, err := s.sessions.CreateSession(ctx, items)
	if err != nil {
		s.finish(sessionID, StatusIdle)
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	if session.ID == "" {
		s.finish(sessionID, StatusIdle)
		return "", ErrMissingSession
	}
	if session.URL == "" {
		s.finish(sessionID, StatusIdle)
		return "", &RedirectError{SessionID: session.ID}
	}

	s.log.Info("checkout session created",
		"session", sessionID,
		"checkout_session", session.ID,
		"line_items", len(items))

	s.finish(sessionID, StatusRedirecting)
	return session.URL, nil
}

// Reset returns a session to idle, used when the hosted flow hands control
// back (success or cancel page) so a new checkout can start.
func (s *Service) Reset(sessionID string) {
	s.finish(sessionID, StatusIdle)
}
