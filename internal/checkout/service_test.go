package checkout

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Southwavecodes/Southwaveapp/internal/cart"
	"github.com/Southwavecodes/Southwaveapp/internal/catalog"
	"github.com/Southwavecodes/Southwaveapp/internal/domain"
)

type stubCatalog struct {
	products map[string]*domain.Product
}

func newStubCatalog() *stubCatalog {
	return &stubCatalog{products: map[string]*domain.Product{
		"hoodie-1": {
			ID:       "hoodie-1",
			Name:     "Southwave Logo Hoodie",
			Price:    6500,
			Currency: "usd",
			Images:   []string{"/images/hoodie-black.jpg", "/images/hoodie-detail.jpg"},
			Sizes:    []string{"S", "M", "L"},
			Colors:   []string{"Black", "Navy"},
		},
		"poster-1": {
			ID:       "poster-1",
			Name:     "Tour Poster Set",
			Price:    2000,
			Currency: "usd",
		},
	}}
}

func (s *stubCatalog) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

type stubCarts struct {
	lines []cart.Line
}

func (s *stubCarts) Lines(string) []cart.Line {
	out := make([]cart.Line, len(s.lines))
	copy(out, s.lines)
	return out
}

type mockSessions struct {
	mu      sync.Mutex
	calls   int
	items   []LineItem
	session *Session
	err     error

	// When set, CreateSession blocks until released
	entered chan struct{}
	release chan struct{}
}

func (m *mockSessions) CreateSession(_ context.Context, items []LineItem) (*Session, error) {
	m.mu.Lock()
	m.calls++
	m.items = items
	m.mu.Unlock()

	if m.entered != nil {
		m.entered <- struct{}{}
		<-m.release
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

func (m *mockSessions) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func newService(carts CartReader, sessions SessionCreator) *Service {
	return NewService(carts, newStubCatalog(), sessions, slog.Default())
}

func TestBegin_EmptyCart_NoNetworkCall(t *testing.T) {
	sessions := &mockSessions{session: &Session{ID: "cs_1", URL: "https://pay.example.com/cs_1"}}
	svc := newService(&stubCarts{}, sessions)

	_, err := svc.Begin(context.Background(), "sess-1")

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, sessions.callCount())
	assert.Equal(t, StatusIdle, svc.Status("sess-1"))
}

func TestBegin_Success_ReturnsRedirectURL(t *testing.T) {
	sessions := &mockSessions{session: &Session{ID: "cs_1", URL: "https://pay.example.com/cs_1"}}
	carts := &stubCarts{lines: []cart.Line{
		{ProductID: "hoodie-1", Quantity: 1, Size: "M", Color: "Black"},
		{ProductID: "poster-1", Quantity: 2},
	}}
	svc := newService(carts, sessions)

	url, err := svc.Begin(context.Background(), "sess-1")
	require.NoError(t, err)

	assert.Equal(t, "https://pay.example.com/cs_1", url)
	assert.Equal(t, StatusRedirecting, svc.Status("sess-1"))
	assert.True(t, svc.Status("sess-1").IsTerminal())

	require.Len(t, sessions.items, 2)
	assert.Equal(t, "Size: M Color: Black", sessions.items[0].Description)
	assert.Equal(t, "", sessions.items[1].Description)
	assert.Equal(t, int64(6500), sessions.items[0].UnitAmount)
}

func TestBegin_SecondTriggerWhileInFlightIsRefused(t *testing.T) {
	sessions := &mockSessions{
		session: &Session{ID: "cs_1", URL: "https://pay.example.com/cs_1"},
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	carts := &stubCarts{lines: []cart.Line{{ProductID: "poster-1", Quantity: 1}}}
	svc := newService(carts, sessions)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Begin(context.Background(), "sess-1")
		done <- err
	}()

	<-sessions.entered // first checkout is now in flight

	_, err := svc.Begin(context.Background(), "sess-1")
	assert.ErrorIs(t, err, ErrCheckoutInFlight)

	close(sessions.release)
	require.NoError(t, <-done)

	assert.Equal(t, 1, sessions.callCount(), "exactly one session-creation call")
}

func TestBegin_InFlightGuardIsPerSession(t *testing.T) {
	sessions := &mockSessions{
		session: &Session{ID: "cs_1", URL: "https://pay.example.com/cs_1"},
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	carts := &stubCarts{lines: []cart.Line{{ProductID: "poster-1", Quantity: 1}}}
	svc := newService(carts, sessions)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Begin(context.Background(), "sess-a")
		done <- err
	}()
	<-sessions.entered

	// A different browser session is not blocked by sess-a's flight
	assert.Equal(t, StatusIdle, svc.Status("sess-b"))

	close(sessions.release)
	require.NoError(t, <-done)
}

func TestBegin_ProviderFailureLeavesCartAndAllowsRetry(t *testing.T) {
	sessions := &mockSessions{err: &RequestError{Status: 502}}
	carts := &stubCarts{lines: []cart.Line{{ProductID: "poster-1", Quantity: 1}}}
	svc := newService(carts, sessions)

	_, err := svc.Begin(context.Background(), "sess-1")

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 502, reqErr.Status)

	// Cart untouched, state back to idle so the user can retry
	assert.Len(t, carts.Lines("sess-1"), 1)
	assert.Equal(t, StatusIdle, svc.Status("sess-1"))

	sessions.err = nil
	sessions.session = &Session{ID: "cs_2", URL: "https://pay.example.com/cs_2"}
	url, err := svc.Begin(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/cs_2", url)
}

func TestBegin_MissingSessionID(t *testing.T) {
	sessions := &mockSessions{session: &Session{URL: "https://pay.example.com/cs_1"}}
	carts := &stubCarts{lines: []cart.Line{{ProductID: "poster-1", Quantity: 1}}}
	svc := newService(carts, sessions)

	_, err := svc.Begin(context.Background(), "sess-1")
	assert.ErrorIs(t, err, ErrMissingSession)
	assert.Equal(t, StatusIdle, svc.Status("sess-1"))
}

func TestBegin_MissingRedirectURL(t *testing.T) {
	sessions := &mockSessions{session: &Session{ID: "cs_1"}}
	carts := &stubCarts{lines: []cart.Line{{ProductID: "poster-1", Quantity: 1}}}
	svc := newService(carts, sessions)

	_, err := svc.Begin(context.Background(), "sess-1")

	var redirectErr *RedirectError
	require.ErrorAs(t, err, &redirectErr)
	assert.Equal(t, "cs_1", redirectErr.SessionID)
	assert.Equal(t, StatusIdle, svc.Status("sess-1"))
}

func TestReset_ReturnsSessionToIdle(t *testing.T) {
	sessions := &mockSessions{session: &Session{ID: "cs_1", URL: "https://pay.example.com/cs_1"}}
	carts := &stubCarts{lines: []cart.Line{{ProductID: "poster-1", Quantity: 1}}}
	svc := newService(carts, sessions)

	_, err := svc.Begin(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Equal(t, StatusRedirecting, svc.Status("sess-1"))

	svc.Reset("sess-1")
	assert.Equal(t, StatusIdle, svc.Status("sess-1"))
}
