package http

import (
	"context"
	"net/http"
	"time"
)

// CheckoutService is the slice of the checkout flow the HTTP layer drives.
type CheckoutService interface {
	Begin(ctx context.Context, sessionID string) (string, error)
	Reset(sessionID string)
}

type CheckoutHandler struct {
	checkout CheckoutService
	timeout  time.Duration
}

func NewCheckoutHandler(checkout CheckoutService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		timeout:  timeout,
	}
}

// POST /api/v1/checkout
//
// On success hands the browser to the provider's hosted page with a 303; the
// cart survives every failure path untouched so a retry just works.
func (h *CheckoutHandler) InitiateCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	url, err := h.checkout.Begin(ctx, sessionIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	http.Redirect(w, r, url, http.StatusSeeOther)
}

type CheckoutSuccessDTO struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

// GET /api/v1/checkout/success?session_id=
//
// The hosted flow returns here; echo the opaque session id for the
// confirmation page and arm the cart session for a fresh checkout.
func (h *CheckoutHandler) CheckoutSuccess(w http.ResponseWriter, r *http.Request) {
	checkoutSessionID := r.URL.Query().Get("session_id")
	if checkoutSessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session_id", "session_id is required")
		return
	}

	h.checkout.Reset(sessionIDFromContext(r.Context()))

	respondJSON(w, http.StatusOK, CheckoutSuccessDTO{
		SessionID: checkoutSessionID,
		Status:    "confirmed",
	})
}
