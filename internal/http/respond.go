package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Southwavecodes/Southwaveapp/internal/cart"
	"github.com/Southwavecodes/Southwaveapp/internal/catalog"
	"github.com/Southwavecodes/Southwaveapp/internal/checkout"
	"github.com/Southwavecodes/Southwaveapp/internal/spotify"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError maps the domain error taxonomy onto HTTP statuses. Every
// failure surfaces as a single user-facing message; nothing upstream leaks
// beyond its status code.
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product_not_found", "product not found")
	case errors.Is(err, cart.ErrLineNotFound):
		respondError(w, http.StatusNotFound, "line_not_found", "cart line not found")
	case errors.Is(err, cart.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must not be negative")
	case errors.Is(err, cart.ErrVariantRequired):
		respondError(w, http.StatusBadRequest, "variant_required", "this product requires a size/color selection")
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", "your cart is empty")
	case errors.Is(err, checkout.ErrCheckoutInFlight):
		respondError(w, http.StatusConflict, "checkout_in_flight", "a checkout is already in progress")
	case errors.Is(err, spotify.ErrMissingCredentials):
		respondError(w, http.StatusServiceUnavailable, "catalog_unavailable", "music catalog is not configured")
	default:
		var authErr *spotify.AuthError
		var spotifyErr *spotify.RequestError
		var checkoutErr *checkout.RequestError
		var redirectErr *checkout.RedirectError
		switch {
		case errors.As(err, &authErr):
			respondError(w, http.StatusBadGateway, "catalog_auth_failed", "music catalog authentication failed")
		case errors.As(err, &spotifyErr):
			if spotifyErr.Status == http.StatusNotFound {
				respondError(w, http.StatusNotFound, "not_found", "resource not found")
				return
			}
			respondError(w, http.StatusBadGateway, "catalog_request_failed", "music catalog request failed")
		case errors.As(err, &checkoutErr), errors.As(err, &redirectErr), errors.Is(err, checkout.ErrMissingSession):
			respondError(w, http.StatusBadGateway, "checkout_failed", "failed to proceed to checkout, please try again")
		default:
			slog.Error("unhandled service error", "error", err)
			respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		}
	}
}
