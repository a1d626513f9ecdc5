package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Southwavecodes/Southwaveapp/internal/catalog"
	"github.com/Southwavecodes/Southwaveapp/internal/domain"
)

type CatalogHandler struct {
	repo    catalog.RepoInterface
	timeout time.Duration
	now     func() time.Time
}

func NewCatalogHandler(repo catalog.RepoInterface, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{
		repo:    repo,
		timeout: timeout,
		now:     time.Now,
	}
}

// ProductDTO adds the rendered price to the catalog record.
type ProductDTO struct {
	*domain.Product
	DisplayPrice string `json:"display_price"`
}

type ProductsResponse struct {
	Products []ProductDTO `json:"products"`
}

func toProductDTOs(products []*domain.Product) []ProductDTO {
	dtos := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		dtos = append(dtos, ProductDTO{
			Product:      p,
			DisplayPrice: domain.FormatPrice(p.Price, p.Currency),
		})
	}
	return dtos
}

// GET /api/v1/products?category=
func (h *CatalogHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var (
		products []*domain.Product
		err      error
	)

	if category := r.URL.Query().Get("category"); category != "" {
		c := domain.Category(category)
		if !c.Valid() {
			respondError(w, http.StatusBadRequest, "invalid_category", "unknown product category")
			return
		}
		products, err = h.repo.GetProductsByCategory(ctx, c)
	} else {
		products, err = h.repo.GetAllProducts(ctx)
	}
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ProductsResponse{Products: toProductDTOs(products)})
}

// GET /api/v1/products/featured
func (h *CatalogHandler) GetFeaturedProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.repo.GetFeaturedProducts(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ProductsResponse{Products: toProductDTOs(products)})
}

// GET /api/v1/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	product, err := h.repo.GetProduct(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ProductDTO{
		Product:      product,
		DisplayPrice: domain.FormatPrice(product.Price, product.Currency),
	})
}

type ConcertsResponse struct {
	Concerts []*domain.Concert `json:"concerts"`
}

// GET /api/v1/concerts?filter=upcoming|past|all
func (h *CatalogHandler) GetConcerts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var (
		concerts []*domain.Concert
		err      error
	)

	switch filter := r.URL.Query().Get("filter"); filter {
	case "", "upcoming":
		concerts, err = h.repo.GetUpcomingConcerts(ctx, h.now())
	case "past":
		concerts, err = h.repo.GetPastConcerts(ctx, h.now())
	case "all":
		concerts, err = h.repo.GetAllConcerts(ctx)
	default:
		respondError(w, http.StatusBadRequest, "invalid_filter", "filter must be upcoming, past or all")
		return
	}
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ConcertsResponse{Concerts: concerts})
}
