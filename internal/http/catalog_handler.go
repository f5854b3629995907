package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/estoque-api/internal/apperr"
	"github.com/example/estoque-api/internal/model"
	"github.com/example/estoque-api/internal/service"
	"github.com/example/estoque-api/pkg/validator"
)

const registeredSuccessfullyMsg = "Registered Successfully"

type RegisterProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
}

type ProductResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

type catalogHandler struct {
	catalogSvc service.CatalogService
	validate   validator.Validator
	rp         responder
}

func newCatalogHandler(catalogSvc service.CatalogService, validate validator.Validator, rp responder) *catalogHandler {
	return &catalogHandler{
		catalogSvc: catalogSvc,
		validate:   validate,
		rp:         rp,
	}
}

func (h *catalogHandler) RegisterProduct(w http.ResponseWriter, r *http.Request) {
	var req RegisterProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.rp.Error(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}

	if err := h.validate.Validate(req); err != nil {
		h.rp.Error(w, r, err)
		return
	}

	if err := h.catalogSvc.RegisterProduct(r.Context(), service.RegisterProductParams{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
	}); err != nil {
		h.rp.Error(w, r, err)
		return
	}

	h.rp.JSON(w, r, http.StatusOK, MessageResponse{Message: registeredSuccessfullyMsg})
}

func (h *catalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogSvc.ListAllProducts(r.Context())
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}

	items := make([]ProductResponse, 0, len(products))
	for _, product := range products {
		items = append(items, productToResponse(product))
	}

	h.rp.JSON(w, r, http.StatusOK, items)
}

// FindProduct keeps the soft-miss contract: an unknown name yields 200 with
// a product whose fields are all zero values, not an error.
func (h *catalogHandler) FindProduct(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	product, err := h.catalogSvc.FindProductByName(r.Context(), name)
	if err != nil {
		h.rp.Error(w, r, err)
		return
	}

	res := ProductResponse{}
	if product != nil {
		res = productToResponse(*product)
	}

	h.rp.JSON(w, r, http.StatusOK, res)
}

func productToResponse(product model.Product) ProductResponse {
	return ProductResponse{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Quantity:    product.Quantity,
	}
}
