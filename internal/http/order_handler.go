package http

import (
	"encoding/json"
	"net/http"

	"github.com/example/estoque-api/internal/apperr"
	"github.com/example/estoque-api/internal/model"
	"github.com/example/estoque-api/internal/service"
	"github.com/example/estoque-api/pkg/validator"
)

const stockUpdatedMsg = "Stock Updated"

type OrderRequest struct {
	ID    int64              `json:"id"`
	Items []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type OrderItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

type orderHandler struct {
	catalogSvc service.CatalogService
	validate   validator.Validator
	rp         responder
}

func newOrderHandler(catalogSvc service.CatalogService, validate validator.Validator, rp responder) *orderHandler {
	return &orderHandler{
		catalogSvc: catalogSvc,
		validate:   validate,
		rp:         rp,
	}
}

func (h *orderHandler) ApplyOrder(w http.ResponseWriter, r *http.Request) {
	var req OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.rp.Error(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}

	if err := h.validate.Validate(req); err != nil {
		h.rp.Error(w, r, err)
		return
	}

	order := model.Order{
		ID:    req.ID,
		Items: make([]model.OrderItem, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		order.Items = append(order.Items, model.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	if err := h.catalogSvc.ApplyOrder(r.Context(), order); err != nil {
		h.rp.Error(w, r, err)
		return
	}

	h.rp.JSON(w, r, http.StatusOK, MessageResponse{Message: stockUpdatedMsg})
}
