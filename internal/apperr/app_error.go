package apperr

import (
	"fmt"

	"github.com/example/estoque-api/pkg/zerror"
)

const (
	ValidationErrorCode = "VALIDATION_FAILED"
	OutOfStockCode      = "OUT_OF_STOCK"
	ProductNotFoundCode = "PRODUCT_NOT_FOUND"
)

var (
	ValidationErr      = zerror.NewValidationFailed(ValidationErrorCode, "validation error")
	ProductNotFoundErr = zerror.NewNotFound(ProductNotFoundCode, "product not found")
)

// NewOutOfStockErr builds the out-of-stock rejection for an order line item.
// The message format is part of the API contract.
func NewOutOfStockErr(productName string) zerror.ZError {
	return zerror.NewBadRequest(OutOfStockCode,
		fmt.Sprintf("Insufficient stock for product %s.", productName))
}
