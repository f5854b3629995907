package apierr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/estoque-api/internal/apperr"
	"github.com/example/estoque-api/internal/http/apierr"
	"github.com/example/estoque-api/pkg/zerror"
)

func TestNew(t *testing.T) {
	t.Run("Should map out-of-stock to 400 with the contract message", func(t *testing.T) {
		err := apperr.NewOutOfStockErr("Produto B")

		res := apierr.New(err)

		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Equal(t, apperr.OutOfStockCode, res.Code)
		assert.Equal(t, "Insufficient stock for product Produto B.", res.Message)
	})

	t.Run("Should unwrap a wrapped domain error", func(t *testing.T) {
		err := fmt.Errorf("db with tx: %w", apperr.ProductNotFoundErr)

		res := apierr.New(err)

		assert.Equal(t, http.StatusNotFound, res.StatusCode)
		assert.Equal(t, apperr.ProductNotFoundCode, res.Code)
	})

	t.Run("Should map validation errors to 400 with field details", func(t *testing.T) {
		type payload struct {
			Name string `validate:"required"`
		}
		err := govalidator.New().Struct(payload{})
		require.Error(t, err)

		res := apierr.New(err)

		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Equal(t, "validationError", res.Code)
		require.NotNil(t, res.Details)
		require.Len(t, *res.Details, 1)
		assert.Equal(t, "Name", (*res.Details)[0].Field)
	})

	t.Run("Should map unknown errors to 500", func(t *testing.T) {
		res := apierr.New(errors.New("boom"))

		assert.Equal(t, apierr.InternalServerErr, res)
	})
}

func TestZErrorStatusToHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, apierr.ZErrorStatusToHTTPStatus(zerror.StatusBadRequest))
	assert.Equal(t, http.StatusBadRequest, apierr.ZErrorStatusToHTTPStatus(zerror.StatusValidationFailed))
	assert.Equal(t, http.StatusNotFound, apierr.ZErrorStatusToHTTPStatus(zerror.StatusNotFound))
	assert.Equal(t, http.StatusInternalServerError, apierr.ZErrorStatusToHTTPStatus(zerror.StatusUnknown))
}
