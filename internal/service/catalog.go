package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/estoque-api/internal/apperr"
	"github.com/example/estoque-api/internal/event"
	"github.com/example/estoque-api/internal/model"
	"github.com/example/estoque-api/internal/repository"
	"github.com/example/estoque-api/internal/storage/db"
	"github.com/example/estoque-api/pkg/outbox"
	"github.com/example/estoque-api/pkg/ptr"
)

type RegisterProductParams struct {
	Name        string
	Description string
	Price       float64
	Quantity    int
}

// CatalogService owns the stock business rules: register-or-increment by
// name, catalog reads, and order application against stock.
type CatalogService interface {
	RegisterProduct(ctx context.Context, params RegisterProductParams) error
	ListAllProducts(ctx context.Context) ([]model.Product, error)
	// FindProductByName returns nil (and no error) when the name is unknown.
	FindProductByName(ctx context.Context, name string) (*model.Product, error)
	ApplyOrder(ctx context.Context, order model.Order) error
}

type catalogService struct {
	db            db.DB
	productRepo   repository.ProductRepository
	outboxMsgRepo repository.OutboxMsgRepository
}

func NewCatalogService(
	db db.DB,
	productRepo repository.ProductRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) CatalogService {
	return &catalogService{
		db:            db,
		productRepo:   productRepo,
		outboxMsgRepo: outboxMsgRepo,
	}
}

// RegisterProduct creates the product on first sight of the name and adds
// the submitted quantity to the stored one on every later registration.
func (s *catalogService) RegisterProduct(ctx context.Context, params RegisterProductParams) error {
	ev := event.ProductRegisteredEvent{
		Name:          params.Name,
		Description:   params.Description,
		Price:         params.Price,
		QuantityAdded: params.Quantity,
	}

	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		productRepo := s.productRepo.WithDB(tx)

		existing, err := productRepo.FindProductByName(ctx, params.Name)
		if err != nil {
			return fmt.Errorf("product repository find product by name: %w", err)
		}

		if existing == nil {
			id, err := productRepo.CreateProduct(ctx, repository.CreateProductParams{
				Name:        params.Name,
				Description: params.Description,
				Price:       params.Price,
				Quantity:    params.Quantity,
			})
			if err != nil {
				return fmt.Errorf("product repository create product: %w", err)
			}
			ev.ProductID = id
		} else {
			if err := productRepo.AddProductQuantity(ctx, existing.ID, params.Quantity); err != nil {
				return fmt.Errorf("product repository add product quantity: %w", err)
			}
			ev.ProductID = existing.ID
		}

		evBytes, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}

		if err := s.outboxMsgRepo.
			WithDB(tx).
			CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
				Topic:        event.TopicProductRegistered,
				Headers:      outbox.BuildHeaders(ctx),
				Payload:      evBytes,
				PartitionKey: ptr.New(params.Name),
			}); err != nil {
			return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
		}

		return nil
	}); err != nil {
		return fmt.Errorf("db with tx: %w", err)
	}

	return nil
}

func (s *catalogService) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.ListAllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("product repository list all products: %w", err)
	}

	return products, nil
}

func (s *catalogService) FindProductByName(ctx context.Context, name string) (*model.Product, error) {
	product, err := s.productRepo.FindProductByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("product repository find product by name: %w", err)
	}

	return product, nil
}

// ApplyOrder applies every line item inside a single transaction. Each
// product row is locked before the sufficiency check, so concurrent orders
// against the same product serialize instead of both passing the check on a
// stale quantity. Any rejection rolls the whole order back.
func (s *catalogService) ApplyOrder(ctx context.Context, order model.Order) error {
	ev := event.StockUpdatedEvent{
		OrderID: order.ID,
		Items:   make([]event.StockUpdatedItem, 0, len(order.Items)),
	}

	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		productRepo := s.productRepo.WithDB(tx)

		for _, item := range order.Items {
			stored, err := productRepo.FindProductByIDForUpdate(ctx, item.ProductID)
			if err != nil {
				return fmt.Errorf("product repository find product by id for update: %w", err)
			}
			if stored == nil {
				return apperr.ProductNotFoundErr
			}

			if stored.Quantity < item.Quantity {
				return apperr.NewOutOfStockErr(stored.Name)
			}

			if err := productRepo.UpdateProductQuantity(ctx, stored.ID, stored.Quantity-item.Quantity); err != nil {
				return fmt.Errorf("product repository update product quantity: %w", err)
			}

			ev.Items = append(ev.Items, event.StockUpdatedItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}

		evBytes, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}

		if err := s.outboxMsgRepo.
			WithDB(tx).
			CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
				Topic:   event.TopicStockUpdated,
				Headers: outbox.BuildHeaders(ctx),
				Payload: evBytes,
			}); err != nil {
			return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
		}

		return nil
	}); err != nil {
		return fmt.Errorf("db with tx: %w", err)
	}

	return nil
}
