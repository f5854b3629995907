package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/estoque-api/internal/apperr"
	"github.com/example/estoque-api/internal/event"
	"github.com/example/estoque-api/internal/model"
	"github.com/example/estoque-api/internal/repository"
	"github.com/example/estoque-api/internal/service"
	"github.com/example/estoque-api/internal/storage/db"
	"github.com/example/estoque-api/pkg/zerror"
)

func extractZError(t *testing.T, err error) zerror.ZError {
	t.Helper()

	var zErr zerror.ZError
	require.True(t, errors.As(err, &zErr), "expected a domain error, got %v", err)
	return zErr
}

func assertOutOfStock(t *testing.T, err error, wantMsg string) {
	t.Helper()

	zErr := extractZError(t, err)
	assert.Equal(t, apperr.OutOfStockCode, zErr.Code())
	assert.Equal(t, wantMsg, zErr.Msg())
}

type fakeProductRepo struct {
	products map[int64]model.Product
	nextID   int64
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{
		products: make(map[int64]model.Product),
		nextID:   1,
	}
}

func (f *fakeProductRepo) WithDB(db db.DB) repository.ProductRepository { return f }

func (f *fakeProductRepo) CreateProduct(_ context.Context, params repository.CreateProductParams) (int64, error) {
	id := f.nextID
	f.nextID++
	f.products[id] = model.Product{
		ID:          id,
		Name:        params.Name,
		Description: params.Description,
		Price:       params.Price,
		Quantity:    params.Quantity,
	}
	return id, nil
}

func (f *fakeProductRepo) FindProductByName(_ context.Context, name string) (*model.Product, error) {
	for _, product := range f.products {
		if product.Name == name {
			p := product
			return &p, nil
		}
	}
	return nil, nil
}

func (f *fakeProductRepo) FindProductByID(_ context.Context, id int64) (*model.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, nil
	}
	return &product, nil
}

func (f *fakeProductRepo) FindProductByIDForUpdate(ctx context.Context, id int64) (*model.Product, error) {
	return f.FindProductByID(ctx, id)
}

func (f *fakeProductRepo) ListAllProducts(_ context.Context) ([]model.Product, error) {
	products := make([]model.Product, 0, len(f.products))
	for id := int64(1); id < f.nextID; id++ {
		if product, ok := f.products[id]; ok {
			products = append(products, product)
		}
	}
	return products, nil
}

func (f *fakeProductRepo) AddProductQuantity(_ context.Context, id int64, delta int) error {
	product, ok := f.products[id]
	if !ok {
		return errors.New("no such product")
	}
	product.Quantity += delta
	f.products[id] = product
	return nil
}

func (f *fakeProductRepo) UpdateProductQuantity(_ context.Context, id int64, quantity int) error {
	product, ok := f.products[id]
	if !ok {
		return errors.New("no such product")
	}
	product.Quantity = quantity
	f.products[id] = product
	return nil
}

type outboxMsg struct {
	Topic   string
	Payload json.RawMessage
}

type fakeOutboxRepo struct {
	msgs []outboxMsg
}

func (f *fakeOutboxRepo) WithDB(db db.DB) repository.OutboxMsgRepository { return f }

func (f *fakeOutboxRepo) CreateOutboxMsg(_ context.Context, params repository.CreateOutboxMsgParams) error {
	f.msgs = append(f.msgs, outboxMsg{Topic: params.Topic, Payload: params.Payload})
	return nil
}

func (f *fakeOutboxRepo) ListUnprocessedOutboxMsgs(context.Context, repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	return nil, nil
}

func (f *fakeOutboxRepo) BulkUpdateOutboxMsgs(context.Context, repository.BulkUpdateOutboxMsgsParams) error {
	return nil
}

// fakeDB rolls the fake repositories back when the tx func fails, matching
// the all-or-nothing behavior of a real transaction.
type fakeDB struct {
	productRepo *fakeProductRepo
	outboxRepo  *fakeOutboxRepo
}

func (f *fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (f *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }
func (f *fakeDB) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (f *fakeDB) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }

func (f *fakeDB) WithTx(_ context.Context, txFunc func(db.DB) error) error {
	snapshot := maps.Clone(f.productRepo.products)
	snapshotNextID := f.productRepo.nextID
	snapshotMsgs := len(f.outboxRepo.msgs)

	if err := txFunc(f); err != nil {
		f.productRepo.products = snapshot
		f.productRepo.nextID = snapshotNextID
		f.outboxRepo.msgs = f.outboxRepo.msgs[:snapshotMsgs]
		return err
	}
	return nil
}

func newCatalogService(t *testing.T) (service.CatalogService, *fakeProductRepo, *fakeOutboxRepo) {
	t.Helper()

	productRepo := newFakeProductRepo()
	outboxRepo := &fakeOutboxRepo{}
	fdb := &fakeDB{productRepo: productRepo, outboxRepo: outboxRepo}

	return service.NewCatalogService(fdb, productRepo, outboxRepo), productRepo, outboxRepo
}

func seedProduct(t *testing.T, repo *fakeProductRepo, params repository.CreateProductParams) int64 {
	t.Helper()

	id, err := repo.CreateProduct(context.Background(), params)
	require.NoError(t, err)
	return id
}

func TestRegisterProduct_NewName(t *testing.T) {
	svc, productRepo, outboxRepo := newCatalogService(t)
	ctx := context.Background()

	err := svc.RegisterProduct(ctx, service.RegisterProductParams{
		Name:        "Produto A",
		Description: "Descrição A",
		Price:       10.0,
		Quantity:    50,
	})
	require.NoError(t, err)

	require.Len(t, productRepo.products, 1)
	stored := productRepo.products[1]
	assert.Equal(t, "Produto A", stored.Name)
	assert.Equal(t, "Descrição A", stored.Description)
	assert.Equal(t, 10.0, stored.Price)
	assert.Equal(t, 50, stored.Quantity)

	require.Len(t, outboxRepo.msgs, 1)
	assert.Equal(t, event.TopicProductRegistered, outboxRepo.msgs[0].Topic)

	var ev event.ProductRegisteredEvent
	require.NoError(t, json.Unmarshal(outboxRepo.msgs[0].Payload, &ev))
	assert.Equal(t, int64(1), ev.ProductID)
	assert.Equal(t, 50, ev.QuantityAdded)
}

func TestRegisterProduct_ExistingName_IncrementsQuantity(t *testing.T) {
	svc, productRepo, _ := newCatalogService(t)
	ctx := context.Background()

	id := seedProduct(t, productRepo, repository.CreateProductParams{
		Name: "Produto B", Description: "Descrição B", Price: 20.0, Quantity: 100,
	})

	err := svc.RegisterProduct(ctx, service.RegisterProductParams{
		Name:     "Produto B",
		Price:    20.0,
		Quantity: 30,
	})
	require.NoError(t, err)

	require.Len(t, productRepo.products, 1, "must not create a second record")
	assert.Equal(t, 130, productRepo.products[id].Quantity)
}

func TestListAllProducts_EmptyStore(t *testing.T) {
	svc, _, _ := newCatalogService(t)

	products, err := svc.ListAllProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.NotNil(t, products)
}

func TestListAllProducts(t *testing.T) {
	svc, productRepo, _ := newCatalogService(t)

	seedProduct(t, productRepo, repository.CreateProductParams{
		Name: "Produto X", Description: "Desc X", Price: 5.0, Quantity: 20,
	})
	seedProduct(t, productRepo, repository.CreateProductParams{
		Name: "Produto Y", Description: "Desc Y", Price: 15.0, Quantity: 30,
	})

	products, err := svc.ListAllProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Produto X", products[0].Name)
	assert.Equal(t, "Desc X", products[0].Description)
	assert.Equal(t, "Produto Y", products[1].Name)
	assert.Equal(t, "Desc Y", products[1].Description)
}

func TestFindProductByName_Hit(t *testing.T) {
	svc, productRepo, _ := newCatalogService(t)

	seedProduct(t, productRepo, repository.CreateProductParams{
		Name: "Produto B", Description: "Descrição B", Price: 20.0, Quantity: 100,
	})

	product, err := svc.FindProductByName(context.Background(), "Produto B")
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, "Produto B", product.Name)
	assert.Equal(t, "Descrição B", product.Description)
	assert.Equal(t, 20.0, product.Price)
	assert.Equal(t, 100, product.Quantity)
}

func TestFindProductByName_Miss(t *testing.T) {
	svc, _, _ := newCatalogService(t)

	product, err := svc.FindProductByName(context.Background(), "Produto Inexistente")
	require.NoError(t, err)
	assert.Nil(t, product)
}

func TestApplyOrder_SufficientStock(t *testing.T) {
	svc, productRepo, outboxRepo := newCatalogService(t)

	id := seedProduct(t, productRepo, repository.CreateProductParams{
		Name: "Produto B", Description: "Descrição B", Price: 20.0, Quantity: 100,
	})

	err := svc.ApplyOrder(context.Background(), model.Order{
		ID:    1,
		Items: []model.OrderItem{{ProductID: id, Quantity: 5}},
	})
	require.NoError(t, err)

	assert.Equal(t, 95, productRepo.products[id].Quantity)

	require.Len(t, outboxRepo.msgs, 1)
	assert.Equal(t, event.TopicStockUpdated, outboxRepo.msgs[0].Topic)

	var ev event.StockUpdatedEvent
	require.NoError(t, json.Unmarshal(outboxRepo.msgs[0].Payload, &ev))
	assert.Equal(t, int64(1), ev.OrderID)
	require.Len(t, ev.Items, 1)
	assert.Equal(t, id, ev.Items[0].ProductID)
	assert.Equal(t, 5, ev.Items[0].Quantity)
}

func TestApplyOrder_InsufficientStock(t *testing.T) {
	svc, productRepo, outboxRepo := newCatalogService(t)

	id := seedProduct(t, productRepo, repository.CreateProductParams{
		Name: "Produto B", Description: "Descrição B", Price: 20.0, Quantity: 100,
	})

	err := svc.ApplyOrder(context.Background(), model.Order{
		ID:    2,
		Items: []model.OrderItem{{ProductID: id, Quantity: 150}},
	})
	require.Error(t, err)

	assertOutOfStock(t, err, "Insufficient stock for product Produto B.")
	assert.Equal(t, 100, productRepo.products[id].Quantity, "stored quantity must not change")
	assert.Empty(t, outboxRepo.msgs)
}

func TestApplyOrder_UnknownProduct(t *testing.T) {
	svc, productRepo, _ := newCatalogService(t)

	id := seedProduct(t, productRepo, repository.CreateProductParams{
		Name: "Produto B", Quantity: 100,
	})

	err := svc.ApplyOrder(context.Background(), model.Order{
		ID:    1,
		Items: []model.OrderItem{{ProductID: 999, Quantity: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.ProductNotFoundCode, extractZError(t, err).Code())
	assert.Equal(t, 100, productRepo.products[id].Quantity)
}

func TestApplyOrder_MultiItem_AllOrNothing(t *testing.T) {
	svc, productRepo, outboxRepo := newCatalogService(t)

	firstID := seedProduct(t, productRepo, repository.CreateProductParams{
		Name: "Produto A", Quantity: 50,
	})
	secondID := seedProduct(t, productRepo, repository.CreateProductParams{
		Name: "Produto B", Quantity: 2,
	})

	err := svc.ApplyOrder(context.Background(), model.Order{
		ID: 7,
		Items: []model.OrderItem{
			{ProductID: firstID, Quantity: 10},
			{ProductID: secondID, Quantity: 5},
		},
	})
	require.Error(t, err)

	assertOutOfStock(t, err, "Insufficient stock for product Produto B.")
	assert.Equal(t, 50, productRepo.products[firstID].Quantity, "first item must roll back")
	assert.Equal(t, 2, productRepo.products[secondID].Quantity)
	assert.Empty(t, outboxRepo.msgs)
}

func TestApplyOrder_SpecExample(t *testing.T) {
	svc, productRepo, _ := newCatalogService(t)

	id := seedProduct(t, productRepo, repository.CreateProductParams{
		Name: "Produto B", Quantity: 100,
	})

	err := svc.ApplyOrder(context.Background(), model.Order{
		ID:    1,
		Items: []model.OrderItem{{ProductID: id, Quantity: 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, 95, productRepo.products[id].Quantity)

	err = svc.ApplyOrder(context.Background(), model.Order{
		ID:    2,
		Items: []model.OrderItem{{ProductID: id, Quantity: 150}},
	})
	require.Error(t, err)
	assertOutOfStock(t, err, "Insufficient stock for product Produto B.")
	assert.Equal(t, 95, productRepo.products[id].Quantity)
}
