package repository

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/example/estoque-api/internal/model"
	"github.com/example/estoque-api/internal/storage/db"
)

type CreateProductParams struct {
	Name        string
	Description string
	Price       float64
	Quantity    int
}

type ProductRepository interface {
	WithDB(db db.DB) ProductRepository
	CreateProduct(ctx context.Context, params CreateProductParams) (int64, error)
	FindProductByName(ctx context.Context, name string) (*model.Product, error)
	FindProductByID(ctx context.Context, id int64) (*model.Product, error)
	// FindProductByIDForUpdate locks the product row for the duration of the
	// surrounding transaction, serializing concurrent stock updates.
	FindProductByIDForUpdate(ctx context.Context, id int64) (*model.Product, error)
	ListAllProducts(ctx context.Context) ([]model.Product, error)
	// AddProductQuantity atomically increments the stored quantity by delta.
	AddProductQuantity(ctx context.Context, id int64, delta int) error
	UpdateProductQuantity(ctx context.Context, id int64, quantity int) error
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, description, price, quantity, created_at, updated_at`

func (r productRepository) CreateProduct(ctx context.Context, params CreateProductParams) (int64, error) {
	var price pgtype.Numeric
	if err := price.Scan(fmt.Sprintf("%f", params.Price)); err != nil {
		return 0, fmt.Errorf("scan price: %w", err)
	}

	if params.Quantity > math.MaxInt32 || params.Quantity < 0 {
		return 0, fmt.Errorf("quantity out of range: %d", params.Quantity)
	}

	var id int64
	if err := r.db.QueryRow(ctx, `
		INSERT INTO products (name, description, price, quantity, created_at, updated_at)
		VALUES (@name, @description, @price, @quantity, NOW(), NOW())
		RETURNING id;
	`, pgx.NamedArgs{
		"name":        params.Name,
		"description": params.Description,
		"price":       price,
		"quantity":    int32(params.Quantity),
	}).Scan(&id); err != nil {
		return 0, fmt.Errorf("create product: %w", err)
	}

	return id, nil
}

func (r productRepository) FindProductByName(ctx context.Context, name string) (*model.Product, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE name = $1;
	`, name)

	return scanProduct(row, "find product by name")
}

func (r productRepository) FindProductByID(ctx context.Context, id int64) (*model.Product, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1;
	`, id)

	return scanProduct(row, "find product by id")
}

func (r productRepository) FindProductByIDForUpdate(ctx context.Context, id int64) (*model.Product, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
		FOR UPDATE;
	`, id)

	return scanProduct(row, "find product by id for update")
}

func (r productRepository) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products;
	`)
	if err != nil {
		return nil, fmt.Errorf("list all products: %w", err)
	}
	defer rows.Close()

	products := make([]model.Product, 0)
	for rows.Next() {
		product, err := scanProductFrom(rows)
		if err != nil {
			return nil, fmt.Errorf("list all products: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list all products rows: %w", err)
	}

	return products, nil
}

func (r productRepository) AddProductQuantity(ctx context.Context, id int64, delta int) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET quantity = quantity + $2, updated_at = NOW()
		WHERE id = $1;
	`, id, int32(delta))
	if err != nil {
		return fmt.Errorf("add product quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("add product quantity: no product with id %d", id)
	}

	return nil
}

func (r productRepository) UpdateProductQuantity(ctx context.Context, id int64, quantity int) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET quantity = $2, updated_at = NOW()
		WHERE id = $1;
	`, id, int32(quantity))
	if err != nil {
		return fmt.Errorf("update product quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update product quantity: no product with id %d", id)
	}

	return nil
}

func scanProduct(row pgx.Row, op string) (*model.Product, error) {
	product, err := scanProductFrom(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &product, nil
}

func scanProductFrom(row pgx.Row) (model.Product, error) {
	var (
		product  model.Product
		price    pgtype.Numeric
		quantity int32
	)
	if err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&price,
		&quantity,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		return model.Product{}, err
	}

	priceValue, err := price.Float64Value()
	if err != nil {
		return model.Product{}, fmt.Errorf("convert price to float64: %w", err)
	}

	product.Price = priceValue.Float64
	product.Quantity = int(quantity)

	return product, nil
}
