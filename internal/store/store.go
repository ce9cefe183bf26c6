package store

import (
	"context"
	"errors"
	"fmt"

	"digistock/backend/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrDuplicate         = errors.New("duplicate")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsufficientStockError names the product and the shortfall so callers can
// report which line item sank a sale. It unwraps to ErrInsufficientStock.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("estoque insuficiente para %q (id %d): disponível %d, solicitado %d",
		e.ProductName, e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// Repository is the persistence boundary shared by the postgres and in-memory
// implementations. Each ledger method (entry create/edit/delete, sale create)
// is atomic inside the implementation: the ledger write and the product
// quantity write commit together or not at all.
type Repository interface {
	// Products.
	ListProducts(ctx context.Context) ([]domain.ProductView, error)
	ListProductsBelowMin(ctx context.Context) ([]domain.ProductView, error)
	CreateProduct(ctx context.Context, p domain.Product) (int64, error)
	GetProductByID(ctx context.Context, id int64) (*domain.Product, error)
	GetProductByBarcode(ctx context.Context, barcode string) (*domain.Product, error)
	UpdateProduct(ctx context.Context, p domain.Product) error
	DeleteProduct(ctx context.Context, id int64) error

	// Entry ledger.
	CreateEntry(ctx context.Context, e domain.StockEntry) (int64, error)
	ListEntries(ctx context.Context) ([]domain.EntryView, error)
	GetEntryByID(ctx context.Context, id int64) (*domain.EntryView, error)
	LookupBarcode(ctx context.Context, barcode string) (*domain.BarcodeLookup, error)
	UpdateEntry(ctx context.Context, id int64, e domain.StockEntry) error
	DeleteEntry(ctx context.Context, id int64) error

	// Sale ledger.
	CreateSale(ctx context.Context, total float64, paymentMethods string, lines []domain.SaleLine) (*domain.Sale, error)
	ListRecentSales(ctx context.Context, limit int) ([]domain.Sale, error)
	ListSales(ctx context.Context) ([]domain.Sale, error)
	GetSaleByID(ctx context.Context, id int64) (*domain.Sale, error)

	// Categories and suppliers.
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, name string) (int64, error)
	UpdateCategory(ctx context.Context, id int64, name string) error
	DeleteCategory(ctx context.Context, id int64) error
	ListSuppliers(ctx context.Context) ([]domain.Supplier, error)
	GetSupplierByID(ctx context.Context, id int64) (*domain.Supplier, error)
	CreateSupplier(ctx context.Context, s domain.Supplier) (int64, error)
	UpdateSupplier(ctx context.Context, s domain.Supplier) error
	DeleteSupplier(ctx context.Context, id int64) error

	// Users.
	CreateUser(ctx context.Context, name string, passwordHash string) error
	GetUserByName(ctx context.Context, name string) (*domain.UserAccount, error)
}
