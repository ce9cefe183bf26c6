package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"digistock/backend/internal/cache"
	"digistock/backend/internal/domain"
	"digistock/backend/internal/store"
	"digistock/backend/internal/validation"
)

// Service holds the business rules between the HTTP layer and the store.
// Request validation happens here so both handlers and future callers (CLI,
// import jobs) get the same checks.
type Service struct {
	repo     store.Repository
	barcodes cache.BarcodeCache
	cacheTTL time.Duration
}

func New(repo store.Repository, barcodes cache.BarcodeCache, cacheTTL time.Duration) *Service {
	if barcodes == nil {
		barcodes = cache.NoopBarcodeCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &Service{repo: repo, barcodes: barcodes, cacheTTL: cacheTTL}
}

func invalid(errs []validation.FieldError) error {
	return fmt.Errorf("%w: %s", store.ErrInvalidInput, validation.Message(errs))
}

// Entry ledger.

func (s *Service) CreateEntry(ctx context.Context, req domain.EntryCreateRequest) (int64, error) {
	if errs := validation.Struct(req); errs != nil {
		return 0, invalid(errs)
	}
	return s.repo.CreateEntry(ctx, domain.StockEntry{
		ProductID:  req.ProductID,
		Barcode:    req.Barcode,
		SupplierID: req.SupplierID,
		Quantity:   req.Quantity,
		UnitCost:   req.UnitCost,
	})
}

func (s *Service) ListEntries(ctx context.Context) ([]domain.EntryView, error) {
	return s.repo.ListEntries(ctx)
}

func (s *Service) GetEntry(ctx context.Context, id int64) (*domain.EntryView, error) {
	return s.repo.GetEntryByID(ctx, id)
}

// LookupEntryBarcode resolves a scanned barcode for the entry form, consulting
// the cache first. Cache failures degrade to a direct lookup.
func (s *Service) LookupEntryBarcode(ctx context.Context, barcode string) (*domain.BarcodeLookup, error) {
	if barcode == "" {
		return nil, fmt.Errorf("%w: código de barras vazio", store.ErrInvalidInput)
	}

	if cached, ok, err := s.barcodes.Get(ctx, barcode); err != nil {
		log.Printf("barcode cache get failed: %v", err)
	} else if ok {
		return cached, nil
	}

	lookup, err := s.repo.LookupBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	if err := s.barcodes.Set(ctx, barcode, lookup, s.cacheTTL); err != nil {
		log.Printf("barcode cache set failed: %v", err)
	}
	return lookup, nil
}

func (s *Service) UpdateEntry(ctx context.Context, id int64, req domain.EntryCreateRequest) error {
	if errs := validation.Struct(req); errs != nil {
		return invalid(errs)
	}
	return s.repo.UpdateEntry(ctx, id, domain.StockEntry{
		ProductID:  req.ProductID,
		Barcode:    req.Barcode,
		SupplierID: req.SupplierID,
		Quantity:   req.Quantity,
		UnitCost:   req.UnitCost,
	})
}

func (s *Service) DeleteEntry(ctx context.Context, id int64) error {
	return s.repo.DeleteEntry(ctx, id)
}

// Sale ledger.

func (s *Service) CreateSale(ctx context.Context, req domain.SaleCreateRequest) (*domain.Sale, error) {
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: venda sem itens", store.ErrInvalidInput)
	}
	if req.Total < 0 {
		return nil, fmt.Errorf("%w: total negativo", store.ErrInvalidInput)
	}
	for i, line := range req.Lines {
		if line.Ref.IsZero() {
			return nil, fmt.Errorf("%w: item %d sem código de barras nem produto_id", store.ErrInvalidInput, i+1)
		}
		if line.Quantity < 1 {
			return nil, fmt.Errorf("%w: item %d com quantidade inválida", store.ErrInvalidInput, i+1)
		}
	}
	return s.repo.CreateSale(ctx, req.Total, req.PaymentMethods, req.Lines)
}

func (s *Service) ListRecentSales(ctx context.Context, limit int) ([]domain.Sale, error) {
	return s.repo.ListRecentSales(ctx, limit)
}

func (s *Service) ListSales(ctx context.Context) ([]domain.Sale, error) {
	return s.repo.ListSales(ctx)
}

func (s *Service) GetSale(ctx context.Context, id int64) (*domain.Sale, error) {
	return s.repo.GetSaleByID(ctx, id)
}

// Products.

func (s *Service) ListProducts(ctx context.Context) ([]domain.ProductView, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) ListProductsBelowMin(ctx context.Context) ([]domain.ProductView, error) {
	return s.repo.ListProductsBelowMin(ctx)
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (int64, error) {
	if errs := validation.Struct(req); errs != nil {
		return 0, invalid(errs)
	}
	id, err := s.repo.CreateProduct(ctx, domain.Product{
		Name:       req.Name,
		Barcode:    req.Barcode,
		CategoryID: req.CategoryID,
		SupplierID: req.SupplierID,
		Quantity:   req.Quantity,
		MinStock:   req.MinStock,
		Price:      req.Price,
	})
	if err != nil {
		return 0, err
	}
	s.invalidateBarcode(ctx, req.Barcode)
	return id, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.GetProductByID(ctx, id)
}

func (s *Service) GetProductByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	if barcode == "" {
		return nil, fmt.Errorf("%w: código de barras vazio", store.ErrInvalidInput)
	}
	return s.repo.GetProductByBarcode(ctx, barcode)
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, req domain.ProductCreateRequest) error {
	if errs := validation.Struct(req); errs != nil {
		return invalid(errs)
	}

	current, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.repo.UpdateProduct(ctx, domain.Product{
		ID:         id,
		Name:       req.Name,
		Barcode:    req.Barcode,
		CategoryID: req.CategoryID,
		SupplierID: req.SupplierID,
		Quantity:   req.Quantity,
		MinStock:   req.MinStock,
		Price:      req.Price,
	})
	if err != nil {
		return err
	}

	s.invalidateBarcode(ctx, current.Barcode)
	if req.Barcode != current.Barcode {
		s.invalidateBarcode(ctx, req.Barcode)
	}
	return nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	current, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.invalidateBarcode(ctx, current.Barcode)
	return nil
}

func (s *Service) invalidateBarcode(ctx context.Context, barcode string) {
	if barcode == "" {
		return
	}
	if err := s.barcodes.Invalidate(ctx, barcode); err != nil {
		log.Printf("barcode cache invalidate failed: %v", err)
	}
}

// Categories and suppliers.

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, req domain.CategoryRequest) (int64, error) {
	if errs := validation.Struct(req); errs != nil {
		return 0, invalid(errs)
	}
	return s.repo.CreateCategory(ctx, req.Name)
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, req domain.CategoryRequest) error {
	if errs := validation.Struct(req); errs != nil {
		return invalid(errs)
	}
	return s.repo.UpdateCategory(ctx, id, req.Name)
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.repo.DeleteCategory(ctx, id)
}

func (s *Service) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}

func (s *Service) GetSupplier(ctx context.Context, id int64) (*domain.Supplier, error) {
	return s.repo.GetSupplierByID(ctx, id)
}

func (s *Service) CreateSupplier(ctx context.Context, req domain.SupplierRequest) (int64, error) {
	if errs := validation.Struct(req); errs != nil {
		return 0, invalid(errs)
	}
	return s.repo.CreateSupplier(ctx, supplierFromRequest(0, req))
}

func (s *Service) UpdateSupplier(ctx context.Context, id int64, req domain.SupplierRequest) error {
	if errs := validation.Struct(req); errs != nil {
		return invalid(errs)
	}
	return s.repo.UpdateSupplier(ctx, supplierFromRequest(id, req))
}

func (s *Service) DeleteSupplier(ctx context.Context, id int64) error {
	return s.repo.DeleteSupplier(ctx, id)
}

func supplierFromRequest(id int64, req domain.SupplierRequest) domain.Supplier {
	return domain.Supplier{
		ID:       id,
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Address:  req.Address,
		PostCode: req.PostCode,
		District: req.District,
		City:     req.City,
	}
}
