package memory

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"digistock/backend/internal/domain"
	"digistock/backend/internal/store"
)

// Store is the in-memory Repository used for development and tests. A single
// mutex critical section per ledger operation gives the same observable
// atomicity as the postgres transactions.
type Store struct {
	mu         sync.RWMutex
	products   map[int64]domain.Product
	entries    map[int64]domain.StockEntry
	sales      map[int64]domain.Sale
	categories map[int64]domain.Category
	suppliers  map[int64]domain.Supplier
	users      map[string]domain.UserAccount

	productSeq  int64
	entrySeq    int64
	saleSeq     int64
	categorySeq int64
	supplierSeq int64
	userSeq     int64
}

func New() *Store {
	return &Store{
		products:   make(map[int64]domain.Product),
		entries:    make(map[int64]domain.StockEntry),
		sales:      make(map[int64]domain.Sale),
		categories: make(map[int64]domain.Category),
		suppliers:  make(map[int64]domain.Supplier),
		users:      make(map[string]domain.UserAccount),
	}
}

// NewSeeded builds a store pre-loaded with demo catalog data so the backend
// is usable without postgres. The admin password comes from SEED_ADMIN_PASSWORD
// with a dev default.
func NewSeeded() *Store {
	s := New()
	ctx := context.Background()

	catPeriferico, _ := s.CreateCategory(ctx, "Periféricos")
	catPapelaria, _ := s.CreateCategory(ctx, "Papelaria")

	supTech, _ := s.CreateSupplier(ctx, domain.Supplier{
		Name:     "TechSul Distribuidora",
		Phone:    "(51) 3322-1100",
		Email:    "vendas@techsul.com.br",
		Address:  "Av. Assis Brasil, 1200",
		PostCode: "91010-000",
		District: "Sarandi",
		City:     "Porto Alegre",
	})
	supConexao, _ := s.CreateSupplier(ctx, domain.Supplier{
		Name:     "Conexão Atacado",
		Phone:    "(11) 4002-8922",
		Email:    "contato@conexaoatacado.com.br",
		Address:  "Rua do Gasômetro, 350",
		PostCode: "03004-000",
		District: "Brás",
		City:     "São Paulo",
	})

	seedProducts := []domain.Product{
		{Name: "Mouse Sem Fio", Barcode: "7891234567890", CategoryID: catPeriferico, SupplierID: supTech, Quantity: 10, MinStock: 5, Price: 59.90},
		{Name: "Teclado Mecânico", Barcode: "7899876543210", CategoryID: catPeriferico, SupplierID: supTech, Quantity: 6, MinStock: 3, Price: 249.00},
		{Name: "Cabo HDMI 2m", Barcode: "7890001112223", CategoryID: catPeriferico, SupplierID: supConexao, Quantity: 25, MinStock: 10, Price: 29.50},
		{Name: "Pen Drive 64GB", Barcode: "7893334445556", CategoryID: catPeriferico, SupplierID: supConexao, Quantity: 2, MinStock: 4, Price: 45.00},
		{Name: "Caderno Universitário", Barcode: "7896667778889", CategoryID: catPapelaria, SupplierID: supConexao, Quantity: 40, MinStock: 12, Price: 18.75},
	}
	for _, p := range seedProducts {
		if _, err := s.CreateProduct(ctx, p); err != nil {
			log.Fatalf("[memory-store] seed product %s: %v", p.Name, err)
		}
	}

	adminPwd := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminPwd == "" {
		adminPwd = "admin123"
		log.Println("[memory-store] WARNING: using default dev admin password. Set SEED_ADMIN_PASSWORD to override.")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPwd), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("[memory-store] failed to hash seed password: %v", err)
	}
	if err := s.CreateUser(ctx, "admin", string(hash)); err != nil {
		log.Fatalf("[memory-store] seed user: %v", err)
	}

	return s
}

// Products.

func (s *Store) ListProducts(_ context.Context) ([]domain.ProductView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	views := make([]domain.ProductView, 0, len(s.products))
	for _, p := range s.products {
		views = append(views, s.viewLocked(p))
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Name < views[j].Name })
	return views, nil
}

func (s *Store) ListProductsBelowMin(_ context.Context) ([]domain.ProductView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	views := make([]domain.ProductView, 0, 8)
	for _, p := range s.products {
		if p.Quantity < p.MinStock {
			views = append(views, s.viewLocked(p))
		}
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Name < views[j].Name })
	return views, nil
}

func (s *Store) viewLocked(p domain.Product) domain.ProductView {
	category := domain.MissingCategoryName
	if c, ok := s.categories[p.CategoryID]; ok {
		category = c.Name
	}
	supplier := domain.MissingSupplierTag
	if sup, ok := s.suppliers[p.SupplierID]; ok {
		supplier = sup.Name
	}
	return domain.ProductView{
		ID:       p.ID,
		Name:     p.Name,
		Barcode:  p.Barcode,
		Category: category,
		Supplier: supplier,
		Quantity: p.Quantity,
		Price:    p.Price,
		MinStock: p.MinStock,
	}
}

func (s *Store) CreateProduct(_ context.Context, p domain.Product) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.products {
		if existing.Barcode == p.Barcode {
			return 0, fmt.Errorf("%w: codigo_barras %s", store.ErrDuplicate, p.Barcode)
		}
	}

	s.productSeq++
	p.ID = s.productSeq
	s.products[p.ID] = p
	return p.ID, nil
}

func (s *Store) GetProductByID(_ context.Context, id int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := p
	return &copied, nil
}

func (s *Store) GetProductByBarcode(_ context.Context, barcode string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.productByBarcodeLocked(barcode)
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := p
	return &copied, nil
}

func (s *Store) productByBarcodeLocked(barcode string) (domain.Product, bool) {
	for _, p := range s.products {
		if p.Barcode == barcode {
			return p, true
		}
	}
	return domain.Product{}, false
}

func (s *Store) UpdateProduct(_ context.Context, p domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[p.ID]; !ok {
		return store.ErrNotFound
	}
	for _, existing := range s.products {
		if existing.ID != p.ID && existing.Barcode == p.Barcode {
			return fmt.Errorf("%w: codigo_barras %s", store.ErrDuplicate, p.Barcode)
		}
	}
	s.products[p.ID] = p
	return nil
}

func (s *Store) DeleteProduct(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

// Entry ledger.

func (s *Store) CreateEntry(_ context.Context, e domain.StockEntry) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[e.ProductID]
	if !ok {
		return 0, fmt.Errorf("%w: produto %d", store.ErrNotFound, e.ProductID)
	}

	s.entrySeq++
	e.ID = s.entrySeq
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	s.entries[e.ID] = e

	product.Quantity += e.Quantity
	s.products[product.ID] = product

	return e.ID, nil
}

func (s *Store) ListEntries(_ context.Context) ([]domain.EntryView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	views := make([]domain.EntryView, 0, len(s.entries))
	for _, e := range s.entries {
		views = append(views, s.entryViewLocked(e))
	}
	sort.Slice(views, func(i, j int) bool {
		if views[i].CreatedAt.Equal(views[j].CreatedAt) {
			return views[i].ID > views[j].ID
		}
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
	return views, nil
}

func (s *Store) entryViewLocked(e domain.StockEntry) domain.EntryView {
	productName := domain.MissingProductName
	if p, ok := s.products[e.ProductID]; ok {
		productName = p.Name
	}
	supplierName := domain.MissingSupplierName
	if sup, ok := s.suppliers[e.SupplierID]; ok {
		supplierName = sup.Name
	}
	return domain.EntryView{
		ID:           e.ID,
		Barcode:      e.Barcode,
		ProductID:    e.ProductID,
		ProductName:  productName,
		SupplierID:   e.SupplierID,
		SupplierName: supplierName,
		Quantity:     e.Quantity,
		UnitCost:     e.UnitCost,
		CreatedAt:    e.CreatedAt,
	}
}

func (s *Store) GetEntryByID(_ context.Context, id int64) (*domain.EntryView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	view := s.entryViewLocked(e)
	return &view, nil
}

func (s *Store) LookupBarcode(_ context.Context, barcode string) (*domain.BarcodeLookup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.productByBarcodeLocked(barcode)
	if !ok {
		return nil, store.ErrNotFound
	}
	supplierName := domain.MissingSupplierName
	if sup, ok := s.suppliers[p.SupplierID]; ok {
		supplierName = sup.Name
	}
	return &domain.BarcodeLookup{
		ProductID:    p.ID,
		ProductName:  p.Name,
		SupplierID:   p.SupplierID,
		SupplierName: supplierName,
	}, nil
}

// UpdateEntry rewrites the entry row and applies the quantity delta to the
// product the entry pointed at BEFORE the edit. Reassigning an entry to a
// different product therefore moves no stock onto the new product; this
// mirrors the legacy system and is pinned by a test.
func (s *Store) UpdateEntry(_ context.Context, id int64, e domain.StockEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.entries[id]
	if !ok {
		return store.ErrNotFound
	}

	e.ID = id
	e.CreatedAt = old.CreatedAt
	s.entries[id] = e

	delta := e.Quantity - old.Quantity
	if product, ok := s.products[old.ProductID]; ok {
		product.Quantity += delta
		s.products[product.ID] = product
	}
	return nil
}

func (s *Store) DeleteEntry(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return store.ErrNotFound
	}
	delete(s.entries, id)

	// No floor at zero: the legacy system lets a delete drive quantity
	// negative when stock was adjusted through another path.
	if product, ok := s.products[e.ProductID]; ok {
		product.Quantity -= e.Quantity
		s.products[product.ID] = product
	}
	return nil
}

// Sale ledger.

func (s *Store) CreateSale(_ context.Context, total float64, paymentMethods string, lines []domain.SaleLine) (*domain.Sale, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: venda sem itens", store.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.SaleItem, 0, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantidade inválida", store.ErrInvalidInput)
		}
		product, ok := s.resolveLocked(line.Ref)
		if !ok {
			return nil, fmt.Errorf("%w: produto com código %s", store.ErrNotFound, line.Ref)
		}
		if product.Quantity < line.Quantity {
			return nil, &store.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.Quantity,
				Requested:   line.Quantity,
			}
		}
		items = append(items, domain.SaleItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  line.Quantity,
		})
	}

	// Conditional decrement, mirroring the SQL `WHERE quantidade >= n`
	// guard. Under the store mutex the pre-check cannot be invalidated, but
	// the write-time re-check is kept so both implementations share the same
	// failure path; applied decrements are undone on failure.
	applied := make([]domain.SaleItem, 0, len(items))
	for _, item := range items {
		product := s.products[item.ProductID]
		if product.Quantity < item.Quantity {
			for _, undo := range applied {
				p := s.products[undo.ProductID]
				p.Quantity += undo.Quantity
				s.products[p.ID] = p
			}
			return nil, &store.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.Quantity,
				Requested:   item.Quantity,
			}
		}
		product.Quantity -= item.Quantity
		s.products[product.ID] = product
		applied = append(applied, item)
	}

	s.saleSeq++
	sale := domain.Sale{
		ID:             s.saleSeq,
		Total:          total,
		PaymentMethods: paymentMethods,
		ProductID:      items[0].ProductID,
		Quantity:       items[0].Quantity,
		Items:          items,
		CreatedAt:      time.Now().UTC(),
	}
	s.sales[sale.ID] = sale

	copied := sale
	copied.Items = append([]domain.SaleItem(nil), sale.Items...)
	return &copied, nil
}

func (s *Store) resolveLocked(ref domain.SaleLineRef) (domain.Product, bool) {
	if ref.Barcode != "" {
		return s.productByBarcodeLocked(ref.Barcode)
	}
	p, ok := s.products[ref.ProductID]
	return p, ok
}

func (s *Store) ListRecentSales(_ context.Context, limit int) ([]domain.Sale, error) {
	all, err := s.ListSales(context.Background())
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *Store) ListSales(_ context.Context) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := make([]domain.Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		copied := sale
		copied.Items = append([]domain.SaleItem(nil), sale.Items...)
		sales = append(sales, copied)
	}
	sort.Slice(sales, func(i, j int) bool {
		if sales[i].CreatedAt.Equal(sales[j].CreatedAt) {
			return sales[i].ID > sales[j].ID
		}
		return sales[i].CreatedAt.After(sales[j].CreatedAt)
	})
	return sales, nil
}

func (s *Store) GetSaleByID(_ context.Context, id int64) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.sales[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := sale
	copied.Items = append([]domain.SaleItem(nil), sale.Items...)
	return &copied, nil
}

// Categories and suppliers.

func (s *Store) ListCategories(_ context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (s *Store) CreateCategory(_ context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.categories {
		if strings.EqualFold(c.Name, name) {
			return 0, fmt.Errorf("%w: categoria %s", store.ErrDuplicate, name)
		}
	}
	s.categorySeq++
	s.categories[s.categorySeq] = domain.Category{ID: s.categorySeq, Name: name}
	return s.categorySeq, nil
}

func (s *Store) UpdateCategory(_ context.Context, id int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return store.ErrNotFound
	}
	for _, c := range s.categories {
		if c.ID != id && strings.EqualFold(c.Name, name) {
			return fmt.Errorf("%w: categoria %s", store.ErrDuplicate, name)
		}
	}
	s.categories[id] = domain.Category{ID: id, Name: name}
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) ListSuppliers(_ context.Context) ([]domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	suppliers := make([]domain.Supplier, 0, len(s.suppliers))
	for _, sup := range s.suppliers {
		suppliers = append(suppliers, sup)
	}
	sort.Slice(suppliers, func(i, j int) bool { return suppliers[i].Name < suppliers[j].Name })
	return suppliers, nil
}

func (s *Store) GetSupplierByID(_ context.Context, id int64) (*domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sup, ok := s.suppliers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := sup
	return &copied, nil
}

func (s *Store) CreateSupplier(_ context.Context, sup domain.Supplier) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.supplierSeq++
	sup.ID = s.supplierSeq
	s.suppliers[sup.ID] = sup
	return sup.ID, nil
}

func (s *Store) UpdateSupplier(_ context.Context, sup domain.Supplier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.suppliers[sup.ID]; !ok {
		return store.ErrNotFound
	}
	s.suppliers[sup.ID] = sup
	return nil
}

func (s *Store) DeleteSupplier(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.suppliers[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.suppliers, id)
	return nil
}

// Users.

func (s *Store) CreateUser(_ context.Context, name string, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(strings.TrimSpace(name))
	if _, ok := s.users[key]; ok {
		return fmt.Errorf("%w: usuário %s", store.ErrDuplicate, name)
	}
	s.userSeq++
	s.users[key] = domain.UserAccount{ID: s.userSeq, Name: name, Password: passwordHash}
	return nil
}

func (s *Store) GetUserByName(_ context.Context, name string) (*domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := user
	return &copied, nil
}
