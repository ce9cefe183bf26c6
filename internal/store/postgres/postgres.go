package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"digistock/backend/internal/domain"
	"digistock/backend/internal/store"
)

// Store is the postgres Repository. Ledger operations open one transaction
// each; the pre-check reads lock the product rows (FOR UPDATE) and the sale
// decrement re-checks the quantity at write time, so concurrent sales of the
// same product serialize on the row and a lost race rolls the sale back.
type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Products.

const productViewSelect = `
	SELECT p.id, p.nome, p.codigo_barras,
	       COALESCE(c.nome_categoria, 'Sem categoria') AS categoria,
	       COALESCE(f.nome, 'Sem fornecedor') AS fornecedor,
	       p.quantidade, p.preco, p.estoque_min
	FROM produtos_tb p
	LEFT JOIN categoria_tb c ON p.categoria_id = c.id
	LEFT JOIN fornecedor_tb f ON p.fornecedor_id = f.id
`

func (s *Store) ListProducts(ctx context.Context) ([]domain.ProductView, error) {
	return s.queryProductViews(ctx, productViewSelect+` ORDER BY p.nome ASC`)
}

func (s *Store) ListProductsBelowMin(ctx context.Context) ([]domain.ProductView, error) {
	return s.queryProductViews(ctx, productViewSelect+` WHERE p.quantidade < p.estoque_min ORDER BY p.nome ASC`)
}

func (s *Store) queryProductViews(ctx context.Context, query string) ([]domain.ProductView, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := make([]domain.ProductView, 0, 64)
	for rows.Next() {
		var v domain.ProductView
		if err := rows.Scan(&v.ID, &v.Name, &v.Barcode, &v.Category, &v.Supplier, &v.Quantity, &v.Price, &v.MinStock); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func (s *Store) CreateProduct(ctx context.Context, p domain.Product) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO produtos_tb (nome, codigo_barras, categoria_id, fornecedor_id, quantidade, preco, estoque_min)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id
	`, p.Name, p.Barcode, p.CategoryID, p.SupplierID, p.Quantity, p.Price, p.MinStock).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: codigo_barras %s", store.ErrDuplicate, p.Barcode)
		}
		return 0, err
	}
	return id, nil
}

func (s *Store) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	return s.scanProduct(s.db.QueryRowContext(ctx, `
		SELECT id, nome, codigo_barras, categoria_id, fornecedor_id, quantidade, preco, estoque_min
		FROM produtos_tb WHERE id = $1
	`, id))
}

func (s *Store) GetProductByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	return s.scanProduct(s.db.QueryRowContext(ctx, `
		SELECT id, nome, codigo_barras, categoria_id, fornecedor_id, quantidade, preco, estoque_min
		FROM produtos_tb WHERE codigo_barras = $1
	`, barcode))
}

func (s *Store) scanProduct(row *sql.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Barcode, &p.CategoryID, &p.SupplierID, &p.Quantity, &p.Price, &p.MinStock)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) UpdateProduct(ctx context.Context, p domain.Product) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE produtos_tb
		SET nome = $1, codigo_barras = $2, categoria_id = $3, fornecedor_id = $4,
		    quantidade = $5, preco = $6, estoque_min = $7
		WHERE id = $8
	`, p.Name, p.Barcode, p.CategoryID, p.SupplierID, p.Quantity, p.Price, p.MinStock, p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: codigo_barras %s", store.ErrDuplicate, p.Barcode)
		}
		return err
	}
	return requireAffected(res)
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM produtos_tb WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Entry ledger.

func (s *Store) CreateEntry(ctx context.Context, e domain.StockEntry) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	// Lock the product row for the duration of the insert + increment so a
	// concurrent sale cannot interleave between the two writes.
	var productID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM produtos_tb WHERE id = $1 FOR UPDATE`, e.ProductID).Scan(&productID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: produto %d", store.ErrNotFound, e.ProductID)
	}
	if err != nil {
		return 0, err
	}

	var entryID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO entrada_produto_tb (produto_id, codigo_barras, fornecedor_id, quantidade, preco_custo, data_entrada)
		VALUES ($1,$2,$3,$4,$5,NOW())
		RETURNING id
	`, e.ProductID, e.Barcode, e.SupplierID, e.Quantity, e.UnitCost).Scan(&entryID)
	if err != nil {
		return 0, err
	}

	if err := adjustQuantityTx(ctx, tx, e.ProductID, e.Quantity); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return entryID, nil
}

// adjustQuantityTx applies an unconditional delta to a product's on-hand
// quantity inside the caller's transaction.
func adjustQuantityTx(ctx context.Context, tx *sql.Tx, productID int64, delta int) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE produtos_tb SET quantidade = quantidade + $1 WHERE id = $2
	`, delta, productID)
	return err
}

// adjustQuantityIfSufficientTx is the conditional decrement used by sales: it
// only applies when the row still holds at least amount units, and reports
// whether a row was affected so the caller can detect a lost race.
func adjustQuantityIfSufficientTx(ctx context.Context, tx *sql.Tx, productID int64, amount int) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE produtos_tb SET quantidade = quantidade - $1
		WHERE id = $2 AND quantidade >= $1
	`, amount, productID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

const entryViewSelect = `
	SELECT ep.id, ep.codigo_barras, ep.produto_id,
	       COALESCE(p.nome, 'Produto não encontrado') AS produto_nome,
	       ep.fornecedor_id,
	       COALESCE(f.nome, 'Fornecedor não encontrado') AS fornecedor_nome,
	       ep.quantidade, ep.preco_custo, ep.data_entrada
	FROM entrada_produto_tb ep
	LEFT JOIN produtos_tb p ON ep.produto_id = p.id
	LEFT JOIN fornecedor_tb f ON ep.fornecedor_id = f.id
`

func (s *Store) ListEntries(ctx context.Context) ([]domain.EntryView, error) {
	rows, err := s.db.QueryContext(ctx, entryViewSelect+` ORDER BY ep.data_entrada DESC, ep.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := make([]domain.EntryView, 0, 64)
	for rows.Next() {
		var v domain.EntryView
		if err := rows.Scan(&v.ID, &v.Barcode, &v.ProductID, &v.ProductName, &v.SupplierID, &v.SupplierName, &v.Quantity, &v.UnitCost, &v.CreatedAt); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func (s *Store) GetEntryByID(ctx context.Context, id int64) (*domain.EntryView, error) {
	var v domain.EntryView
	err := s.db.QueryRowContext(ctx, entryViewSelect+` WHERE ep.id = $1`, id).
		Scan(&v.ID, &v.Barcode, &v.ProductID, &v.ProductName, &v.SupplierID, &v.SupplierName, &v.Quantity, &v.UnitCost, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// LookupBarcode resolves through produtos_tb: it answers "what product has
// this barcode", not "what was the last entry for it".
func (s *Store) LookupBarcode(ctx context.Context, barcode string) (*domain.BarcodeLookup, error) {
	var l domain.BarcodeLookup
	err := s.db.QueryRowContext(ctx, `
		SELECT p.id, p.nome, p.fornecedor_id,
		       COALESCE(f.nome, 'Fornecedor não encontrado')
		FROM produtos_tb p
		LEFT JOIN fornecedor_tb f ON p.fornecedor_id = f.id
		WHERE p.codigo_barras = $1
		LIMIT 1
	`, barcode).Scan(&l.ProductID, &l.ProductName, &l.SupplierID, &l.SupplierName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// UpdateEntry rewrites the entry row and applies the quantity delta to the
// product the entry pointed at BEFORE the edit, even when produto_id changes.
// This mirrors the legacy system; see the pinning test in the memory store.
func (s *Store) UpdateEntry(ctx context.Context, id int64, e domain.StockEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var originalProductID int64
	var oldQuantity int
	err = tx.QueryRowContext(ctx, `
		SELECT produto_id, quantidade FROM entrada_produto_tb WHERE id = $1 FOR UPDATE
	`, id).Scan(&originalProductID, &oldQuantity)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE entrada_produto_tb
		SET produto_id = $1, codigo_barras = $2, fornecedor_id = $3, quantidade = $4, preco_custo = $5
		WHERE id = $6
	`, e.ProductID, e.Barcode, e.SupplierID, e.Quantity, e.UnitCost, id)
	if err != nil {
		return err
	}

	if err := adjustQuantityTx(ctx, tx, originalProductID, e.Quantity-oldQuantity); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) DeleteEntry(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var productID int64
	var quantity int
	err = tx.QueryRowContext(ctx, `
		SELECT produto_id, quantidade FROM entrada_produto_tb WHERE id = $1 FOR UPDATE
	`, id).Scan(&productID, &quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM entrada_produto_tb WHERE id = $1`, id); err != nil {
		return err
	}

	// No floor at zero on delete, matching the legacy system.
	if err := adjustQuantityTx(ctx, tx, productID, -quantity); err != nil {
		return err
	}

	return tx.Commit()
}

// Sale ledger.

func (s *Store) CreateSale(ctx context.Context, total float64, paymentMethods string, lines []domain.SaleLine) (*domain.Sale, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: venda sem itens", store.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	// Resolve every reference before taking any row lock, then lock the
	// product rows in ascending id order. Concurrent multi-item sales that
	// share products always acquire locks in the same order regardless of
	// how the caller ordered the lines, so they cannot deadlock each other.
	ids := make([]int64, 0, len(lines))
	refByID := make(map[int64]domain.SaleLineRef, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantidade inválida", store.ErrInvalidInput)
		}
		id, err := resolveLineID(ctx, tx, line.Ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
		if _, ok := refByID[id]; !ok {
			refByID[id] = line.Ref
		}
	}

	lockOrder := append([]int64(nil), ids...)
	sort.Slice(lockOrder, func(i, j int) bool { return lockOrder[i] < lockOrder[j] })

	locked := make(map[int64]domain.Product, len(lockOrder))
	for _, id := range lockOrder {
		if _, ok := locked[id]; ok {
			continue
		}
		var p domain.Product
		err := tx.QueryRowContext(ctx, `
			SELECT id, nome, quantidade FROM produtos_tb WHERE id = $1 FOR UPDATE
		`, id).Scan(&p.ID, &p.Name, &p.Quantity)
		if errors.Is(err, sql.ErrNoRows) {
			// Row deleted between resolution and lock.
			return nil, fmt.Errorf("%w: produto com código %s", store.ErrNotFound, refByID[id])
		}
		if err != nil {
			return nil, err
		}
		locked[id] = p
	}

	items := make([]domain.SaleItem, 0, len(lines))
	for i, line := range lines {
		product := locked[ids[i]]
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

	snapshot, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}

	sale := domain.Sale{
		Total:          total,
		PaymentMethods: paymentMethods,
		ProductID:      items[0].ProductID,
		Quantity:       items[0].Quantity,
		Items:          items,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO venda_tb (total, produto_id, quantidade, payment_methods, produtos_vendidos, data_venda)
		VALUES ($1,$2,$3,$4,$5,NOW())
		RETURNING id, data_venda
	`, total, sale.ProductID, sale.Quantity, paymentMethods, string(snapshot)).Scan(&sale.ID, &sale.CreatedAt)
	if err != nil {
		return nil, err
	}

	// Re-checked decrement: the FOR UPDATE pre-check above already serializes
	// concurrent sales, but the conditional write is the last line of defense
	// when the lock is lost (e.g. an out-of-band quantity write between
	// statements). Zero affected rows means another writer consumed the
	// stock; the whole sale rolls back.
	for _, item := range items {
		applied, err := adjustQuantityIfSufficientTx(ctx, tx, item.ProductID, item.Quantity)
		if err != nil {
			return nil, err
		}
		if !applied {
			return nil, &store.InsufficientStockError{
				ProductID:   item.ProductID,
				ProductName: item.Name,
				Requested:   item.Quantity,
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &sale, nil
}

// resolveLineID maps a sale line reference onto a product id without locking
// the row; the lock is taken afterwards in id order.
func resolveLineID(ctx context.Context, tx *sql.Tx, ref domain.SaleLineRef) (int64, error) {
	query := `SELECT id FROM produtos_tb WHERE id = $1`
	arg := any(ref.ProductID)
	if ref.Barcode != "" {
		query = `SELECT id FROM produtos_tb WHERE codigo_barras = $1`
		arg = ref.Barcode
	}

	var id int64
	err := tx.QueryRowContext(ctx, query, arg).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: produto com código %s", store.ErrNotFound, ref)
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) ListRecentSales(ctx context.Context, limit int) ([]domain.Sale, error) {
	if limit < 1 {
		limit = 10
	}
	return s.querySales(ctx, `
		SELECT id, total, produto_id, quantidade, payment_methods, produtos_vendidos, data_venda
		FROM venda_tb ORDER BY data_venda DESC, id DESC LIMIT $1
	`, limit)
}

func (s *Store) ListSales(ctx context.Context) ([]domain.Sale, error) {
	return s.querySales(ctx, `
		SELECT id, total, produto_id, quantidade, payment_methods, produtos_vendidos, data_venda
		FROM venda_tb ORDER BY data_venda DESC, id DESC
	`)
}

func (s *Store) querySales(ctx context.Context, query string, args ...any) ([]domain.Sale, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0, 16)
	for rows.Next() {
		sale, err := scanSale(rows.Scan)
		if err != nil {
			return nil, err
		}
		sales = append(sales, *sale)
	}
	return sales, rows.Err()
}

func (s *Store) GetSaleByID(ctx context.Context, id int64) (*domain.Sale, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, total, produto_id, quantidade, payment_methods, produtos_vendidos, data_venda
		FROM venda_tb WHERE id = $1
	`, id)
	sale, err := scanSale(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return sale, err
}

func scanSale(scan func(...any) error) (*domain.Sale, error) {
	var sale domain.Sale
	var snapshot string
	if err := scan(&sale.ID, &sale.Total, &sale.ProductID, &sale.Quantity, &sale.PaymentMethods, &snapshot, &sale.CreatedAt); err != nil {
		return nil, err
	}
	if snapshot != "" {
		if err := json.Unmarshal([]byte(snapshot), &sale.Items); err != nil {
			return nil, fmt.Errorf("decode produtos_vendidos for venda %d: %w", sale.ID, err)
		}
	}
	return &sale, nil
}

// Categories and suppliers.

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, nome_categoria FROM categoria_tb ORDER BY nome_categoria ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]domain.Category, 0, 16)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Store) CreateCategory(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO categoria_tb (nome_categoria) VALUES ($1) RETURNING id
	`, name).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: categoria %s", store.ErrDuplicate, name)
		}
		return 0, err
	}
	return id, nil
}

func (s *Store) UpdateCategory(ctx context.Context, id int64, name string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE categoria_tb SET nome_categoria = $1 WHERE id = $2`, name, id)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: categoria %s", store.ErrDuplicate, name)
		}
		return err
	}
	return requireAffected(res)
}

func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categoria_tb WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *Store) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, nome, telefone, email, endereco, cep, bairro, cidade
		FROM fornecedor_tb ORDER BY nome ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	suppliers := make([]domain.Supplier, 0, 16)
	for rows.Next() {
		var sup domain.Supplier
		if err := rows.Scan(&sup.ID, &sup.Name, &sup.Phone, &sup.Email, &sup.Address, &sup.PostCode, &sup.District, &sup.City); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, sup)
	}
	return suppliers, rows.Err()
}

func (s *Store) GetSupplierByID(ctx context.Context, id int64) (*domain.Supplier, error) {
	var sup domain.Supplier
	err := s.db.QueryRowContext(ctx, `
		SELECT id, nome, telefone, email, endereco, cep, bairro, cidade
		FROM fornecedor_tb WHERE id = $1
	`, id).Scan(&sup.ID, &sup.Name, &sup.Phone, &sup.Email, &sup.Address, &sup.PostCode, &sup.District, &sup.City)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sup, nil
}

func (s *Store) CreateSupplier(ctx context.Context, sup domain.Supplier) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO fornecedor_tb (nome, telefone, email, endereco, cep, bairro, cidade)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id
	`, sup.Name, sup.Phone, sup.Email, sup.Address, sup.PostCode, sup.District, sup.City).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) UpdateSupplier(ctx context.Context, sup domain.Supplier) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE fornecedor_tb
		SET nome = $1, telefone = $2, email = $3, endereco = $4, cep = $5, bairro = $6, cidade = $7
		WHERE id = $8
	`, sup.Name, sup.Phone, sup.Email, sup.Address, sup.PostCode, sup.District, sup.City, sup.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *Store) DeleteSupplier(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM fornecedor_tb WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Users.

func (s *Store) CreateUser(ctx context.Context, name string, passwordHash string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usuario_tb (nome, senha) VALUES ($1, $2)
	`, name, passwordHash)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: usuário %s", store.ErrDuplicate, name)
	}
	return err
}

func (s *Store) GetUserByName(ctx context.Context, name string) (*domain.UserAccount, error) {
	var user domain.UserAccount
	err := s.db.QueryRowContext(ctx, `
		SELECT id, nome, senha FROM usuario_tb WHERE nome = $1
	`, name).Scan(&user.ID, &user.Name, &user.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
