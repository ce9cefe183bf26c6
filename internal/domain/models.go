package domain

import (
	"strconv"
	"time"
)

// Product is a row of produtos_tb. Quantity is a cached aggregate of the
// entry/sale ledger; only ledger operations may move it after creation.
type Product struct {
	ID         int64   `json:"id"`
	Name       string  `json:"nome"`
	Barcode    string  `json:"codigo_barras"`
	CategoryID int64   `json:"categoria_id"`
	SupplierID int64   `json:"fornecedor_id"`
	Quantity   int     `json:"quantidade"`
	MinStock   int     `json:"estoque_min"`
	Price      float64 `json:"preco"`
}

// ProductView is a product joined with its category and supplier names for
// listing screens. Missing references render as an explicit placeholder.
type ProductView struct {
	ID       int64   `json:"id"`
	Name     string  `json:"nome"`
	Barcode  string  `json:"codigo_barras"`
	Category string  `json:"categoria"`
	Supplier string  `json:"fornecedor"`
	Quantity int     `json:"quantidade"`
	Price    float64 `json:"preco"`
	MinStock int     `json:"estoque_min"`
}

type ProductCreateRequest struct {
	Name       string  `json:"nome" validate:"required,max=100"`
	Barcode    string  `json:"codigo_barras" validate:"required,max=50"`
	CategoryID int64   `json:"categoria_id" validate:"required"`
	SupplierID int64   `json:"fornecedor_id" validate:"required"`
	Quantity   int     `json:"quantidade" validate:"gte=0"`
	MinStock   int     `json:"estoque_min" validate:"gte=0"`
	Price      float64 `json:"preco" validate:"gte=0"`
}

// StockEntry is a row of entrada_produto_tb: one stock-receipt event.
// Creating it increments the product quantity by Quantity; editing applies
// the quantity delta; deleting decrements by Quantity. Barcode is a
// denormalized copy of the product barcode at entry time.
type StockEntry struct {
	ID         int64     `json:"id"`
	ProductID  int64     `json:"produto_id"`
	Barcode    string    `json:"codigo_barras"`
	SupplierID int64     `json:"fornecedor_id"`
	Quantity   int       `json:"quantidade"`
	UnitCost   float64   `json:"preco_custo"`
	CreatedAt  time.Time `json:"data_entrada"`
}

type EntryCreateRequest struct {
	ProductID  int64   `json:"produto_id" validate:"required"`
	Barcode    string  `json:"codigo_barras" validate:"required,max=50"`
	SupplierID int64   `json:"fornecedor_id" validate:"required"`
	Quantity   int     `json:"quantidade" validate:"required,gte=1"`
	UnitCost   float64 `json:"preco_custo" validate:"gte=0"`
}

// EntryView is an entry joined with product and supplier names.
type EntryView struct {
	ID           int64     `json:"id"`
	Barcode      string    `json:"codigo_barras"`
	ProductID    int64     `json:"produto_id"`
	ProductName  string    `json:"produto_nome"`
	SupplierID   int64     `json:"fornecedor_id"`
	SupplierName string    `json:"fornecedor_nome"`
	Quantity     int       `json:"quantidade"`
	UnitCost     float64   `json:"preco_custo"`
	CreatedAt    time.Time `json:"data_entrada"`
}

// BarcodeLookup answers "what product has this barcode" for the entry form
// auto-fill. It resolves through produtos_tb, not the entry ledger.
type BarcodeLookup struct {
	ProductID    int64  `json:"produto_id"`
	ProductName  string `json:"produto_nome"`
	SupplierID   int64  `json:"fornecedor_id"`
	SupplierName string `json:"fornecedor_nome"`
}

// SaleLineRef identifies the product of a sale line either by barcode or by
// numeric id. Exactly one of the two is expected; Barcode wins when both are set.
type SaleLineRef struct {
	Barcode   string `json:"codigo_barras,omitempty"`
	ProductID int64  `json:"produto_id,omitempty"`
}

func (r SaleLineRef) IsZero() bool {
	return r.Barcode == "" && r.ProductID == 0
}

// String renders the reference the way error messages name the missing code.
func (r SaleLineRef) String() string {
	if r.Barcode != "" {
		return r.Barcode
	}
	return "id " + strconv.FormatInt(r.ProductID, 10)
}

type SaleLine struct {
	Ref      SaleLineRef
	Quantity int
}

// SaleItem is the per-line snapshot persisted inside a sale. The product name
// is captured at sale time so history survives later renames and deletions.
type SaleItem struct {
	ProductID int64  `json:"id"`
	Name      string `json:"nome"`
	Quantity  int    `json:"quantidade"`
}

// Sale is a row of venda_tb. Items is the decoded produtos_vendidos snapshot.
// ProductID and Quantity mirror the first line item, kept for compatibility
// with the legacy reporting queries.
type Sale struct {
	ID             int64      `json:"id"`
	Total          float64    `json:"total"`
	PaymentMethods string     `json:"payment_methods"`
	ProductID      int64      `json:"produto_id"`
	Quantity       int        `json:"quantidade"`
	Items          []SaleItem `json:"produtos_vendidos"`
	CreatedAt      time.Time  `json:"data_venda"`
}

type SaleCreateRequest struct {
	Total          float64
	PaymentMethods string
	Lines          []SaleLine
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"nome_categoria"`
}

type CategoryRequest struct {
	Name string `json:"nome_categoria" validate:"required,max=100"`
}

type Supplier struct {
	ID       int64  `json:"id"`
	Name     string `json:"nome"`
	Phone    string `json:"telefone"`
	Email    string `json:"email"`
	Address  string `json:"endereco"`
	PostCode string `json:"cep"`
	District string `json:"bairro"`
	City     string `json:"cidade"`
}

type SupplierRequest struct {
	Name     string `json:"nome" validate:"required,max=100"`
	Phone    string `json:"telefone" validate:"required,max=15"`
	Email    string `json:"email" validate:"required,email"`
	Address  string `json:"endereco" validate:"required,max=255"`
	PostCode string `json:"cep" validate:"required,len=9"`
	District string `json:"bairro" validate:"required,max=100"`
	City     string `json:"cidade" validate:"required,max=100"`
}

// UserAccount is a row of usuario_tb. Password holds a bcrypt hash.
type UserAccount struct {
	ID       int64
	Name     string
	Password string
}

type RegisterRequest struct {
	Name     string `json:"nome" validate:"required,min=3,max=100"`
	Password string `json:"senha" validate:"required,min=6"`
}

type LoginRequest struct {
	Name     string `json:"nome"`
	Password string `json:"senha"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// Actor is the authenticated caller extracted from a bearer token.
type Actor struct {
	Name string
}

// Placeholders rendered when a joined reference no longer resolves.
const (
	MissingProductName  = "Produto não encontrado"
	MissingSupplierName = "Fornecedor não encontrado"
	MissingCategoryName = "Sem categoria"
	MissingSupplierTag  = "Sem fornecedor"
)
