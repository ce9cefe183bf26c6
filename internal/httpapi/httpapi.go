package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"digistock/backend/internal/domain"
	"digistock/backend/internal/service"
	"digistock/backend/internal/store"
)

type API struct {
	service       *service.Service
	auth          *AuthManager
	allowedOrigin string
	authRequired  bool
	notices       *noticeBoard
}

func New(svc *service.Service, auth *AuthManager, allowedOrigin string, authRequired bool) *API {
	return &API{
		service:       svc,
		auth:          auth,
		allowedOrigin: allowedOrigin,
		authRequired:  authRequired,
		notices:       newNoticeBoard(),
	}
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", a.handleHealth)
	mux.HandleFunc("/auth/register", a.handleRegister)
	mux.HandleFunc("/auth/login", a.handleLogin)

	mux.HandleFunc("/entrada", a.handleEntryCreate)
	mux.HandleFunc("/entradas", a.handleEntryList)
	mux.HandleFunc("/entrada/", a.handleEntryActions)

	mux.HandleFunc("/venda", a.handleSaleCreate)
	mux.HandleFunc("/vendas", a.handleSaleList)
	mux.HandleFunc("/venda/", a.handleSaleActions)

	mux.HandleFunc("/produtos", a.handleProducts)
	mux.HandleFunc("/produtos/abaixo-estoque", a.handleProductsBelowMin)
	mux.HandleFunc("/produto/", a.handleProductActions)

	mux.HandleFunc("/categorias", a.handleCategories)
	mux.HandleFunc("/categoria/", a.handleCategoryActions)

	mux.HandleFunc("/fornecedores", a.handleSuppliers)
	mux.HandleFunc("/fornecedor/", a.handleSupplierActions)

	mux.HandleFunc("/avisos", a.handleNotices)
	mux.HandleFunc("/avisos/", a.handleNoticeActions)

	return a.withMiddleware(mux)
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		w.Header().Set("Vary", "Origin")

		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if !a.authorize(w, r) {
			return
		}

		startedAt := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s rid=%s", r.Method, r.URL.Path, time.Since(startedAt), requestID)
	})
}

// authorize enforces the bearer token on mutating requests when AUTH_REQUIRED
// is on. Reads stay open so the dashboards keep working without a token.
func (a *API) authorize(w http.ResponseWriter, r *http.Request) bool {
	if !a.authRequired {
		return true
	}
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	if strings.HasPrefix(r.URL.Path, "/auth/") {
		return true
	}

	authorization := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
		writeError(w, http.StatusUnauthorized, errors.New("token de acesso ausente"))
		return false
	}
	token := strings.TrimSpace(authorization[len("Bearer "):])
	if _, err := a.auth.ParseToken(token); err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return false
	}
	return true
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Auth.

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req domain.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.auth.Register(r.Context(), req); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Usuário registrado com sucesso!"})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	resp, err := a.auth.Login(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Entries.

func (a *API) handleEntryCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req domain.EntryCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id, err := a.service.CreateEntry(r.Context(), req)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, errors.New("Produto não encontrado no banco de dados."))
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Entrada registrada com sucesso! Estoque atualizado!",
		"entradaId": id,
	})
}

func (a *API) handleEntryList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	entries, err := a.service.ListEntries(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (a *API) handleEntryActions(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/entrada/")

	if code, ok := strings.CutPrefix(rest, "codigo_barras/"); ok {
		a.handleEntryBarcode(w, r, code)
		return
	}

	id, err := parseID(rest)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		entry, err := a.service.GetEntry(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, errors.New("Entrada não encontrada."))
				return
			}
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entry)
	case http.MethodPut:
		var req domain.EntryCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := a.service.UpdateEntry(r.Context(), id, req); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, errors.New("Entrada não encontrada."))
				return
			}
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Entrada editada com sucesso!"})
	case http.MethodDelete:
		if err := a.service.DeleteEntry(r.Context(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, errors.New("Entrada não encontrada."))
				return
			}
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Entrada excluída com sucesso!"})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleEntryBarcode(w http.ResponseWriter, r *http.Request, code string) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	lookup, err := a.service.LookupEntryBarcode(r.Context(), code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, errors.New("Nenhuma entrada encontrada para esse código de barras."))
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lookup)
}

// Sales.

// saleRequest mirrors the historical wire format: parallel arrays where
// produto_id carries barcode strings or numeric product ids, and quantidade
// carries the quantity sold at the same index.
type saleRequest struct {
	ProductCodes   []json.RawMessage `json:"produto_id"`
	Quantities     []int             `json:"quantidade"`
	Total          float64           `json:"total"`
	PaymentMethods string            `json:"payment_methods"`
}

func (req saleRequest) lines() ([]domain.SaleLine, error) {
	if len(req.ProductCodes) != len(req.Quantities) {
		return nil, errors.New("produto_id e quantidade devem ter o mesmo tamanho")
	}
	lines := make([]domain.SaleLine, 0, len(req.ProductCodes))
	for i, raw := range req.ProductCodes {
		ref, err := parseSaleRef(raw)
		if err != nil {
			return nil, err
		}
		lines = append(lines, domain.SaleLine{Ref: ref, Quantity: req.Quantities[i]})
	}
	return lines, nil
}

// parseSaleRef accepts either a JSON string (barcode) or a JSON number
// (product id) for one element of produto_id.
func parseSaleRef(raw json.RawMessage) (domain.SaleLineRef, error) {
	var barcode string
	if err := json.Unmarshal(raw, &barcode); err == nil {
		return domain.SaleLineRef{Barcode: barcode}, nil
	}
	var id int64
	if err := json.Unmarshal(raw, &id); err == nil {
		return domain.SaleLineRef{ProductID: id}, nil
	}
	return domain.SaleLineRef{}, errors.New("produto_id deve conter códigos de barras ou ids numéricos")
}

func (a *API) handleSaleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req saleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeSaleFailure(w, http.StatusBadRequest, "Produto e quantidade são obrigatórios!")
		return
	}
	if len(req.ProductCodes) == 0 || len(req.Quantities) == 0 {
		writeSaleFailure(w, http.StatusBadRequest, "Produto e quantidade são obrigatórios!")
		return
	}
	lines, err := req.lines()
	if err != nil {
		writeSaleFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	sale, err := a.service.CreateSale(r.Context(), domain.SaleCreateRequest{
		Total:          req.Total,
		PaymentMethods: req.PaymentMethods,
		Lines:          lines,
	})
	if err != nil {
		if errors.Is(err, store.ErrInvalidInput) {
			writeSaleFailure(w, http.StatusBadRequest, err.Error())
			return
		}
		// Not-found and insufficient stock surface as a generic failure, the
		// same way internal errors do. The detail goes to the log only.
		log.Printf("venda rejeitada: %v", err)
		writeSaleFailure(w, http.StatusInternalServerError, "Erro interno ao registrar venda. Verifique os dados.")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Venda registrada com sucesso!",
		"vendaId": sale.ID,
	})
}

func writeSaleFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"message": message,
	})
}

func (a *API) handleSaleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	sales, err := a.service.ListSales(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sales)
}

func (a *API) handleSaleActions(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/venda/")

	if rest == "ultimas" {
		a.handleRecentSales(w, r)
		return
	}

	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	id, err := parseID(rest)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sale, err := a.service.GetSale(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sale)
}

func (a *API) handleRecentSales(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	sales, err := a.service.ListRecentSales(r.Context(), 10)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if len(sales) == 0 {
		writeSaleFailure(w, http.StatusNotFound, "Nenhuma venda encontrada.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"vendas":  sales,
	})
}

// Products.

func (a *API) handleProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		products, err := a.service.ListProducts(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if len(products) == 0 {
			writeError(w, http.StatusNotFound, errors.New("Nenhum produto encontrado."))
			return
		}
		writeJSON(w, http.StatusOK, products)
	case http.MethodPost:
		var req domain.ProductCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		id, err := a.service.CreateProduct(r.Context(), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"message":   "Produto cadastrado com sucesso!",
			"produtoId": id,
		})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleProductsBelowMin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	products, err := a.service.ListProductsBelowMin(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if len(products) == 0 {
		writeError(w, http.StatusNotFound, errors.New("Nenhum produto abaixo do estoque mínimo encontrado."))
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (a *API) handleProductActions(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/produto/")

	if code, ok := strings.CutPrefix(rest, "codigo/"); ok {
		a.handleProductByBarcode(w, r, code)
		return
	}

	id, err := parseID(rest)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		product, err := a.service.GetProduct(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, product)
	case http.MethodPut:
		var req domain.ProductCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := a.service.UpdateProduct(r.Context(), id, req); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Produto atualizado com sucesso!"})
	case http.MethodDelete:
		if err := a.service.DeleteProduct(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Produto excluído com sucesso!"})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleProductByBarcode(w http.ResponseWriter, r *http.Request, code string) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	product, err := a.service.GetProductByBarcode(r.Context(), code)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// Categories.

func (a *API) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		categories, err := a.service.ListCategories(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, categories)
	case http.MethodPost:
		var req domain.CategoryRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		id, err := a.service.CreateCategory(r.Context(), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"message":     "Categoria cadastrada com sucesso!",
			"categoriaId": id,
		})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleCategoryActions(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(strings.TrimPrefix(r.URL.Path, "/categoria/"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req domain.CategoryRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := a.service.UpdateCategory(r.Context(), id, req); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Categoria atualizada com sucesso!"})
	case http.MethodDelete:
		if err := a.service.DeleteCategory(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Categoria excluída com sucesso!"})
	default:
		writeMethodNotAllowed(w)
	}
}

// Suppliers.

func (a *API) handleSuppliers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		suppliers, err := a.service.ListSuppliers(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, suppliers)
	case http.MethodPost:
		var req domain.SupplierRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		id, err := a.service.CreateSupplier(r.Context(), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"message":      "Fornecedor cadastrado com sucesso!",
			"fornecedorId": id,
		})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleSupplierActions(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(strings.TrimPrefix(r.URL.Path, "/fornecedor/"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		supplier, err := a.service.GetSupplier(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, supplier)
	case http.MethodPut:
		var req domain.SupplierRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := a.service.UpdateSupplier(r.Context(), id, req); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Fornecedor atualizado com sucesso!"})
	case http.MethodDelete:
		if err := a.service.DeleteSupplier(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Fornecedor excluído com sucesso!"})
	default:
		writeMethodNotAllowed(w)
	}
}

// Helpers.

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("id inválido")
	}
	return id, nil
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

// writeServiceError maps store sentinels onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, store.ErrDuplicate):
		writeError(w, http.StatusConflict, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("método não permitido"))
}

func writeError(w http.ResponseWriter, status int, err error) {
	// 5xx messages stay generic so datastore details never reach the caller.
	msg := err.Error()
	if status >= 500 {
		log.Printf("internal error (status %d): %v", status, err)
		msg = "erro interno do servidor"
	}
	writeJSON(w, status, map[string]any{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
