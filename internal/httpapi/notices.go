package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// noticeBoard holds the dashboard notices, keyed by a fixed set of
// categories. They live in process memory and reset on restart; only the
// low-stock warning is backed by the database.
type noticeBoard struct {
	mu      sync.RWMutex
	entries map[string][]string
}

func newNoticeBoard() *noticeBoard {
	return &noticeBoard{entries: map[string][]string{
		"sistema": {},
		"estoque": {},
		"geral":   {},
	}}
}

func (b *noticeBoard) snapshot() map[string][]string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[string][]string, len(b.entries))
	for category, notices := range b.entries {
		out[category] = append([]string{}, notices...)
	}
	return out
}

func (b *noticeBoard) get(category string) ([]string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	notices, ok := b.entries[category]
	if !ok {
		return nil, false
	}
	return append([]string{}, notices...), true
}

// replace swaps a category's notices. Unknown categories are rejected; the
// category set is fixed.
func (b *noticeBoard) replace(category string, notices []string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.entries[category]; !ok {
		return false
	}
	// Never store a nil slice so cleared categories render as [] in JSON.
	b.entries[category] = append([]string{}, notices...)
	return true
}

func (a *API) handleNotices(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, a.notices.snapshot())
	case http.MethodPost:
		var req struct {
			Sistema []string `json:"sistema"`
			Estoque []string `json:"estoque"`
			Geral   []string `json:"geral"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if req.Sistema != nil {
			a.notices.replace("sistema", req.Sistema)
		}
		if req.Estoque != nil {
			a.notices.replace("estoque", req.Estoque)
		}
		if req.Geral != nil {
			a.notices.replace("geral", req.Geral)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Avisos atualizados com sucesso",
			"avisos":  a.notices.snapshot(),
		})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleNoticeActions(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimPrefix(r.URL.Path, "/avisos/")

	// The low-stock warning shadows the category namespace, as the original
	// route ordering did.
	if category == "produtos-baixos" {
		a.handleProductsBelowMin(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		notices, ok := a.notices.get(category)
		if !ok {
			writeError(w, http.StatusNotFound, errors.New("Categoria de aviso não encontrada."))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"categoria": category,
			"avisos":    notices,
		})
	case http.MethodPut:
		var req struct {
			Avisos []string `json:"avisos"`
		}
		if err := decodeJSON(r, &req); err != nil || req.Avisos == nil {
			writeError(w, http.StatusBadRequest, errors.New("Os avisos devem ser enviados em um array."))
			return
		}
		if !a.notices.replace(category, req.Avisos) {
			writeError(w, http.StatusNotFound, errors.New("Categoria de aviso não encontrada."))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message": fmt.Sprintf("Avisos da categoria %s atualizados.", category),
			"avisos":  a.notices.snapshot(),
		})
	case http.MethodDelete:
		if !a.notices.replace(category, nil) {
			writeError(w, http.StatusNotFound, errors.New("Categoria de aviso não encontrada."))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message": fmt.Sprintf("Avisos da categoria %s removidos.", category),
			"avisos":  a.notices.snapshot(),
		})
	default:
		writeMethodNotAllowed(w)
	}
}
