package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"digistock/backend/internal/domain"
	"digistock/backend/internal/store"
)

func newStoreWithProduct(t *testing.T, quantity int) (*Store, int64) {
	t.Helper()
	s := New()
	ctx := context.Background()

	id, err := s.CreateProduct(ctx, domain.Product{
		Name:     "Mouse Sem Fio",
		Barcode:  "7891234567890",
		Quantity: quantity,
		MinStock: 5,
		Price:    59.90,
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	return s, id
}

func productQuantity(t *testing.T, s *Store, id int64) int {
	t.Helper()
	p, err := s.GetProductByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetProductByID(%d): %v", id, err)
	}
	return p.Quantity
}

func TestEntryRoundTrip(t *testing.T) {
	s, productID := newStoreWithProduct(t, 10)
	ctx := context.Background()

	entryID, err := s.CreateEntry(ctx, domain.StockEntry{
		ProductID: productID,
		Barcode:   "7891234567890",
		Quantity:  5,
		UnitCost:  32.00,
	})
	if err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	if got := productQuantity(t, s, productID); got != 15 {
		t.Fatalf("quantity after entry = %d, want 15", got)
	}

	if err := s.DeleteEntry(ctx, entryID); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}
	if got := productQuantity(t, s, productID); got != 10 {
		t.Fatalf("quantity after delete = %d, want 10", got)
	}
}

func TestCreateEntryUnknownProduct(t *testing.T) {
	s := New()
	_, err := s.CreateEntry(context.Background(), domain.StockEntry{ProductID: 999, Quantity: 1})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateEntryAppliesDelta(t *testing.T) {
	s, productID := newStoreWithProduct(t, 10)
	ctx := context.Background()

	entryID, err := s.CreateEntry(ctx, domain.StockEntry{ProductID: productID, Quantity: 5})
	if err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	// Product now at 15, of which 5 came from this entry.

	err = s.UpdateEntry(ctx, entryID, domain.StockEntry{ProductID: productID, Quantity: 8})
	if err != nil {
		t.Fatalf("UpdateEntry: %v", err)
	}
	if got := productQuantity(t, s, productID); got != 18 {
		t.Fatalf("quantity after edit = %d, want 18 (delta +3)", got)
	}
}

// TestUpdateEntryReassignmentAdjustsOriginalProduct pins the historical edit
// behavior: when an edit moves an entry to a different product, the quantity
// delta still lands on the product the entry pointed at before the edit, and
// the new product's stock is untouched.
func TestUpdateEntryReassignmentAdjustsOriginalProduct(t *testing.T) {
	s, firstID := newStoreWithProduct(t, 10)
	ctx := context.Background()

	secondID, err := s.CreateProduct(ctx, domain.Product{
		Name:    "Teclado Mecânico",
		Barcode: "7899876543210",
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	entryID, err := s.CreateEntry(ctx, domain.StockEntry{ProductID: firstID, Quantity: 5})
	if err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}

	err = s.UpdateEntry(ctx, entryID, domain.StockEntry{ProductID: secondID, Quantity: 9})
	if err != nil {
		t.Fatalf("UpdateEntry: %v", err)
	}

	if got := productQuantity(t, s, firstID); got != 19 {
		t.Fatalf("original product quantity = %d, want 19 (delta +4 on original)", got)
	}
	if got := productQuantity(t, s, secondID); got != 0 {
		t.Fatalf("new product quantity = %d, want 0 (untouched)", got)
	}

	entry, err := s.GetEntryByID(ctx, entryID)
	if err != nil {
		t.Fatalf("GetEntryByID: %v", err)
	}
	if entry.ProductID != secondID {
		t.Fatalf("entry.ProductID = %d, want %d", entry.ProductID, secondID)
	}
}

func TestDeleteEntryHasNoFloor(t *testing.T) {
	s, productID := newStoreWithProduct(t, 10)
	ctx := context.Background()

	entryID, err := s.CreateEntry(ctx, domain.StockEntry{ProductID: productID, Quantity: 5})
	if err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}

	// Simulate stock consumed through another path before the delete.
	sale := []domain.SaleLine{{Ref: domain.SaleLineRef{ProductID: productID}, Quantity: 12}}
	if _, err := s.CreateSale(ctx, 100, "cash", sale); err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	if err := s.DeleteEntry(ctx, entryID); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}
	if got := productQuantity(t, s, productID); got != -2 {
		t.Fatalf("quantity after delete = %d, want -2 (no floor)", got)
	}
}

func TestCreateSaleByBarcode(t *testing.T) {
	s, productID := newStoreWithProduct(t, 10)
	ctx := context.Background()

	sale, err := s.CreateSale(ctx, 179.70, "cash", []domain.SaleLine{
		{Ref: domain.SaleLineRef{Barcode: "7891234567890"}, Quantity: 3},
	})
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	if got := productQuantity(t, s, productID); got != 7 {
		t.Fatalf("quantity after sale = %d, want 7", got)
	}
	if sale.ProductID != productID || sale.Quantity != 3 {
		t.Fatalf("sale summary = (%d, %d), want (%d, 3)", sale.ProductID, sale.Quantity, productID)
	}
	if len(sale.Items) != 1 || sale.Items[0].Name != "Mouse Sem Fio" {
		t.Fatalf("sale items = %+v, want snapshot with product name", sale.Items)
	}
}

func TestCreateSaleUnknownBarcode(t *testing.T) {
	s, _ := newStoreWithProduct(t, 10)
	_, err := s.CreateSale(context.Background(), 10, "cash", []domain.SaleLine{
		{Ref: domain.SaleLineRef{Barcode: "0000000000000"}, Quantity: 1},
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateSaleAllOrNothing(t *testing.T) {
	s, aID := newStoreWithProduct(t, 10)
	ctx := context.Background()

	bID, err := s.CreateProduct(ctx, domain.Product{Name: "Pen Drive 64GB", Barcode: "7893334445556", Quantity: 2})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	_, err = s.CreateSale(ctx, 100, "cash", []domain.SaleLine{
		{Ref: domain.SaleLineRef{ProductID: aID}, Quantity: 2},
		{Ref: domain.SaleLineRef{ProductID: bID}, Quantity: 999999},
	})
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}

	var stockErr *store.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("err %v does not carry InsufficientStockError detail", err)
	}
	if stockErr.ProductName != "Pen Drive 64GB" || stockErr.Requested != 999999 {
		t.Fatalf("detail = %+v, want the failing product and shortfall", stockErr)
	}

	if got := productQuantity(t, s, aID); got != 10 {
		t.Fatalf("product A quantity = %d, want 10 (unchanged)", got)
	}
	if got := productQuantity(t, s, bID); got != 2 {
		t.Fatalf("product B quantity = %d, want 2 (unchanged)", got)
	}
	sales, err := s.ListSales(ctx)
	if err != nil {
		t.Fatalf("ListSales: %v", err)
	}
	if len(sales) != 0 {
		t.Fatalf("sales persisted = %d, want 0", len(sales))
	}
}

func TestConcurrentSalesLastUnit(t *testing.T) {
	s, productID := newStoreWithProduct(t, 1)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateSale(ctx, 59.90, "cash", []domain.SaleLine{
				{Ref: domain.SaleLineRef{ProductID: productID}, Quantity: 1},
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, insufficient int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, store.ErrInsufficientStock):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || insufficient != 1 {
		t.Fatalf("successes=%d insufficient=%d, want exactly one of each", successes, insufficient)
	}
	if got := productQuantity(t, s, productID); got != 0 {
		t.Fatalf("quantity = %d, want 0", got)
	}
}

func TestListRecentSalesLimit(t *testing.T) {
	s, productID := newStoreWithProduct(t, 100)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		_, err := s.CreateSale(ctx, 59.90, "cash", []domain.SaleLine{
			{Ref: domain.SaleLineRef{ProductID: productID}, Quantity: 1},
		})
		if err != nil {
			t.Fatalf("CreateSale #%d: %v", i, err)
		}
	}

	sales, err := s.ListRecentSales(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecentSales: %v", err)
	}
	if len(sales) != 10 {
		t.Fatalf("len = %d, want 10", len(sales))
	}
	// Newest first.
	if sales[0].ID <= sales[9].ID {
		t.Fatalf("sales not ordered newest first: first id %d, last id %d", sales[0].ID, sales[9].ID)
	}
}

// TestQuantityMatchesLedger checks the aggregate invariant after a mix of
// ledger operations: quantity equals entries minus sale line items.
func TestQuantityMatchesLedger(t *testing.T) {
	s, productID := newStoreWithProduct(t, 0)
	ctx := context.Background()

	e1, err := s.CreateEntry(ctx, domain.StockEntry{ProductID: productID, Quantity: 20})
	if err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	if _, err := s.CreateEntry(ctx, domain.StockEntry{ProductID: productID, Quantity: 7}); err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	if err := s.UpdateEntry(ctx, e1, domain.StockEntry{ProductID: productID, Quantity: 25}); err != nil {
		t.Fatalf("UpdateEntry: %v", err)
	}
	if _, err := s.CreateSale(ctx, 100, "pix", []domain.SaleLine{
		{Ref: domain.SaleLineRef{ProductID: productID}, Quantity: 4},
	}); err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	// 25 + 7 - 4
	if got := productQuantity(t, s, productID); got != 28 {
		t.Fatalf("quantity = %d, want 28", got)
	}
}

func TestCreateCategoryDuplicate(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.CreateCategory(ctx, "Periféricos"); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	_, err := s.CreateCategory(ctx, "periféricos")
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
}

func TestListProductsBelowMin(t *testing.T) {
	s := NewSeeded()
	views, err := s.ListProductsBelowMin(context.Background())
	if err != nil {
		t.Fatalf("ListProductsBelowMin: %v", err)
	}
	if len(views) != 1 || views[0].Name != "Pen Drive 64GB" {
		t.Fatalf("below-min = %+v, want only Pen Drive 64GB", views)
	}
}
