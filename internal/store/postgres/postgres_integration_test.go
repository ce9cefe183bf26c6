package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"digistock/backend/internal/domain"
	"digistock/backend/internal/store"
)

func newIntegrationStore(t *testing.T) *Store {
	t.Helper()
	databaseURL := os.Getenv("DIGISTOCK_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set DIGISTOCK_TEST_DATABASE_URL to run postgres integration tests")
	}

	s, err := New(context.Background(), databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func seedIntegrationProduct(t *testing.T, s *Store, quantity int) int64 {
	t.Helper()
	ctx := context.Background()

	barcode := fmt.Sprintf("IT-%d", time.Now().UnixNano())
	id, err := s.CreateProduct(ctx, domain.Product{
		Name:     "Produto Integração " + barcode,
		Barcode:  barcode,
		Quantity: quantity,
		MinStock: 1,
		Price:    10.00,
	})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM entrada_produto_tb WHERE produto_id = $1`, id)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM produtos_tb WHERE id = $1`, id)
	})
	return id
}

func TestEntryRoundTripPostgres(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()
	productID := seedIntegrationProduct(t, s, 10)

	entryID, err := s.CreateEntry(ctx, domain.StockEntry{
		ProductID: productID,
		Quantity:  5,
		UnitCost:  4.20,
	})
	if err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}

	p, err := s.GetProductByID(ctx, productID)
	if err != nil {
		t.Fatalf("GetProductByID: %v", err)
	}
	if p.Quantity != 15 {
		t.Fatalf("quantity = %d, want 15", p.Quantity)
	}

	if err := s.UpdateEntry(ctx, entryID, domain.StockEntry{ProductID: productID, Quantity: 8, UnitCost: 4.20}); err != nil {
		t.Fatalf("UpdateEntry: %v", err)
	}
	p, _ = s.GetProductByID(ctx, productID)
	if p.Quantity != 18 {
		t.Fatalf("quantity after edit = %d, want 18", p.Quantity)
	}

	if err := s.DeleteEntry(ctx, entryID); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}
	p, _ = s.GetProductByID(ctx, productID)
	if p.Quantity != 10 {
		t.Fatalf("quantity after delete = %d, want 10", p.Quantity)
	}
}

// TestConcurrentOppositeOrderSalesPostgres runs two multi-item sales that
// reference the same two products in opposite line order. Lock acquisition is
// sorted by product id, so neither transaction can deadlock the other; both
// must complete (success or a clean insufficient-stock failure).
func TestConcurrentOppositeOrderSalesPostgres(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()
	firstID := seedIntegrationProduct(t, s, 10)
	secondID := seedIntegrationProduct(t, s, 10)

	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM venda_tb WHERE produto_id IN ($1, $2)`, firstID, secondID)
	})

	orders := [][]domain.SaleLine{
		{
			{Ref: domain.SaleLineRef{ProductID: firstID}, Quantity: 2},
			{Ref: domain.SaleLineRef{ProductID: secondID}, Quantity: 2},
		},
		{
			{Ref: domain.SaleLineRef{ProductID: secondID}, Quantity: 2},
			{Ref: domain.SaleLineRef{ProductID: firstID}, Quantity: 2},
		},
	}

	var wg sync.WaitGroup
	results := make(chan error, len(orders))
	for _, lines := range orders {
		wg.Add(1)
		go func(lines []domain.SaleLine) {
			defer wg.Done()
			_, err := s.CreateSale(ctx, 40.00, "cash", lines)
			results <- err
		}(lines)
	}
	wg.Wait()
	close(results)

	for err := range results {
		if err != nil && !errors.Is(err, store.ErrInsufficientStock) {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	for _, id := range []int64{firstID, secondID} {
		p, err := s.GetProductByID(ctx, id)
		if err != nil {
			t.Fatalf("GetProductByID(%d): %v", id, err)
		}
		if p.Quantity != 6 {
			t.Fatalf("product %d quantity = %d, want 6", id, p.Quantity)
		}
	}
}

func TestConcurrentSalesLastUnitPostgres(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()
	productID := seedIntegrationProduct(t, s, 1)

	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM venda_tb WHERE produto_id = $1`, productID)
	})

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateSale(ctx, 10.00, "cash", []domain.SaleLine{
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

	p, err := s.GetProductByID(ctx, productID)
	if err != nil {
		t.Fatalf("GetProductByID: %v", err)
	}
	if p.Quantity != 0 {
		t.Fatalf("quantity = %d, want 0", p.Quantity)
	}
}
