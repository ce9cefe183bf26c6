package cache

import (
	"context"
	"time"

	"digistock/backend/internal/domain"
)

// BarcodeCache caches the barcode → product/supplier resolution used by the
// entry form auto-fill, the hottest read in the system (one lookup per scan).
type BarcodeCache interface {
	Get(ctx context.Context, barcode string) (*domain.BarcodeLookup, bool, error)
	Set(ctx context.Context, barcode string, value *domain.BarcodeLookup, ttl time.Duration) error
	Invalidate(ctx context.Context, barcode string) error
}

type NoopBarcodeCache struct{}

func (NoopBarcodeCache) Get(_ context.Context, _ string) (*domain.BarcodeLookup, bool, error) {
	return nil, false, nil
}

func (NoopBarcodeCache) Set(_ context.Context, _ string, _ *domain.BarcodeLookup, _ time.Duration) error {
	return nil
}

func (NoopBarcodeCache) Invalidate(_ context.Context, _ string) error {
	return nil
}
