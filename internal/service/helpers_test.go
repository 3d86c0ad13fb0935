package service

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/repository/memory"
	"github.com/utafrali/storefront/internal/store"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
)

// --- Mock catalog source ---

type mockSource struct {
	mock.Mock
}

func (m *mockSource) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockSource) FetchProductByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

// --- Mock publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, topic string, e *pkgkafka.Event) error {
	return m.Called(ctx, topic, e).Error(0)
}

func (m *mockPublisher) Close() error { return nil }

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestState(t *testing.T) *store.Container {
	t.Helper()
	return store.NewContainer(memory.NewKVStore(0), newTestLogger())
}

func newNoopProducer() *event.Producer {
	return event.NewProducer(pkgkafka.NewNoopPublisher(newTestLogger()), newTestLogger())
}

func strPtr(s string) *string { return &s }

func sampleCatalog() []domain.Product {
	return []domain.Product{
		{ID: "1", Title: "iPhone 14 Pro", Price: 999, Category: strPtr("smartphones"), Rating: 4.7},
		{ID: "2", Title: "MacBook Pro", Price: 1999, Category: strPtr("laptops"), Rating: 4.8},
		{ID: "3", Title: "Audio Speaker", Price: 100, Category: strPtr("audio"), Rating: 4.1},
		{ID: "4", Title: "Smart Watch", Price: 200, Category: strPtr("wearable"), Rating: 3.9},
	}
}
