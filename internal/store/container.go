package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const productsKey = "products"

func cartKey(userID string) string      { return "cart:" + userID }
func favoritesKey(userID string) string { return "favorites:" + userID }
func productKey(id string) string       { return "product:" + id }

// Container loads, reduces and saves state slices. Dispatches against the
// same key are serialised so concurrent read-modify-write cycles do not lose
// updates within a process.
type Container struct {
	kv     repository.KVStore
	locks  *keyLocks
	logger *slog.Logger
}

func NewContainer(kv repository.KVStore, logger *slog.Logger) *Container {
	if logger == nil {
		logger = slog.Default()
	}
	return &Container{
		kv:     kv,
		locks:  newKeyLocks(),
		logger: logger,
	}
}

// Ping checks the underlying store.
func (c *Container) Ping(ctx context.Context) error {
	return c.kv.Ping(ctx)
}

// --- Cart ---

func (c *Container) Cart(ctx context.Context, userID string) (CartState, error) {
	var s CartState
	if _, err := c.load(ctx, cartKey(userID), &s); err != nil {
		return CartState{}, err
	}
	return s, nil
}

func (c *Container) DispatchCart(ctx context.Context, userID string, a CartAction) (CartState, error) {
	var next CartState
	err := c.update(ctx, cartKey(userID), func() (any, error) {
		s, err := c.Cart(ctx, userID)
		if err != nil {
			return nil, err
		}
		if chk, ok := a.(cartChecker); ok {
			if err := chk.checkCart(s); err != nil {
				return nil, err
			}
		}
		next = ReduceCart(s, a)
		return next, nil
	})
	return next, err
}

// --- Favorites ---

func (c *Container) Favorites(ctx context.Context, userID string) (FavoritesState, error) {
	var s FavoritesState
	if _, err := c.load(ctx, favoritesKey(userID), &s); err != nil {
		return FavoritesState{}, err
	}
	return s, nil
}

func (c *Container) DispatchFavorites(ctx context.Context, userID string, a FavoritesAction) (FavoritesState, error) {
	var next FavoritesState
	err := c.update(ctx, favoritesKey(userID), func() (any, error) {
		s, err := c.Favorites(ctx, userID)
		if err != nil {
			return nil, err
		}
		next = ReduceFavorites(s, a)
		return next, nil
	})
	return next, err
}

// --- Products ---

// Products returns the cached catalog and whether one has ever been stored.
func (c *Container) Products(ctx context.Context) (ProductsState, bool, error) {
	var s ProductsState
	found, err := c.load(ctx, productsKey, &s)
	if err != nil {
		return ProductsState{}, false, err
	}
	return s, found, nil
}

func (c *Container) DispatchProducts(ctx context.Context, a ProductsAction) (ProductsState, error) {
	var next ProductsState
	err := c.update(ctx, productsKey, func() (any, error) {
		s, _, err := c.Products(ctx)
		if err != nil {
			return nil, err
		}
		next = ReduceProducts(s, a)
		return next, nil
	})
	return next, err
}

// CachedProduct returns the per-product detail cache entry for id.
func (c *Container) CachedProduct(ctx context.Context, id string) (domain.Product, bool, error) {
	var p domain.Product
	found, err := c.load(ctx, productKey(id), &p)
	if err != nil {
		return domain.Product{}, false, err
	}
	return p, found, nil
}

func (c *Container) CacheProduct(ctx context.Context, p domain.Product) error {
	return c.save(ctx, productKey(p.ID), p)
}

// ============================================================================
// Persistence helpers
// ============================================================================

func (c *Container) update(ctx context.Context, key string, reduce func() (any, error)) error {
	unlock := c.locks.lock(key)
	defer unlock()

	next, err := reduce()
	if err != nil {
		return err
	}
	return c.save(ctx, key, next)
}

// load decodes the value under key into dst. A missing key leaves dst at its
// zero value and reports false. A value that no longer decodes is treated as
// missing so a schema change cannot wedge a user's state.
func (c *Container) load(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.logger.WarnContext(ctx, "discarding undecodable state",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return false, nil
	}
	return true, nil
}

func (c *Container) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// ============================================================================
// Per-key locking
// ============================================================================

type keyLock struct {
	mu   sync.Mutex
	refs int
}

type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[string]*keyLock)}
}

// lock acquires the mutex for key and returns its release func. Entries are
// dropped once no goroutine holds or waits on them.
func (k *keyLocks) lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
