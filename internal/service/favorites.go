package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/store"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// FavoritesView lists a user's favorites. IDs holds every favorited id;
// Products holds those that could be resolved from cached state.
type FavoritesView struct {
	IDs      []string
	Products []domain.Product
}

// FavoritesService manages favorites. Product data comes from cached
// catalog state only, so the list works offline.
type FavoritesService struct {
	state    StateStore
	producer *event.Producer
	logger   *slog.Logger
}

func NewFavoritesService(state StateStore, producer *event.Producer, logger *slog.Logger) *FavoritesService {
	return &FavoritesService{
		state:    state,
		producer: producer,
		logger:   logger,
	}
}

func (s *FavoritesService) List(ctx context.Context, userID string) (*FavoritesView, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	favs, err := s.state.Favorites(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "get favorites")
	}
	return s.view(ctx, favs)
}

// Toggle favorites productID, or unfavorites it when already present. The
// returned bool reports the new state.
func (s *FavoritesService) Toggle(ctx context.Context, userID, productID string) (*FavoritesView, bool, error) {
	if err := requireUser(userID); err != nil {
		return nil, false, err
	}
	if strings.TrimSpace(productID) == "" {
		return nil, false, apperrors.InvalidInput("product id is required")
	}

	favs, err := s.state.DispatchFavorites(ctx, userID, store.ToggleFavorite{ProductID: productID})
	if err != nil {
		return nil, false, apperrors.Wrap(err, "toggle favorite")
	}

	s.publish(ctx, userID, productID, favs)
	view, err := s.view(ctx, favs)
	if err != nil {
		return nil, false, err
	}
	return view, store.SelectIsFavorite(favs, productID), nil
}

func (s *FavoritesService) Remove(ctx context.Context, userID, productID string) (*FavoritesView, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	favs, err := s.state.DispatchFavorites(ctx, userID, store.RemoveFavorite{ProductID: productID})
	if err != nil {
		return nil, apperrors.Wrap(err, "remove favorite")
	}

	s.publish(ctx, userID, productID, favs)
	return s.view(ctx, favs)
}

// view resolves favorited ids against the cached catalog, then against the
// per-product cache for ids the catalog no longer lists.
func (s *FavoritesService) view(ctx context.Context, favs store.FavoritesState) (*FavoritesView, error) {
	v := &FavoritesView{IDs: slices.Clone(favs.IDs)}
	if v.IDs == nil {
		v.IDs = []string{}
	}

	products, _, err := s.state.Products(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "get cached products")
	}
	v.Products = store.SelectFavoriteProducts(favs, products)

	for _, id := range favs.IDs {
		if _, ok := domain.FindProduct(v.Products, id); ok {
			continue
		}
		p, found, err := s.state.CachedProduct(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get cached product %s: %w", id, err)
		}
		if found {
			v.Products = append(v.Products, p)
		}
	}
	return v, nil
}

func (s *FavoritesService) publish(ctx context.Context, userID, productID string, favs store.FavoritesState) {
	if err := s.producer.PublishFavoritesUpdated(ctx, userID, productID, favs.IDs); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish favorites.updated event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}
