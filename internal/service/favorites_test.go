package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func TestFavorites_ToggleAndList(t *testing.T) {
	state := newTestState(t)
	seedCatalog(t, state, sampleCatalog(), time.Now())
	svc := NewFavoritesService(state, newNoopProducer(), newTestLogger())
	ctx := context.Background()

	_, on, err := svc.Toggle(ctx, "u", "3")
	require.NoError(t, err)
	assert.True(t, on)
	_, _, err = svc.Toggle(ctx, "u", "1")
	require.NoError(t, err)

	view, err := svc.List(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "1"}, view.IDs)
	require.Len(t, view.Products, 2)
	assert.Equal(t, "1", view.Products[0].ID)
	assert.Equal(t, "3", view.Products[1].ID)

	view, on, err = svc.Toggle(ctx, "u", "3")
	require.NoError(t, err)
	assert.False(t, on)
	assert.Equal(t, []string{"1"}, view.IDs)
}

func TestFavorites_ResolvesFromDetailCache(t *testing.T) {
	state := newTestState(t)
	seedCatalog(t, state, sampleCatalog(), time.Now())
	require.NoError(t, state.CacheProduct(context.Background(), domain.Product{ID: "99", Title: "Delisted"}))
	svc := NewFavoritesService(state, newNoopProducer(), newTestLogger())
	ctx := context.Background()

	for _, id := range []string{"99", "2", "404"} {
		_, _, err := svc.Toggle(ctx, "u", id)
		require.NoError(t, err)
	}

	view, err := svc.List(ctx, "u")
	require.NoError(t, err)
	assert.Len(t, view.IDs, 3)
	require.Len(t, view.Products, 2)
	assert.Equal(t, "2", view.Products[0].ID)
	assert.Equal(t, "Delisted", view.Products[1].Title)
}

func TestFavorites_EmptyList(t *testing.T) {
	svc := NewFavoritesService(newTestState(t), newNoopProducer(), newTestLogger())

	view, err := svc.List(context.Background(), "u")

	require.NoError(t, err)
	assert.NotNil(t, view.IDs)
	assert.Empty(t, view.Products)
}

func TestFavorites_Remove(t *testing.T) {
	state := newTestState(t)
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, event.TopicFavoritesUpdated, mock.Anything).Return(nil).Twice()
	svc := NewFavoritesService(state, event.NewProducer(pub, newTestLogger()), newTestLogger())
	ctx := context.Background()

	_, _, err := svc.Toggle(ctx, "u", "1")
	require.NoError(t, err)

	view, err := svc.Remove(ctx, "u", "1")

	require.NoError(t, err)
	assert.Empty(t, view.IDs)
	pub.AssertExpectations(t)
}

func TestFavorites_Validation(t *testing.T) {
	svc := NewFavoritesService(newTestState(t), newNoopProducer(), newTestLogger())

	_, _, err := svc.Toggle(context.Background(), "u", " ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.List(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
