package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

// Kafka topics for storefront domain events.
var (
	TopicCartUpdated      = pkgkafka.Topic("cart", "updated")
	TopicCartCleared      = pkgkafka.Topic("cart", "cleared")
	TopicFavoritesUpdated = pkgkafka.Topic("favorites", "updated")
)

const (
	AggregateTypeCart      = "cart"
	AggregateTypeFavorites = "favorites"
)

// SourceStorefront identifies events originating from this service.
const SourceStorefront = "storefront"

// CartUpdatedData is the payload for a cart.updated event. Amounts are
// decimal strings so consumers never see float rounding.
type CartUpdatedData struct {
	UserID    string         `json:"user_id"`
	Items     []CartItemData `json:"items"`
	ItemCount int            `json:"item_count"`
	Subtotal  string         `json:"subtotal"`
}

type CartItemData struct {
	ProductID string  `json:"product_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type CartClearedData struct {
	UserID string `json:"user_id"`
}

type FavoritesUpdatedData struct {
	UserID     string   `json:"user_id"`
	ProductIDs []string `json:"product_ids"`
	ProductID  string   `json:"product_id"`
	Favorited  bool     `json:"favorited"`
}

// Producer publishes storefront domain events.
type Producer struct {
	publisher pkgkafka.Publisher
	logger    *slog.Logger
}

func NewProducer(publisher pkgkafka.Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		logger:    logger,
	}
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, userID string, items []domain.CartLineItem) error {
	data := CartUpdatedData{
		UserID:    userID,
		Items:     make([]CartItemData, len(items)),
		ItemCount: domain.ItemCount(items),
		Subtotal:  domain.ComputeTotals(items, domain.PromoState{}).Subtotal.StringFixed(2),
	}
	for i, item := range items {
		data.Items[i] = CartItemData{
			ProductID: item.Product.ID,
			Title:     item.Product.Title,
			Price:     item.Product.Price,
			Quantity:  item.Quantity,
		}
	}

	if err := p.publish(ctx, TopicCartUpdated, userID, AggregateTypeCart, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("user_id", userID),
		slog.Int("item_count", data.ItemCount),
	)
	return nil
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, userID string) error {
	if err := p.publish(ctx, TopicCartCleared, userID, AggregateTypeCart, CartClearedData{UserID: userID}); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published cart.cleared event", slog.String("user_id", userID))
	return nil
}

// PublishFavoritesUpdated publishes a favorites.updated event for a change
// to productID.
func (p *Producer) PublishFavoritesUpdated(ctx context.Context, userID, productID string, ids []string) error {
	favorited := false
	for _, id := range ids {
		if id == productID {
			favorited = true
			break
		}
	}
	if ids == nil {
		ids = []string{}
	}
	data := FavoritesUpdatedData{
		UserID:     userID,
		ProductIDs: ids,
		ProductID:  productID,
		Favorited:  favorited,
	}

	if err := p.publish(ctx, TopicFavoritesUpdated, userID, AggregateTypeFavorites, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published favorites.updated event",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
		slog.Bool("favorited", favorited),
	)
	return nil
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.publisher.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	return nil
}
