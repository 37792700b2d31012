// Package service provides the product business logic of the reference endpoint.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abgdnv/stocksync/internal/product"
	"github.com/abgdnv/stocksync/internal/server/store"
	"github.com/abgdnv/stocksync/pkg/messaging"
	"github.com/abgdnv/stocksync/pkg/messaging/events"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ProductService defines the methods for managing products.
type ProductService interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns product.ErrNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*product.Product, error)

	// FindAll returns a page of products ordered by ID.
	FindAll(ctx context.Context, offset, limit int32) ([]product.Product, error)

	// Create stores a new product and returns it with its assigned ID.
	Create(ctx context.Context, p ProductCreateDto) (*product.Product, error)

	// Update overwrites an existing product.
	// Returns product.ErrNotFound if no product exists with the given ID.
	Update(ctx context.Context, p product.Product) (*product.Product, error)

	// DeleteByID removes a product by its ID.
	// Returns product.ErrNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id int64) error
}

// ProductCreateDto represents the data transfer object for creating a new product.
type ProductCreateDto struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Quantity int32  `json:"quantity" validate:"min=0"`
}

var _ ProductService = (*Service)(nil)

// Service implements ProductService and announces every change through a publisher.
type Service struct {
	repository store.ProductStore
	publisher  messaging.Publisher
	logger     *slog.Logger
	now        func() time.Time
	changes    metric.Int64Counter
}

// NewService creates a new instance of ProductService.
func NewService(repo store.ProductStore, publisher messaging.Publisher, logger *slog.Logger) *Service {
	changes, err := otel.Meter("stockd").Int64Counter("stockd_product_changes_total",
		metric.WithDescription("Stored product changes by kind"))
	if err != nil {
		panic(fmt.Sprintf("failed to create stockd_product_changes_total counter: %v", err))
	}
	return &Service{
		repository: repo,
		publisher:  publisher,
		logger:     logger.With("component", "service"),
		now:        time.Now,
		changes:    changes,
	}
}

func (s *Service) FindByID(ctx context.Context, id int64) (*product.Product, error) {
	found, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %d: %w", id, err)
	}
	return found, nil
}

func (s *Service) FindAll(ctx context.Context, offset, limit int32) ([]product.Product, error) {
	products, err := s.repository.FindAll(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, nil
}

func (s *Service) Create(ctx context.Context, p ProductCreateDto) (*product.Product, error) {
	created, err := s.repository.Create(ctx, p.Name, p.Quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.publish(ctx, events.ProductCreated, *created)
	return created, nil
}

func (s *Service) Update(ctx context.Context, p product.Product) (*product.Product, error) {
	updated, err := s.repository.Update(ctx, p.ID, p.Name, p.Quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %d: %w", p.ID, err)
	}
	s.publish(ctx, events.ProductUpdated, *updated)
	return updated, nil
}

func (s *Service) DeleteByID(ctx context.Context, id int64) error {
	if err := s.repository.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product with ID %d: %w", id, err)
	}
	s.publish(ctx, events.ProductDeleted, product.Product{ID: id})
	return nil
}

// publish logs publishing failures; the change itself is already stored.
func (s *Service) publish(ctx context.Context, kind events.ChangeKind, p product.Product) {
	s.changes.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(kind))))
	event := events.ProductChanged{
		Kind:      kind,
		ProductID: p.ID,
		Name:      p.Name,
		Quantity:  p.Quantity,
		ChangedAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish product change", "subject", event.Subject(), "ID", p.ID, "error", err)
	}
}
