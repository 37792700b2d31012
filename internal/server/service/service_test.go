package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/abgdnv/stocksync/internal/product"
	"github.com/abgdnv/stocksync/pkg/messaging"
	"github.com/abgdnv/stocksync/pkg/messaging/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	metricsdk "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// mockProductStore is a mock implementation of the ProductStore interface
type mockProductStore struct {
	products []product.Product
	product  product.Product
	error    error
}

func (m *mockProductStore) FindByID(_ context.Context, _ int64) (*product.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	return &m.product, nil
}

func (m *mockProductStore) FindAll(_ context.Context, _, _ int32) ([]product.Product, error) {
	return m.products, m.error
}

func (m *mockProductStore) Create(_ context.Context, _ string, _ int32) (*product.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	return &m.product, nil
}

func (m *mockProductStore) Update(_ context.Context, _ int64, _ string, _ int32) (*product.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	return &m.product, nil
}

func (m *mockProductStore) DeleteByID(_ context.Context, _ int64) error {
	return m.error
}

// mockPublisher is a testify mock of messaging.Publisher.
type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event messaging.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

var (
	discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	fixedNow      = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	errStore      = errors.New("store error")
)

func newService(st *mockProductStore, pub messaging.Publisher) *Service {
	s := NewService(st, pub, discardLogger)
	s.now = func() time.Time { return fixedNow }
	return s
}

func Test_ProductService_FindByID(t *testing.T) {
	testCases := []struct {
		name        string
		mockStore   *mockProductStore
		expected    *product.Product
		expectError error
	}{
		{
			name:      "Success - product found",
			mockStore: &mockProductStore{product: product.Product{ID: 1, Name: "Mouse", Quantity: 3}},
			expected:  &product.Product{ID: 1, Name: "Mouse", Quantity: 3},
		},
		{
			name:        "Error - product not found",
			mockStore:   &mockProductStore{error: product.ErrNotFound},
			expectError: product.ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := newService(tc.mockStore, messaging.NopPublisher{})
			// when
			found, err := service.FindByID(context.Background(), 1)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, found)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, found)
		})
	}
}

func Test_ProductService_FindAll(t *testing.T) {
	testCases := []struct {
		name        string
		mockStore   *mockProductStore
		expected    []product.Product
		expectError error
	}{
		{
			name:      "Success - products found",
			mockStore: &mockProductStore{products: []product.Product{{ID: 1, Name: "Mouse", Quantity: 5}}},
			expected:  []product.Product{{ID: 1, Name: "Mouse", Quantity: 5}},
		},
		{
			name:      "Success - no products",
			mockStore: &mockProductStore{products: []product.Product{}},
			expected:  []product.Product{},
		},
		{
			name:        "Error - store error",
			mockStore:   &mockProductStore{error: errStore},
			expectError: errStore,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := newService(tc.mockStore, messaging.NopPublisher{})
			// when
			list, err := service.FindAll(context.Background(), 0, 10)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, list)
		})
	}
}

func Test_ProductService_Create_PublishesEvent(t *testing.T) {
	// given
	st := &mockProductStore{product: product.Product{ID: 42, Name: "Keyboard", Quantity: 2}}
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, events.ProductChanged{
		Kind: events.ProductCreated, ProductID: 42, Name: "Keyboard", Quantity: 2, ChangedAt: fixedNow,
	}).Return(nil).Once()
	service := newService(st, pub)
	// when
	created, err := service.Create(context.Background(), ProductCreateDto{Name: "Keyboard", Quantity: 2})
	// then
	require.NoError(t, err)
	assert.Equal(t, int64(42), created.ID)
	pub.AssertExpectations(t)
}

func Test_ProductService_PublishFailureIsNotReturned(t *testing.T) {
	// given
	st := &mockProductStore{product: product.Product{ID: 1, Name: "Mouse", Quantity: 5}}
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, mock.AnythingOfType("events.ProductChanged")).Return(errors.New("nats down")).Once()
	service := newService(st, pub)
	// when
	updated, err := service.Update(context.Background(), product.Product{ID: 1, Name: "Mouse", Quantity: 5})
	// then
	require.NoError(t, err)
	assert.Equal(t, int32(5), updated.Quantity)
	pub.AssertExpectations(t)
}

func Test_ProductService_FailedChangesPublishNothing(t *testing.T) {
	testCases := []struct {
		name string
		call func(s *Service) error
	}{
		{
			name: "create",
			call: func(s *Service) error {
				_, err := s.Create(context.Background(), ProductCreateDto{Name: "Keyboard"})
				return err
			},
		},
		{
			name: "update",
			call: func(s *Service) error {
				_, err := s.Update(context.Background(), product.Product{ID: 1, Name: "Mouse"})
				return err
			},
		},
		{
			name: "delete",
			call: func(s *Service) error {
				return s.DeleteByID(context.Background(), 1)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			pub := new(mockPublisher)
			service := newService(&mockProductStore{error: product.ErrNotFound}, pub)
			// when
			err := tc.call(service)
			// then
			assert.ErrorIs(t, err, product.ErrNotFound)
			pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
		})
	}
}

func Test_ProductService_DeleteByID_PublishesEvent(t *testing.T) {
	// given
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, events.ProductChanged{
		Kind: events.ProductDeleted, ProductID: 7, ChangedAt: fixedNow,
	}).Return(nil).Once()
	service := newService(&mockProductStore{}, pub)
	// when
	err := service.DeleteByID(context.Background(), 7)
	// then
	require.NoError(t, err)
	pub.AssertExpectations(t)
}

func Test_ProductService_CountsChanges(t *testing.T) {
	// given
	reader := metricsdk.NewManualReader()
	previous := otel.GetMeterProvider()
	otel.SetMeterProvider(metricsdk.NewMeterProvider(metricsdk.WithReader(reader)))
	t.Cleanup(func() { otel.SetMeterProvider(previous) })
	st := &mockProductStore{product: product.Product{ID: 42, Name: "Keyboard", Quantity: 2}}
	service := newService(st, messaging.NopPublisher{})
	ctx := context.Background()

	// when
	_, err := service.Create(ctx, ProductCreateDto{Name: "Keyboard", Quantity: 2})
	require.NoError(t, err)
	_, err = service.Update(ctx, product.Product{ID: 42, Name: "Keyboard", Quantity: 3})
	require.NoError(t, err)
	require.NoError(t, service.DeleteByID(ctx, 42))
	st.error = errStore
	require.Error(t, service.DeleteByID(ctx, 42))

	// then
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "stockd_product_changes_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				kind, _ := dp.Attributes.Value(attribute.Key("kind"))
				counts[kind.AsString()] += dp.Value
			}
		}
	}
	assert.Equal(t, map[string]int64{"created": 1, "updated": 1, "deleted": 1}, counts)
}
