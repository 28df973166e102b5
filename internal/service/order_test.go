package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kurdotex/order-intake/internal/models"
	"github.com/kurdotex/order-intake/internal/repo"
	"github.com/kurdotex/order-intake/internal/transport"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Order{}, &models.OrderItem{}, &models.WebhookEvent{}))
	return db
}

func newOrderService(t *testing.T) (*OrderService, *gorm.DB) {
	db := newTestDB(t)
	return &OrderService{Repo: &repo.GormRepo{DB: db}}, db
}

func dec(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return &d
}

func uintPtr(v uint) *uint { return &v }

func validOrderRequest(t *testing.T) transport.CreateOrderRequest {
	return transport.CreateOrderRequest{
		CustomerFirstName: "Test",
		CustomerLastName:  "User",
		CustomerEmail:     "test@example.com",
		PaymentMethod:     "credit_card",
		Items: []transport.OrderItemInput{
			{ProductName: "Monitor", Quantity: 2, UnitPrice: dec(t, "100.50")},
			{ProductName: "Teclado", Quantity: 1, UnitPrice: dec(t, "50.00")},
		},
	}
}

func TestOrderService_CreateOrder_ComputesExactTotal(t *testing.T) {
	svc, db := newOrderService(t)

	order, err := svc.CreateOrder(context.Background(), uintPtr(1), validOrderRequest(t))
	require.NoError(t, err)

	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("251.00")),
		"total = %s", order.TotalAmount)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 2)

	var itemCount int64
	require.NoError(t, db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&itemCount).Error)
	assert.EqualValues(t, 2, itemCount)
}

func TestOrderService_CreateOrder_DecimalArithmeticHasNoFloatDrift(t *testing.T) {
	svc, _ := newOrderService(t)

	// 3 * 0.1 drifts under binary floats; it must not here.
	req := validOrderRequest(t)
	req.Items = []transport.OrderItemInput{
		{ProductName: "Sticker", Quantity: 3, UnitPrice: dec(t, "0.10")},
	}

	order, err := svc.CreateOrder(context.Background(), uintPtr(1), req)
	require.NoError(t, err)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("0.30")),
		"total = %s", order.TotalAmount)
}

func TestOrderService_CreateOrder_MissingItems(t *testing.T) {
	svc, db := newOrderService(t)

	req := validOrderRequest(t)
	req.Items = nil

	_, err := svc.CreateOrder(context.Background(), uintPtr(1), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "items")

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count, "validation failure must not persist anything")
}

func TestOrderService_CreateOrder_FieldValidation(t *testing.T) {
	svc, _ := newOrderService(t)

	tests := []struct {
		name   string
		mutate func(*transport.CreateOrderRequest)
		field  string
	}{
		{
			name:   "missing first name",
			mutate: func(r *transport.CreateOrderRequest) { r.CustomerFirstName = "" },
			field:  "customer_first_name",
		},
		{
			name:   "missing last name",
			mutate: func(r *transport.CreateOrderRequest) { r.CustomerLastName = "" },
			field:  "customer_last_name",
		},
		{
			name:   "invalid email",
			mutate: func(r *transport.CreateOrderRequest) { r.CustomerEmail = "not-an-email" },
			field:  "customer_email",
		},
		{
			name:   "unknown payment method",
			mutate: func(r *transport.CreateOrderRequest) { r.PaymentMethod = "bitcoin" },
			field:  "payment_method",
		},
		{
			name:   "zero quantity",
			mutate: func(r *transport.CreateOrderRequest) { r.Items[0].Quantity = 0 },
			field:  "items.0.quantity",
		},
		{
			name:   "negative unit price",
			mutate: func(r *transport.CreateOrderRequest) { r.Items[1].UnitPrice = dec(t, "-1") },
			field:  "items.1.unit_price",
		},
		{
			name:   "missing unit price",
			mutate: func(r *transport.CreateOrderRequest) { r.Items[0].UnitPrice = nil },
			field:  "items.0.unit_price",
		},
		{
			name:   "missing product name",
			mutate: func(r *transport.CreateOrderRequest) { r.Items[0].ProductName = "" },
			field:  "items.0.product_name",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := validOrderRequest(t)
			tt.mutate(&req)

			_, err := svc.CreateOrder(context.Background(), uintPtr(1), req)
			require.Error(t, err)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tt.field)
		})
	}
}

func TestOrderService_CreateOrder_PrincipalWinsOverBodyUserID(t *testing.T) {
	svc, _ := newOrderService(t)

	req := validOrderRequest(t)
	req.UserID = uintPtr(99)

	order, err := svc.CreateOrder(context.Background(), uintPtr(7), req)
	require.NoError(t, err)
	require.NotNil(t, order.UserID)
	assert.EqualValues(t, 7, *order.UserID)
}

func TestOrderService_CreateOrder_SystemOverrideRequiresExistingUser(t *testing.T) {
	svc, db := newOrderService(t)

	req := validOrderRequest(t)
	req.UserID = uintPtr(42)

	_, err := svc.CreateOrder(context.Background(), nil, req)
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "user_id")

	require.NoError(t, db.Create(&models.User{ID: 42, Name: "System", Email: "system@example.com"}).Error)

	order, err := svc.CreateOrder(context.Background(), nil, req)
	require.NoError(t, err)
	require.NotNil(t, order.UserID)
	assert.EqualValues(t, 42, *order.UserID)
}

func TestOrderService_ListOrdersForUser_Scoped(t *testing.T) {
	svc, _ := newOrderService(t)
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, uintPtr(1), validOrderRequest(t))
	require.NoError(t, err)
	_, err = svc.CreateOrder(ctx, uintPtr(1), validOrderRequest(t))
	require.NoError(t, err)
	_, err = svc.CreateOrder(ctx, uintPtr(2), validOrderRequest(t))
	require.NoError(t, err)

	orders, err := svc.ListOrdersForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	for _, o := range orders {
		require.NotNil(t, o.UserID)
		assert.EqualValues(t, 1, *o.UserID)
		assert.Len(t, o.Items, 2, "items must come back eagerly loaded")
	}
}

func TestOrderService_GetOrderByID(t *testing.T) {
	svc, _ := newOrderService(t)
	ctx := context.Background()

	created, err := svc.CreateOrder(ctx, uintPtr(1), validOrderRequest(t))
	require.NoError(t, err)

	got, err := svc.GetOrderByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Len(t, got.Items, 2)

	_, err = svc.GetOrderByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}
