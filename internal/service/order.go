package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kurdotex/order-intake/internal/models"
	"github.com/kurdotex/order-intake/internal/repo"
	"github.com/kurdotex/order-intake/internal/transport"
)

var (
	ErrValidation = errors.New("validation") // 422
	ErrNotFound   = errors.New("not found")  // 404
)

// ValidationError carries per-field detail so the boundary can answer 422
// with the exact fields that failed.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

type OrderService struct {
	Repo *repo.GormRepo
}

// CreateOrder validates the input, computes the total from the items and
// persists order plus items in one unit of work. principalID wins over any
// user_id in the body; the body override is only consulted for orders created
// without an authenticated principal.
func (s *OrderService) CreateOrder(ctx context.Context, principalID *uint, req transport.CreateOrderRequest) (*models.Order, error) {
	if err := s.validate(ctx, principalID, req); err != nil {
		return nil, err
	}

	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		qty := decimal.NewFromInt(int64(it.Quantity))
		total = total.Add(it.UnitPrice.Mul(qty))
		items = append(items, models.OrderItem{
			ProductName: it.ProductName,
			Quantity:    uint(it.Quantity),
			UnitPrice:   *it.UnitPrice,
		})
	}

	ownerID := principalID
	if ownerID == nil {
		ownerID = req.UserID
	}

	order := &models.Order{
		UserID:            ownerID,
		CustomerFirstName: req.CustomerFirstName,
		CustomerLastName:  req.CustomerLastName,
		CustomerEmail:     req.CustomerEmail,
		PaymentMethod:     req.PaymentMethod,
		Status:            models.OrderStatusPending,
		TotalAmount:       total,
		Items:             items,
	}

	return s.Repo.CreateOrder(ctx, order)
}

func (s *OrderService) ListOrdersForUser(ctx context.Context, userID uint) ([]models.Order, error) {
	return s.Repo.ListOrders(ctx, userID)
}

// GetOrderByID looks an order up globally: ownership is deliberately not
// checked here, matching the list/get asymmetry of the upstream API.
func (s *OrderService) GetOrderByID(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
		}
		return nil, err
	}
	return order, nil
}

func (s *OrderService) validate(ctx context.Context, principalID *uint, req transport.CreateOrderRequest) error {
	ve := &ValidationError{}

	requireString(ve, "customer_first_name", req.CustomerFirstName)
	requireString(ve, "customer_last_name", req.CustomerLastName)

	switch {
	case req.CustomerEmail == "":
		ve.add("customer_email", "customer_email is required")
	case len(req.CustomerEmail) > 255:
		ve.add("customer_email", "customer_email must not exceed 255 characters")
	default:
		if _, err := mail.ParseAddress(req.CustomerEmail); err != nil {
			ve.add("customer_email", "customer_email must be a valid email address")
		}
	}

	if req.PaymentMethod == "" {
		ve.add("payment_method", "payment_method is required")
	} else if !validPaymentMethod(req.PaymentMethod) {
		ve.add("payment_method", "payment_method must be one of: "+strings.Join(models.PaymentMethods, ", "))
	}

	if len(req.Items) == 0 {
		ve.add("items", "items is required and must contain at least one item")
	}
	for i, it := range req.Items {
		requireString(ve, fmt.Sprintf("items.%d.product_name", i), it.ProductName)
		if it.Quantity < 1 {
			ve.add(fmt.Sprintf("items.%d.quantity", i), "quantity must be at least 1")
		}
		switch {
		case it.UnitPrice == nil:
			ve.add(fmt.Sprintf("items.%d.unit_price", i), "unit_price is required")
		case it.UnitPrice.IsNegative():
			ve.add(fmt.Sprintf("items.%d.unit_price", i), "unit_price must be at least 0")
		}
	}

	if principalID == nil && req.UserID != nil {
		exists, err := s.Repo.UserExists(ctx, *req.UserID)
		if err != nil {
			return err
		}
		if !exists {
			ve.add("user_id", "the selected user_id is invalid")
		}
	}

	return ve.orNil()
}

func requireString(ve *ValidationError, field, v string) {
	if v == "" {
		ve.add(field, field+" is required")
		return
	}
	if len(v) > 255 {
		ve.add(field, field+" must not exceed 255 characters")
	}
}

func validPaymentMethod(m string) bool {
	for _, pm := range models.PaymentMethods {
		if m == pm {
			return true
		}
	}
	return false
}
