package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/kurdotex/order-intake/internal/logging"
	"github.com/kurdotex/order-intake/internal/middleware/auth"
	"github.com/kurdotex/order-intake/internal/mykafka"
	"github.com/kurdotex/order-intake/internal/service"
	"github.com/kurdotex/order-intake/internal/transport"
)

type OrderHTTP struct {
	Svc      *service.OrderService
	Producer *mykafka.Producer
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	userID, ok := auth.PrincipalID(c)
	if !ok {
		l.Warn("create_order_error", "status", 401, "reason", "no principal")
		return transport.Error(c, http.StatusUnauthorized, "Usuario no autenticado", nil)
	}

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
		return transport.Error(c, http.StatusBadRequest, "invalid body", nil)
	}

	order, err := h.Svc.CreateOrder(ctx, &userID, req)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			l.Warn("create_order_error", "status", 422, "reason", "validation", "error", err)
			return transport.Error(c, http.StatusUnprocessableEntity, "Validation failed", ve.Fields)
		}
		// Log context only, never the customer fields themselves.
		l.Error("create_order_error", "status", 500, "user_id", userID, "items", len(req.Items), "error", err)
		return transport.Error(c, http.StatusInternalServerError, "Error interno al procesar la orden", nil)
	}

	h.publish(c, map[string]any{
		"type":     "order_created",
		"event_id": uuid.NewString(),
		"order_id": order.ID,
		"user_id":  userID,
		"total":    order.TotalAmount,
	})

	l.Info("create_order_success", "order_id", order.ID)
	return transport.Success(c, http.StatusCreated, "Store Order", order)
}

func (h *OrderHTTP) GetOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_orders")

	userID, ok := auth.PrincipalID(c)
	if !ok {
		return transport.Error(c, http.StatusUnauthorized, "Usuario no autenticado", nil)
	}

	orders, err := h.Svc.ListOrdersForUser(ctx, userID)
	if err != nil {
		l.Error("get_orders_error", "status", 500, "user_id", userID, "error", err)
		return transport.Error(c, http.StatusInternalServerError, "Error retrieving orders", nil)
	}

	return transport.Success(c, http.StatusOK, "List orders", orders)
}

// GetOrder fetches any order by id, with no ownership check against the
// caller. The list endpoint is caller-scoped; this one is not, matching the
// upstream API surface.
func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	idParam := c.Param("id")
	id, err := strconv.Atoi(idParam)
	if err != nil || id <= 0 {
		return transport.Error(c, http.StatusNotFound, "Orden no encontrada", nil)
	}

	order, err := h.Svc.GetOrderByID(ctx, uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return transport.Error(c, http.StatusNotFound, "Orden no encontrada", nil)
		}
		l.Error("get_order_error", "status", 500, "order_id", id, "error", err)
		return transport.Error(c, http.StatusInternalServerError, "Error retrieving order", nil)
	}

	return transport.Success(c, http.StatusOK, "Order Id: "+idParam, order)
}

func (h *OrderHTTP) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "order_events", fmt.Sprint(event["user_id"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}
