package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kurdotex/order-intake/internal/middleware/auth"
)

type Deps struct {
	OrderHandler   *OrderHTTP
	WebhookHandler *WebhookHTTP
	JWTSecret      []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	orders := e.Group("/orders", auth.RequireLogin(d.JWTSecret))
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.GET("", d.OrderHandler.GetOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)

	e.POST("/webhook/stripe", d.WebhookHandler.Handle)
}
