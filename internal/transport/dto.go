package transport

import "github.com/shopspring/decimal"

type OrderItemInput struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`

	// Pointer so an absent unit_price is distinguishable from an explicit 0.
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

type CreateOrderRequest struct {
	CustomerFirstName string           `json:"customer_first_name"`
	CustomerLastName  string           `json:"customer_last_name"`
	CustomerEmail     string           `json:"customer_email"`
	PaymentMethod     string           `json:"payment_method"`
	Items             []OrderItemInput `json:"items"`

	// UserID is honored only for system-created orders with no authenticated
	// principal attached.
	UserID *uint `json:"user_id"`
}
