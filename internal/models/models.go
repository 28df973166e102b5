package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:255;not null"        json:"name"`
	Email     string    `gorm:"size:255;unique;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Order is created once, atomically with its items. TotalAmount is always
// computed server-side from the items, never taken from the client.
type Order struct {
	ID                uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	UserID            *uint           `gorm:"index"                       json:"user_id"`
	CustomerFirstName string          `gorm:"size:255;not null"           json:"customer_first_name"`
	CustomerLastName  string          `gorm:"size:255;not null"           json:"customer_last_name"`
	CustomerEmail     string          `gorm:"size:255;not null"           json:"customer_email"`
	PaymentMethod     string          `gorm:"size:32;not null"            json:"payment_method"`
	Status            string          `gorm:"size:32;not null"            json:"status"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Items             []OrderItem     `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

type OrderItem struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	OrderID     uint            `gorm:"index;not null"              json:"order_id"`
	ProductName string          `gorm:"size:255;not null"           json:"product_name"`
	Quantity    uint            `gorm:"not null;check:quantity>0"   json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// WebhookEvent is the idempotency ledger for provider payment events. The
// unique index on ExternalEventID is what makes at-least-once deliveries safe.
type WebhookEvent struct {
	ID              uint            `gorm:"primaryKey;autoIncrement"      json:"id"`
	ExternalEventID string          `gorm:"size:255;uniqueIndex;not null" json:"external_event_id"`
	AmountPaid      decimal.Decimal `gorm:"type:decimal(10,2);not null"   json:"amount_paid"`
	EventDate       time.Time       `gorm:"not null"                      json:"event_date"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

const OrderStatusPending = "pending"

var PaymentMethods = []string{"credit_card", "paypal", "cash", "transfer"}
