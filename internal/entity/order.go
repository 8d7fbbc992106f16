package entity

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the order lifecycle status.
type OrderStatus string

const (
	StatusUnknown   OrderStatus = "unknown"
	StatusDetected  OrderStatus = "detected"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusInTransit OrderStatus = "in_transit"
	StatusDelivered OrderStatus = "delivered"
	StatusReturned  OrderStatus = "returned"
	StatusRefunded  OrderStatus = "refunded"
	StatusCancelled OrderStatus = "cancelled"
)

// SourceType records how an order was discovered.
type SourceType string

const (
	SourceEmail      SourceType = "email"
	SourceScreenshot SourceType = "screenshot"
	SourcePhoto      SourceType = "photo"
	SourceManual     SourceType = "manual"
	SourceAPI        SourceType = "api"
)

// Money is an amount with an ISO 4217 currency code.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Item is a single line item in an order.
type Item struct {
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Price      *Money  `json:"price,omitempty"`
	SKU        *string `json:"sku,omitempty"`
	Size       *string `json:"size,omitempty"`
	Color      *string `json:"color,omitempty"`
	ImageURL   *string `json:"image_url,omitempty"`
	Returnable *bool   `json:"is_returnable,omitempty"`
}

// Order is one history row for a purchase: at most one row exists per
// (user_id, merchant_id, order_number, status), and the set of rows sharing
// the first three fields forms the order's status timeline.
type Order struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	MerchantID uuid.UUID `json:"merchant_id"`

	OrderNumber *string     `json:"order_number,omitempty"`
	OrderDate   *time.Time  `json:"order_date,omitempty"`
	Status      OrderStatus `json:"status"`
	CountryCode *string     `json:"country_code,omitempty"`

	Items        []Item `json:"items"`
	Subtotal     *Money `json:"subtotal,omitempty"`
	Tax          *Money `json:"tax,omitempty"`
	ShippingCost *Money `json:"shipping_cost,omitempty"`
	Total        *Money `json:"total,omitempty"`

	ReturnWindowStart *time.Time `json:"return_window_start,omitempty"`
	ReturnWindowEnd   *time.Time `json:"return_window_end,omitempty"`
	ReturnWindowDays  *int       `json:"return_window_days,omitempty"`
	ExchangeWindowEnd *time.Time `json:"exchange_window_end,omitempty"`
	IsMonitored       bool       `json:"is_monitored"`

	SourceType SourceType `json:"source_type"`
	SourceID   *string    `json:"source_id,omitempty"`

	ConfidenceScore        *float64 `json:"confidence_score,omitempty"`
	NeedsClarification     bool     `json:"needs_clarification"`
	ClarificationQuestions []string `json:"clarification_questions"`

	OrderURL   *string `json:"order_url,omitempty"`
	ReceiptURL *string `json:"receipt_url,omitempty"`

	RefundInitiated   bool       `json:"refund_initiated"`
	RefundAmount      *Money     `json:"refund_amount,omitempty"`
	RefundCompletedAt *time.Time `json:"refund_completed_at,omitempty"`

	Notes []string `json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
