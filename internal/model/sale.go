package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is the closed set of payment options the POS accepts.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
)

// Valid reports whether m is one of the known payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return true
	}
	return false
}

// SaleItem is one line of a sale. ProductName is a denormalized snapshot
// taken at creation time — the server's authoritative name may drift later.
type SaleItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// PendingSale is a sale awaiting durable confirmation by the server.
// It is immutable after creation; the only mutation is its removal from
// the queue once the server confirms it.
//
// TempID doubles as the queue key and the idempotency token sent to the
// server, so retried submissions are absorbed instead of double-processed.
type PendingSale struct {
	TempID        string          `json:"temp_id"`
	BusinessID    string          `json:"business_id"`
	UserID        string          `json:"user_id"`
	Items         []SaleItem      `json:"items"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Notes         *string         `json:"notes,omitempty"`
	// Timestamp is unix milliseconds from the device clock. Display ordering
	// only — never used for conflict resolution.
	Timestamp int64 `json:"timestamp"`
}

// SaleDraft is a PendingSale before the queue assigns TempID and Timestamp.
type SaleDraft struct {
	BusinessID    string
	UserID        string
	Items         []SaleItem
	Total         decimal.Decimal
	PaymentMethod PaymentMethod
	Notes         *string
}

// SaleTotal derives the frozen total of a sale: Σ quantity × unit price.
// It is computed once at creation and never recomputed, so the audit value
// survives later server-side price changes.
func SaleTotal(items []SaleItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// NewTempID generates a device-unique queue key / idempotency token.
// The millisecond prefix keeps store listings in creation order; the uuid
// suffix breaks ties within the same millisecond.
func NewTempID() string {
	return fmt.Sprintf("temp_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
