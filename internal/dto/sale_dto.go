package dto

import (
	"github.com/pablinho0889/business-bloom-b182c320/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SaleItemRequest struct {
	ProductID   string          `json:"product_id"   validate:"required,uuid"`
	ProductName string          `json:"product_name" validate:"required"`
	Quantity    int             `json:"quantity"     validate:"required,min=1"`
	UnitPrice   decimal.Decimal `json:"unit_price"   validate:"min=0"`
}

type CreateSaleRequest struct {
	Items         []SaleItemRequest `json:"items"          validate:"required,min=1,dive"`
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=cash card transfer"`
	Notes         *string           `json:"notes"          validate:"omitempty,max=500"`
}

// Items converts the request lines into the domain shape.
func (r CreateSaleRequest) DomainItems() []model.SaleItem {
	items := make([]model.SaleItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, model.SaleItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	return items
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// CreateSaleResponse reports where the sale ended up: confirmed server-side
// (ID is the server sale id) or queued locally (ID is the TempID).
type CreateSaleResponse struct {
	ID      string          `json:"id"`
	Offline bool            `json:"offline"`
	Total   decimal.Decimal `json:"total"`
}

type PendingSalesResponse struct {
	Data  []model.PendingSale `json:"data"`
	Count int                 `json:"count"`
}

type ProductsResponse struct {
	Data  []model.StockProjection `json:"data"`
	Count int                     `json:"count"`
}

// StatusResponse feeds the UI's connection indicator and sync panel.
type StatusResponse struct {
	IsOnline     bool `json:"is_online"`
	IsSyncing    bool `json:"is_syncing"`
	PendingCount int  `json:"pending_count"`
}

type SyncResponse struct {
	Attempted int `json:"attempted"`
	Synced    int `json:"synced"`
	Failed    int `json:"failed"`
}
