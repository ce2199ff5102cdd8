package model

import "github.com/shopspring/decimal"

// StockStatus classifies a product's remaining stock against its minimum.
type StockStatus string

const (
	StockOut      StockStatus = "out"
	StockCritical StockStatus = "critical"
	StockLow      StockStatus = "low"
	StockNormal   StockStatus = "normal"
)

// ComputeStockStatus maps a stock level to its status:
// 0 → out; ≤ 50% of minimum → critical; ≤ minimum → low; else normal.
// The critical comparison is done as 2·stock ≤ minimum to stay exact for
// odd minimums.
func ComputeStockStatus(stock, minStock int) StockStatus {
	switch {
	case stock <= 0:
		return StockOut
	case 2*stock <= minStock:
		return StockCritical
	case stock <= minStock:
		return StockLow
	default:
		return StockNormal
	}
}

// StockProjection is the locally cached, possibly stale view of a product's
// stock. It is written only by trusted server refreshes (wholesale replace)
// and by the sale-creation path (optimistic decrement) — never by the sync
// engine's drain pass, since the decrement already happened at enqueue time.
type StockProjection struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	MinStock  int             `json:"min_stock"`
	Status    StockStatus     `json:"stock_status"`
}

// ApplySale decrements the projection by a sold quantity and recomputes
// the derived status. Stock may go negative — the server recomputation is
// authoritative and will correct drift on the next trusted refresh.
func (p *StockProjection) ApplySale(quantity int) {
	p.Stock -= quantity
	p.Status = ComputeStockStatus(p.Stock, p.MinStock)
}
