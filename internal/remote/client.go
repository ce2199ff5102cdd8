// Package remote is the agent's client for the backend sale-processing and
// product-read endpoints. The backend is an external collaborator: its own
// transactional sale procedure is out of the agent's hands, the agent only
// depends on the endpoint being idempotent with respect to the token it
// sends.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pablinho0889/business-bloom-b182c320/internal/model"

	"github.com/shopspring/decimal"
)

// SalesAPI is the remote surface the agent consumes. Tests substitute a
// double that records idempotency tokens.
type SalesAPI interface {
	ProcessSale(ctx context.Context, req ProcessSaleRequest) (*ProcessSaleResult, error)
	ListProducts(ctx context.Context, businessID string) ([]Product, error)
	Ping(ctx context.Context) error
}

// SaleItemPayload is one line of the sale as the server expects it.
type SaleItemPayload struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// ProcessSaleRequest is the wire payload of the sale-processing endpoint.
// IdempotencyToken is the sale's TempID: the server absorbs repeated
// submissions with the same token instead of double-processing them.
type ProcessSaleRequest struct {
	BusinessID       string            `json:"business_id"`
	UserID           string            `json:"user_id"`
	Total            decimal.Decimal   `json:"total"`
	PaymentMethod    string            `json:"payment_method"`
	Notes            *string           `json:"notes,omitempty"`
	Items            []SaleItemPayload `json:"items"`
	IdempotencyToken string            `json:"idempotency_token"`
}

// ProcessSaleResult is the server's tagged outcome: success carries the
// confirmed sale id, failure carries an error string.
type ProcessSaleResult struct {
	Success bool   `json:"success"`
	SaleID  string `json:"sale_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Product is the server-authoritative product row consumed by the trusted
// refresh path.
type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	MinStock int             `json:"min_stock"`
}

// Projection converts a server product into the local cache's shape.
func (p Product) Projection() model.StockProjection {
	return model.StockProjection{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
		MinStock:  p.MinStock,
		Status:    model.ComputeStockStatus(p.Stock, p.MinStock),
	}
}

// Client talks HTTP to the backend. The per-submission timeout policy lives
// here, in the transport, not in the sync engine.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, accessToken string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      accessToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ProcessSale submits one sale. A transport failure or a malformed body is
// returned as an error; a server-reported failure comes back as a result
// with Success=false.
func (c *Client) ProcessSale(ctx context.Context, payload ProcessSaleRequest) (*ProcessSaleResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("remote: marshal sale: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/sales/process", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("remote: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: sale endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote: sale endpoint returned %d", resp.StatusCode)
	}

	var result ProcessSaleResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("remote: decode sale response: %w", err)
	}
	// Validate the tagged shape at the boundary before anyone branches on it.
	if result.Success && result.SaleID == "" {
		return nil, fmt.Errorf("remote: malformed response: success without sale_id")
	}
	return &result, nil
}

// ListProducts fetches the business's current products for a trusted
// cache refresh.
func (c *Client) ListProducts(ctx context.Context, businessID string) ([]Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/products?business_id="+businessID, nil)
	if err != nil {
		return nil, fmt.Errorf("remote: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: product endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote: product endpoint returned %d", resp.StatusCode)
	}

	var products []Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("remote: decode products: %w", err)
	}
	return products, nil
}

// Ping is the live reachability probe. It uses a short deadline independent
// of the submission timeout so the sale path never stalls on a dead link.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("remote: health returned %d", resp.StatusCode)
	}
	return nil
}

var _ SalesAPI = (*Client)(nil)
