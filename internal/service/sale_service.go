package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pablinho0889/business-bloom-b182c320/internal/dto"
	"github.com/pablinho0889/business-bloom-b182c320/internal/model"
	"github.com/pablinho0889/business-bloom-b182c320/internal/notify"
	"github.com/pablinho0889/business-bloom-b182c320/internal/queue"
	"github.com/pablinho0889/business-bloom-b182c320/internal/remote"
	"github.com/pablinho0889/business-bloom-b182c320/internal/stockcache"

	"github.com/rs/zerolog/log"
)

// ConnectionState is the slice of the connectivity monitor the sale path
// needs: the cached flag plus a live probe for the moment of submission.
type ConnectionState interface {
	IsOnline() bool
	CheckNow(ctx context.Context) bool
}

type SaleService interface {
	CreateSale(ctx context.Context, req dto.CreateSaleRequest) (*dto.CreateSaleResponse, error)
	PendingSales() []model.PendingSale
	DiscardPending(ctx context.Context, tempID string) error
	RefreshProducts(ctx context.Context) error
	Products() []model.StockProjection
}

type saleService struct {
	identity remote.Identity
	queue    *queue.Queue
	cache    *stockcache.Cache
	api      remote.SalesAPI
	conn     ConnectionState
	notifier notify.Notifier
}

func NewSaleService(
	identity remote.Identity,
	q *queue.Queue,
	cache *stockcache.Cache,
	api remote.SalesAPI,
	conn ConnectionState,
	notifier notify.Notifier,
) SaleService {
	return &saleService{
		identity: identity,
		queue:    q,
		cache:    cache,
		api:      api,
		conn:     conn,
		notifier: notifier,
	}
}

// CreateSale is the offline/online decision point.
//
// The offline determination consults BOTH the monitor's cached flag and a
// live probe: the cached flag can lag a disconnect by one tick, and a
// doomed network call is worse than a queued sale, so any disagreement is
// resolved as offline.
//
// Offline: the sale is enqueued durably (store failures surface, the sale
// is never silently dropped) and stock is decremented optimistically.
// Online: the sale goes straight to the server carrying a freshly
// generated idempotency token so a retried request cannot double-process;
// a server failure surfaces directly to the caller, it is NOT queued.
func (s *saleService) CreateSale(ctx context.Context, req dto.CreateSaleRequest) (*dto.CreateSaleResponse, error) {
	method := model.PaymentMethod(req.PaymentMethod)
	if !method.Valid() {
		return nil, fmt.Errorf("payment method %q not supported", req.PaymentMethod)
	}

	items := req.DomainItems()
	total := model.SaleTotal(items)

	online := s.conn.IsOnline() && s.conn.CheckNow(ctx)
	if !online {
		tempID, err := s.queue.Enqueue(ctx, model.SaleDraft{
			BusinessID:    s.identity.BusinessID,
			UserID:        s.identity.UserID,
			Items:         items,
			Total:         total,
			PaymentMethod: method,
			Notes:         req.Notes,
		})
		if err != nil {
			return nil, err
		}
		s.cache.ApplySale(ctx, items)
		s.notifier.Success("Venta guardada localmente (sin conexión)")
		return &dto.CreateSaleResponse{ID: tempID, Offline: true, Total: total}, nil
	}

	payload := make([]remote.SaleItemPayload, 0, len(items))
	for _, it := range items {
		payload = append(payload, remote.SaleItemPayload{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.UnitPrice,
		})
	}

	result, err := s.api.ProcessSale(ctx, remote.ProcessSaleRequest{
		BusinessID:    s.identity.BusinessID,
		UserID:        s.identity.UserID,
		Total:         total,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		Items:         payload,
		// Token generated even for the online path: a client retry after a
		// lost response must not create a second sale.
		IdempotencyToken: model.NewTempID(),
	})
	if err != nil {
		return nil, fmt.Errorf("service: process sale: %w", err)
	}
	if !result.Success {
		return nil, errors.New(result.Error)
	}

	// Keep the cached view ahead of the next trusted refresh.
	s.cache.ApplySale(ctx, items)
	s.notifier.Success("Venta registrada exitosamente")
	return &dto.CreateSaleResponse{ID: result.SaleID, Offline: false, Total: total}, nil
}

// PendingSales returns the queue mirror for the sync panel.
func (s *saleService) PendingSales() []model.PendingSale {
	return s.queue.List()
}

// DiscardPending drops a queued sale on explicit user request.
func (s *saleService) DiscardPending(ctx context.Context, tempID string) error {
	return s.queue.Remove(ctx, tempID)
}

// RefreshProducts performs a trusted refresh: server values replace the
// cache wholesale, optimistic projections included.
func (s *saleService) RefreshProducts(ctx context.Context) error {
	products, err := s.api.ListProducts(ctx, s.identity.BusinessID)
	if err != nil {
		return fmt.Errorf("service: refresh products: %w", err)
	}
	projections := make([]model.StockProjection, 0, len(products))
	for _, p := range products {
		projections = append(projections, p.Projection())
	}
	s.cache.ReplaceAll(ctx, projections)
	log.Info().Int("count", len(projections)).Msg("service: products refreshed from server")
	return nil
}

// Products returns the cached stock projections.
func (s *saleService) Products() []model.StockProjection {
	return s.cache.List()
}
