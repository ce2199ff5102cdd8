// Package stockcache keeps the UI's view of product stock consistent with
// sales the cashier just made, before the server has confirmed them.
package stockcache

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/pablinho0889/business-bloom-b182c320/internal/model"
	"github.com/pablinho0889/business-bloom-b182c320/internal/store"

	"github.com/rs/zerolog/log"
)

// Cache is a read-through projection of product stock. It has exactly two
// writers: trusted server refreshes (ReplaceAll) and the sale-creation path
// (ApplySale). The sync engine never writes here — draining must not
// re-subtract what enqueue already subtracted.
//
// Every update is mirrored into the local store best-effort, so a restart
// while fully offline still shows last-known stock.
type Cache struct {
	store store.Store

	mu       sync.RWMutex
	products map[string]model.StockProjection
}

func New(st store.Store) *Cache {
	return &Cache{store: st, products: make(map[string]model.StockProjection)}
}

// Load hydrates the cache from the store mirror. Called once at startup;
// an empty store simply yields an empty cache.
func (c *Cache) Load(ctx context.Context) error {
	records, err := c.store.GetAll(ctx, store.BucketStock)
	if err != nil {
		return err
	}
	products := make(map[string]model.StockProjection, len(records))
	for _, rec := range records {
		var p model.StockProjection
		if err := json.Unmarshal(rec, &p); err != nil {
			log.Warn().Err(err).Msg("stockcache: skipping undecodable record")
			continue
		}
		products[p.ProductID] = p
	}

	c.mu.Lock()
	c.products = products
	c.mu.Unlock()
	log.Info().Int("count", len(products)).Msg("stockcache: hydrated from store")
	return nil
}

// ReplaceAll swaps the whole cache for server values. Server stock is
// always authoritative: it overwrites optimistic projections even for
// products touched by sales not yet synced — that transient "undo" is
// accepted as eventual consistency rather than reconciled by diffing.
func (c *Cache) ReplaceAll(ctx context.Context, products []model.StockProjection) {
	recomputed := make([]model.StockProjection, 0, len(products))
	next := make(map[string]model.StockProjection, len(products))
	for _, p := range products {
		p.Status = model.ComputeStockStatus(p.Stock, p.MinStock)
		next[p.ProductID] = p
		recomputed = append(recomputed, p)
	}

	c.mu.Lock()
	stale := make([]string, 0)
	for id := range c.products {
		if _, ok := next[id]; !ok {
			stale = append(stale, id)
		}
	}
	c.products = next
	c.mu.Unlock()

	// Best-effort store mirror of the recomputed projections (not the
	// caller's input, which may carry no derived status). A failed write
	// only costs offline-restart freshness, never the in-memory view.
	for _, p := range recomputed {
		c.mirror(ctx, p)
	}
	for _, id := range stale {
		if err := c.store.Delete(ctx, store.BucketStock, id); err != nil {
			log.Warn().Err(err).Str("product_id", id).Msg("stockcache: mirror delete failed")
		}
	}
	log.Info().Int("count", len(products)).Msg("stockcache: replaced with server values")
}

// ApplySale optimistically decrements stock for every line item and
// recomputes the derived status. The change is visible to readers before
// any network call resolves. Items for products the cache has never seen
// are skipped.
func (c *Cache) ApplySale(ctx context.Context, items []model.SaleItem) {
	touched := make([]model.StockProjection, 0, len(items))

	c.mu.Lock()
	for _, it := range items {
		p, ok := c.products[it.ProductID]
		if !ok {
			continue
		}
		p.ApplySale(it.Quantity)
		c.products[it.ProductID] = p
		touched = append(touched, p)
		log.Debug().
			Str("product_id", p.ProductID).
			Int("stock", p.Stock).
			Str("status", string(p.Status)).
			Msg("stockcache: optimistic decrement")
	}
	c.mu.Unlock()

	for _, p := range touched {
		c.mirror(ctx, p)
	}
}

// Get returns the projection for one product.
func (c *Cache) Get(productID string) (model.StockProjection, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[productID]
	return p, ok
}

// List returns all projections ordered by product name.
func (c *Cache) List() []model.StockProjection {
	c.mu.RLock()
	out := make([]model.StockProjection, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (c *Cache) mirror(ctx context.Context, p model.StockProjection) {
	data, err := json.Marshal(p)
	if err != nil {
		log.Warn().Err(err).Str("product_id", p.ProductID).Msg("stockcache: mirror marshal failed")
		return
	}
	if err := c.store.Put(ctx, store.BucketStock, p.ProductID, data); err != nil {
		log.Warn().Err(err).Str("product_id", p.ProductID).Msg("stockcache: mirror write failed")
	}
}
