// Package queue owns durable, ordered custody of sales that have not yet
// been confirmed by the server.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/pablinho0889/business-bloom-b182c320/internal/model"
	"github.com/pablinho0889/business-bloom-b182c320/internal/store"

	"github.com/rs/zerolog/log"
)

// Queue persists pending sales through the local store and keeps an
// in-memory mirror for cheap reads. The store is the source of truth; the
// mirror exists purely for the UI and is refreshed on init and after any
// removal so the two cannot diverge.
type Queue struct {
	store store.Store

	mu     sync.RWMutex
	mirror []model.PendingSale
}

func New(st store.Store) *Queue {
	return &Queue{store: st}
}

// Load refreshes the in-memory mirror from the store. Called once at
// startup and after every drain pass.
func (q *Queue) Load(ctx context.Context) error {
	sales, err := q.Snapshot(ctx)
	if err != nil {
		return err
	}
	q.mu.Lock()
	q.mirror = sales
	q.mu.Unlock()
	log.Info().Int("count", len(sales)).Msg("queue: pending sales loaded from store")
	return nil
}

// Enqueue assigns a TempID and Timestamp to the draft, persists it, and
// appends it to the mirror. The TempID is returned so the caller can
// correlate UI state immediately. A store failure is surfaced — the sale is
// never silently lost — and nothing is appended to the mirror.
func (q *Queue) Enqueue(ctx context.Context, draft model.SaleDraft) (string, error) {
	sale := model.PendingSale{
		TempID:        model.NewTempID(),
		BusinessID:    draft.BusinessID,
		UserID:        draft.UserID,
		Items:         draft.Items,
		Total:         draft.Total,
		PaymentMethod: draft.PaymentMethod,
		Notes:         draft.Notes,
		Timestamp:     time.Now().UnixMilli(),
	}

	data, err := json.Marshal(sale)
	if err != nil {
		return "", fmt.Errorf("queue: marshal sale: %w", err)
	}
	if err := q.store.Put(ctx, store.BucketPendingSales, sale.TempID, data); err != nil {
		return "", fmt.Errorf("queue: persist sale: %w", err)
	}

	q.mu.Lock()
	q.mirror = append(q.mirror, sale)
	q.mu.Unlock()

	log.Info().Str("temp_id", sale.TempID).Msg("queue: sale stored offline")
	return sale.TempID, nil
}

// List returns the mirror's current ordered contents.
func (q *Queue) List() []model.PendingSale {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]model.PendingSale, len(q.mirror))
	copy(out, q.mirror)
	return out
}

// Snapshot reads the queue fresh from the store, bypassing the mirror.
// The sync engine drains from a snapshot so it never acts on entries a
// concurrent path already removed.
func (q *Queue) Snapshot(ctx context.Context) ([]model.PendingSale, error) {
	records, err := q.store.GetAll(ctx, store.BucketPendingSales)
	if err != nil {
		return nil, fmt.Errorf("queue: read store: %w", err)
	}
	sales := make([]model.PendingSale, 0, len(records))
	for _, rec := range records {
		var sale model.PendingSale
		if err := json.Unmarshal(rec, &sale); err != nil {
			return nil, fmt.Errorf("queue: decode sale: %w", err)
		}
		sales = append(sales, sale)
	}
	return sales, nil
}

// Remove deletes a sale from the store and the mirror. Removing an absent
// TempID is a no-op: a retry may race a removal that already succeeded.
func (q *Queue) Remove(ctx context.Context, tempID string) error {
	if err := q.store.Delete(ctx, store.BucketPendingSales, tempID); err != nil {
		return fmt.Errorf("queue: delete sale: %w", err)
	}

	q.mu.Lock()
	for i, sale := range q.mirror {
		if sale.TempID == tempID {
			q.mirror = append(q.mirror[:i], q.mirror[i+1:]...)
			break
		}
	}
	q.mu.Unlock()

	log.Info().Str("temp_id", tempID).Msg("queue: sale removed")
	return nil
}

// Count reports the mirror's length.
func (q *Queue) Count() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.mirror)
}
