// Package syncer drives confirmation of every pending sale against the
// remote endpoint: one drain pass at a time, one sale at a time, without
// losing entries on partial failure.
package syncer

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pablinho0889/business-bloom-b182c320/internal/model"
	"github.com/pablinho0889/business-bloom-b182c320/internal/notify"
	"github.com/pablinho0889/business-bloom-b182c320/internal/queue"
	"github.com/pablinho0889/business-bloom-b182c320/internal/remote"

	"github.com/rs/zerolog/log"
)

// Result is the aggregate outcome of one drain pass.
type Result struct {
	Attempted int
	Synced    int
	Failed    int
}

// Engine drains the pending-sale queue. The only shared mutable state is
// the draining flag: at most one drain is active, and a request arriving
// mid-drain is dropped rather than queued — the next trigger (reconnect,
// manual sync, startup) picks up whatever remains.
type Engine struct {
	queue    *queue.Queue
	api      remote.SalesAPI
	online   func() bool
	notifier notify.Notifier

	// SubmitDelay spaces out submissions so a long queue does not burst
	// the endpoint. Tests set it to zero.
	SubmitDelay time.Duration

	draining atomic.Int32
}

func New(q *queue.Queue, api remote.SalesAPI, online func() bool, notifier notify.Notifier) *Engine {
	return &Engine{
		queue:       q,
		api:         api,
		online:      online,
		notifier:    notifier,
		SubmitDelay: 300 * time.Millisecond,
	}
}

// IsDraining reports whether a drain pass is currently active.
func (e *Engine) IsDraining() bool { return e.draining.Load() == 1 }

// Drain attempts to confirm every currently queued sale, strictly in
// order. Preconditions: reachable network, no drain already running, and a
// non-empty queue — otherwise it returns immediately with a zero Result.
//
// Each sale is submitted with its TempID as idempotency token. Success
// removes the entry; any failure (transport, server-reported, malformed
// response) leaves it queued for a later pass and moves on — one bad sale
// never aborts the batch. A single aggregate notification is emitted at the
// end; none when there was nothing to do.
func (e *Engine) Drain(ctx context.Context) Result {
	if !e.online() {
		log.Debug().Msg("syncer: drain skipped, offline")
		return Result{}
	}
	if !e.draining.CompareAndSwap(0, 1) {
		log.Debug().Msg("syncer: drain skipped, already in progress")
		return Result{}
	}
	defer e.draining.Store(0)

	// Snapshot fresh from the store, not the mirror — a concurrent path may
	// have removed entries the mirror still shows.
	sales, err := e.queue.Snapshot(ctx)
	if err != nil {
		log.Error().Err(err).Msg("syncer: failed to snapshot queue")
		return Result{}
	}
	if len(sales) == 0 {
		return Result{}
	}

	log.Info().Int("count", len(sales)).Msg("syncer: drain started")

	res := Result{Attempted: len(sales)}
loop:
	for i, sale := range sales {
		if e.submit(ctx, sale) {
			if err := e.queue.Remove(ctx, sale.TempID); err != nil {
				// Confirmed but not removed: the next pass will resubmit and
				// the idempotency token absorbs the duplicate server-side.
				log.Error().Err(err).Str("temp_id", sale.TempID).Msg("syncer: failed to remove confirmed sale")
			}
			res.Synced++
		} else {
			res.Failed++
		}

		if e.SubmitDelay > 0 && i < len(sales)-1 {
			select {
			case <-ctx.Done():
				// Remaining entries stay queued for the next trigger.
				log.Warn().Msg("syncer: drain interrupted")
				res.Attempted = i + 1
				break loop
			case <-time.After(e.SubmitDelay):
			}
		}
	}

	if err := e.queue.Load(ctx); err != nil {
		log.Error().Err(err).Msg("syncer: failed to refresh mirror after drain")
	}

	e.report(res)
	log.Info().Int("synced", res.Synced).Int("failed", res.Failed).Msg("syncer: drain finished")
	return res
}

func (e *Engine) submit(ctx context.Context, sale model.PendingSale) bool {
	items := make([]remote.SaleItemPayload, 0, len(sale.Items))
	for _, it := range sale.Items {
		items = append(items, remote.SaleItemPayload{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.UnitPrice,
		})
	}

	result, err := e.api.ProcessSale(ctx, remote.ProcessSaleRequest{
		BusinessID:       sale.BusinessID,
		UserID:           sale.UserID,
		Total:            sale.Total,
		PaymentMethod:    string(sale.PaymentMethod),
		Notes:            sale.Notes,
		Items:            items,
		IdempotencyToken: sale.TempID,
	})
	if err != nil {
		log.Warn().Err(err).Str("temp_id", sale.TempID).Msg("syncer: submission failed")
		return false
	}
	if !result.Success {
		log.Warn().Str("temp_id", sale.TempID).Str("error", result.Error).Msg("syncer: server rejected sale")
		return false
	}

	log.Info().Str("temp_id", sale.TempID).Str("sale_id", result.SaleID).Msg("syncer: sale confirmed")
	return true
}

func (e *Engine) report(res Result) {
	switch {
	case res.Synced > 0 && res.Failed == 0:
		e.notifier.Success(fmt.Sprintf("%s correctamente", pluralVentas(res.Synced, "sincronizada")))
	case res.Synced > 0 && res.Failed > 0:
		e.notifier.Warning(fmt.Sprintf("%s, %d pendiente%s", pluralVentas(res.Synced, "sincronizada"), res.Failed, plural(res.Failed)))
	case res.Failed > 0:
		e.notifier.Error("Error al sincronizar ventas. Se reintentará automáticamente.")
	}
}

func pluralVentas(n int, verb string) string {
	if n == 1 {
		return fmt.Sprintf("1 venta %s", verb)
	}
	return fmt.Sprintf("%d ventas %ss", n, verb)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
