// Package connectivity translates reachability of the backend into sync
// triggers and UI state.
package connectivity

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pablinho0889/business-bloom-b182c320/internal/notify"

	"github.com/rs/zerolog/log"
)

// Prober is the live reachability check (the remote client's health ping).
type Prober interface {
	Ping(ctx context.Context) error
}

// Config holds the monitor's dependencies and timing.
type Config struct {
	Probe    Prober
	Notifier notify.Notifier
	// Interval between background probes. Default 15s.
	Interval time.Duration
	// SettleDelay debounces a flapping connection: OnOnline fires only this
	// long after a recovery is observed. Default 1s.
	SettleDelay time.Duration
}

// Monitor maintains the cached isOnline flag. The flag can lag a true
// disconnect by one probe tick, which is why the sale path also calls
// CheckNow at the moment of submission.
type Monitor struct {
	cfg    Config
	online atomic.Bool

	// OnOnline is scheduled after SettleDelay on every offline → online
	// transition. Typically the sync engine's drain. Set it between New
	// and Start; no probe goroutine exists before Start.
	OnOnline func()
}

// New initializes the flag from the current reachability signal. The
// background probe loop does not run until Start, so the caller can wire
// OnOnline to components that themselves need the monitor.
func New(ctx context.Context, cfg Config) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Second
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = time.Second
	}

	m := &Monitor{cfg: cfg}
	m.online.Store(cfg.Probe.Ping(ctx) == nil)
	log.Info().Bool("online", m.online.Load()).Msg("connectivity: monitor ready")
	return m
}

// Start launches the background probe loop. The loop stops when ctx is done.
func (m *Monitor) Start(ctx context.Context) {
	go m.run(ctx)
}

func (m *Monitor) run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connectivity: monitor shutting down")
			return
		case <-ticker.C:
			m.CheckNow(ctx)
		}
	}
}

// IsOnline returns the cached reachability state.
func (m *Monitor) IsOnline() bool { return m.online.Load() }

// CheckNow probes the backend right now, records any transition, and
// returns the fresh result. Callers deciding whether to attempt a network
// call should trust a false return over a stale true flag.
func (m *Monitor) CheckNow(ctx context.Context) bool {
	reachable := m.cfg.Probe.Ping(ctx) == nil
	was := m.online.Swap(reachable)
	if was == reachable {
		return reachable
	}

	if reachable {
		log.Info().Msg("connectivity: connection restored")
		m.cfg.Notifier.Success("Conexión restaurada")
		if m.OnOnline != nil {
			// Settle delay guards against racing a flapping connection.
			time.AfterFunc(m.cfg.SettleDelay, m.OnOnline)
		}
	} else {
		log.Warn().Msg("connectivity: connection lost")
		m.cfg.Notifier.Warning("Sin conexión - las ventas se guardarán localmente")
	}
	return reachable
}
