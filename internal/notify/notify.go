// Package notify carries fire-and-forget user-facing messages (the toast
// lane). The core never blocks on or inspects acknowledgment.
package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notification is one message for the UI.
type Notification struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier is the surface the core components emit through.
type Notifier interface {
	Success(msg string)
	Warning(msg string)
	Error(msg string)
	Info(msg string)
}

// Feed is the default Notifier: a bounded in-memory ring the UI polls,
// doubled into the structured log.
type Feed struct {
	mu    sync.Mutex
	items []Notification
	max   int
}

func NewFeed(max int) *Feed {
	if max < 1 {
		max = 50
	}
	return &Feed{max: max}
}

func (f *Feed) Success(msg string) { f.push(LevelSuccess, msg) }
func (f *Feed) Warning(msg string) { f.push(LevelWarning, msg) }
func (f *Feed) Error(msg string)   { f.push(LevelError, msg) }
func (f *Feed) Info(msg string)    { f.push(LevelInfo, msg) }

// Recent returns the feed newest-first.
func (f *Feed) Recent() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Notification, len(f.items))
	for i, n := range f.items {
		out[len(f.items)-1-i] = n
	}
	return out
}

func (f *Feed) push(level Level, msg string) {
	f.mu.Lock()
	f.items = append(f.items, Notification{Level: level, Message: msg, At: time.Now()})
	if len(f.items) > f.max {
		f.items = f.items[len(f.items)-f.max:]
	}
	f.mu.Unlock()

	log.Info().Str("level", string(level)).Msg("notify: " + msg)
}
