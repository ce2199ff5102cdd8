package handler

import (
	"net/http"

	"github.com/pablinho0889/business-bloom-b182c320/internal/connectivity"
	"github.com/pablinho0889/business-bloom-b182c320/internal/dto"
	"github.com/pablinho0889/business-bloom-b182c320/internal/notify"
	"github.com/pablinho0889/business-bloom-b182c320/internal/queue"
	"github.com/pablinho0889/business-bloom-b182c320/internal/syncer"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	engine  *syncer.Engine
	monitor *connectivity.Monitor
	queue   *queue.Queue
	feed    *notify.Feed
}

func NewSyncHandler(engine *syncer.Engine, monitor *connectivity.Monitor, q *queue.Queue, feed *notify.Feed) *SyncHandler {
	return &SyncHandler{engine: engine, monitor: monitor, queue: q, feed: feed}
}

// SyncNow is the explicit "sync now" trigger. The drain runs inline; if
// another drain is already active or the agent is offline, the result is
// simply all-zero.
func (h *SyncHandler) SyncNow(c *gin.Context) {
	res := h.engine.Drain(c.Request.Context())
	c.JSON(http.StatusOK, dto.SyncResponse{
		Attempted: res.Attempted,
		Synced:    res.Synced,
		Failed:    res.Failed,
	})
}

// Status feeds the UI's connection badge and sync panel.
func (h *SyncHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, dto.StatusResponse{
		IsOnline:     h.monitor.IsOnline(),
		IsSyncing:    h.engine.IsDraining(),
		PendingCount: h.queue.Count(),
	})
}

// Notifications returns the recent toast feed, newest first.
func (h *SyncHandler) Notifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.feed.Recent()})
}
