package router

import (
	"github.com/pablinho0889/business-bloom-b182c320/internal/config"
	"github.com/pablinho0889/business-bloom-b182c320/internal/connectivity"
	"github.com/pablinho0889/business-bloom-b182c320/internal/handler"
	"github.com/pablinho0889/business-bloom-b182c320/internal/middleware"
	"github.com/pablinho0889/business-bloom-b182c320/internal/notify"
	"github.com/pablinho0889/business-bloom-b182c320/internal/queue"
	"github.com/pablinho0889/business-bloom-b182c320/internal/service"
	"github.com/pablinho0889/business-bloom-b182c320/internal/store"
	"github.com/pablinho0889/business-bloom-b182c320/internal/syncer"

	"github.com/gin-gonic/gin"
)

// Deps are the agent's long-lived components, constructed and owned by the
// composition root in cmd/agent — the router only wires them to routes.
type Deps struct {
	Sales   service.SaleService
	Engine  *syncer.Engine
	Monitor *connectivity.Monitor
	Queue   *queue.Queue
	Feed    *notify.Feed
	Store   store.Store
}

// New returns the configured Gin engine for the localhost API the POS UI
// binds to.
func New(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())

	salesH := handler.NewSalesHandler(deps.Sales)
	productsH := handler.NewProductsHandler(deps.Sales)
	syncH := handler.NewSyncHandler(deps.Engine, deps.Monitor, deps.Queue, deps.Feed)

	r.GET("/health", handler.Health(deps.Store))

	v1 := r.Group("/v1")
	{
		v1.POST("/sales", salesH.Create)
		v1.GET("/sales/pending", salesH.ListPending)
		v1.DELETE("/sales/pending/:tempId", salesH.DiscardPending)

		v1.POST("/sync", syncH.SyncNow)
		v1.GET("/status", syncH.Status)
		v1.GET("/notifications", syncH.Notifications)

		v1.GET("/products", productsH.List)
		v1.POST("/products/refresh", productsH.Refresh)
	}

	return r
}
