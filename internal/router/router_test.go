package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pablinho0889/business-bloom-b182c320/internal/config"
	"github.com/pablinho0889/business-bloom-b182c320/internal/connectivity"
	"github.com/pablinho0889/business-bloom-b182c320/internal/dto"
	"github.com/pablinho0889/business-bloom-b182c320/internal/model"
	"github.com/pablinho0889/business-bloom-b182c320/internal/notify"
	"github.com/pablinho0889/business-bloom-b182c320/internal/queue"
	"github.com/pablinho0889/business-bloom-b182c320/internal/remote"
	"github.com/pablinho0889/business-bloom-b182c320/internal/service"
	"github.com/pablinho0889/business-bloom-b182c320/internal/stockcache"
	"github.com/pablinho0889/business-bloom-b182c320/internal/store"
	"github.com/pablinho0889/business-bloom-b182c320/internal/syncer"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productID = "0b6f2f3e-1111-4444-8888-aaaaaaaaaaaa"

// backendState scripts the fake backend the agent talks to.
type backendState struct {
	reachable bool
	reject    bool
}

type testRig struct {
	router  *gin.Engine
	state   *backendState
	monitor *connectivity.Monitor
	engine  *syncer.Engine
}

// newTestRig stands up the whole agent against an httptest backend.
func newTestRig(t *testing.T) *testRig {
	t.Helper()
	gin.SetMode(gin.TestMode)

	state := &backendState{reachable: true}
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !state.reachable {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		switch r.URL.Path {
		case "/health":
			w.WriteHeader(http.StatusOK)
		case "/v1/sales/process":
			if state.reject {
				json.NewEncoder(w).Encode(remote.ProcessSaleResult{Success: false, Error: "Stock insuficiente"})
				return
			}
			json.NewEncoder(w).Encode(remote.ProcessSaleResult{Success: true, SaleID: "sale-1"})
		case "/v1/products":
			json.NewEncoder(w).Encode([]remote.Product{
				{ID: productID, Name: "Cafe", Price: decimal.NewFromInt(1500), Stock: 10, MinStock: 4},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(backend.Close)

	st := store.NewMemory()
	q := queue.New(st)
	cache := stockcache.New(st)
	feed := notify.NewFeed(50)
	api := remote.NewClient(backend.URL, "tkn")

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	monitor := connectivity.New(ctx, connectivity.Config{
		Probe:       api,
		Notifier:    feed,
		Interval:    time.Hour,
		SettleDelay: time.Millisecond,
	})

	engine := syncer.New(q, api, monitor.IsOnline, feed)
	engine.SubmitDelay = 0
	// OnOnline stays unwired by default so tests drive drains explicitly;
	// the reconnect test wires it itself.
	monitor.Start(ctx)

	identity := remote.Identity{BusinessID: "biz-1", UserID: "user-1"}
	svc := service.NewSaleService(identity, q, cache, api, monitor, feed)
	require.NoError(t, svc.RefreshProducts(ctx))

	r := New(&config.Config{Env: "development"}, Deps{
		Sales:   svc,
		Engine:  engine,
		Monitor: monitor,
		Queue:   q,
		Feed:    feed,
		Store:   st,
	})
	return &testRig{router: r, state: state, monitor: monitor, engine: engine}
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createSaleBody() dto.CreateSaleRequest {
	return dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{
			{ProductID: productID, ProductName: "Cafe", Quantity: 2, UnitPrice: decimal.NewFromInt(1500)},
		},
		PaymentMethod: "cash",
	}
}

func TestRouter_CreateSaleOnline(t *testing.T) {
	rig := newTestRig(t)

	w := doJSON(t, rig.router, http.MethodPost, "/v1/sales", createSaleBody())
	require.Equal(t, http.StatusCreated, w.Code)

	var resp dto.CreateSaleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Offline)
	assert.Equal(t, "sale-1", resp.ID)
}

func TestRouter_CreateSaleValidation(t *testing.T) {
	rig := newTestRig(t)

	body := createSaleBody()
	body.PaymentMethod = "crypto"
	w := doJSON(t, rig.router, http.MethodPost, "/v1/sales", body)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// Failed fields are keyed by their json names.
	var resp struct {
		Detail string            `json:"detail"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "oneof", resp.Fields["payment_method"])

	// Missing items
	w = doJSON(t, rig.router, http.MethodPost, "/v1/sales", dto.CreateSaleRequest{PaymentMethod: "cash"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "required", resp.Fields["items"])
}

func TestRouter_OfflineSaleFlowEndToEnd(t *testing.T) {
	rig := newTestRig(t)

	// Kill the backend and let the agent notice.
	rig.state.reachable = false
	w := doJSON(t, rig.router, http.MethodPost, "/v1/sales", createSaleBody())
	require.Equal(t, http.StatusCreated, w.Code)

	var created dto.CreateSaleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.Offline)

	// The sale shows up in the pending list, stock already decremented.
	w = doJSON(t, rig.router, http.MethodGet, "/v1/sales/pending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pending dto.PendingSalesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pending))
	require.Equal(t, 1, pending.Count)
	assert.Equal(t, created.ID, pending.Data[0].TempID)

	w = doJSON(t, rig.router, http.MethodGet, "/v1/products", nil)
	var products dto.ProductsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
	require.Equal(t, 1, products.Count)
	assert.Equal(t, 8, products.Data[0].Stock)

	// Backend comes back; the next probe notices, then manual sync drains.
	rig.state.reachable = true
	require.True(t, rig.monitor.CheckNow(context.Background()))
	w = doJSON(t, rig.router, http.MethodPost, "/v1/sync", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sync dto.SyncResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sync))
	assert.Equal(t, 1, sync.Synced)
	assert.Zero(t, sync.Failed)

	w = doJSON(t, rig.router, http.MethodGet, "/v1/status", nil)
	var status dto.StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Zero(t, status.PendingCount)
}

func TestRouter_ReconnectDrainsAutomatically(t *testing.T) {
	rig := newTestRig(t)
	rig.state.reachable = false

	w := doJSON(t, rig.router, http.MethodPost, "/v1/sales", createSaleBody())
	require.Equal(t, http.StatusCreated, w.Code)

	// Recovery schedules the drain after the settle delay, no manual sync.
	rig.monitor.OnOnline = func() { rig.engine.Drain(context.Background()) }
	rig.state.reachable = true
	require.True(t, rig.monitor.CheckNow(context.Background()))

	require.Eventually(t, func() bool {
		w := doJSON(t, rig.router, http.MethodGet, "/v1/status", nil)
		var status dto.StatusResponse
		if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
			return false
		}
		return status.PendingCount == 0 && !status.IsSyncing
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRouter_DiscardPendingIsIdempotent(t *testing.T) {
	rig := newTestRig(t)
	rig.state.reachable = false

	w := doJSON(t, rig.router, http.MethodPost, "/v1/sales", createSaleBody())
	require.Equal(t, http.StatusCreated, w.Code)
	var created dto.CreateSaleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	path := fmt.Sprintf("/v1/sales/pending/%s", created.ID)
	assert.Equal(t, http.StatusNoContent, doJSON(t, rig.router, http.MethodDelete, path, nil).Code)
	assert.Equal(t, http.StatusNoContent, doJSON(t, rig.router, http.MethodDelete, path, nil).Code)
}

func TestRouter_SyncWithEmptyQueue(t *testing.T) {
	rig := newTestRig(t)

	w := doJSON(t, rig.router, http.MethodPost, "/v1/sync", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sync dto.SyncResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sync))
	assert.Equal(t, dto.SyncResponse{}, sync)
}

func TestRouter_NotificationsFeed(t *testing.T) {
	rig := newTestRig(t)
	rig.state.reachable = false

	w := doJSON(t, rig.router, http.MethodPost, "/v1/sales", createSaleBody())
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, rig.router, http.MethodGet, "/v1/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []notify.Notification `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data)
	assert.Equal(t, "Venta guardada localmente (sin conexión)", resp.Data[0].Message)
}

func TestRouter_Health(t *testing.T) {
	rig := newTestRig(t)

	w := doJSON(t, rig.router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok":true`)
}

func TestRouter_ProductsRefresh(t *testing.T) {
	rig := newTestRig(t)

	w := doJSON(t, rig.router, http.MethodPost, "/v1/products/refresh", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var products dto.ProductsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
	assert.Equal(t, 1, products.Count)
	assert.Equal(t, model.StockNormal, products.Data[0].Status)
}
