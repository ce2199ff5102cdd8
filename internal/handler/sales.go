package handler

import (
	"net/http"

	"github.com/pablinho0889/business-bloom-b182c320/internal/apierror"
	"github.com/pablinho0889/business-bloom-b182c320/internal/dto"
	"github.com/pablinho0889/business-bloom-b182c320/internal/service"

	"github.com/gin-gonic/gin"
)

type SalesHandler struct{ svc service.SaleService }

func NewSalesHandler(svc service.SaleService) *SalesHandler { return &SalesHandler{svc: svc} }

// Create registers a sale. Online it is confirmed by the server before the
// response; offline it lands in the durable queue and the response carries
// the TempID with offline=true.
func (h *SalesHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.CreateSale(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListPending returns the ordered queue of unsynced sales.
func (h *SalesHandler) ListPending(c *gin.Context) {
	sales := h.svc.PendingSales()
	c.JSON(http.StatusOK, dto.PendingSalesResponse{Data: sales, Count: len(sales)})
}

// DiscardPending drops one queued sale. Idempotent: discarding a TempID
// that is already gone still returns 204.
func (h *SalesHandler) DiscardPending(c *gin.Context) {
	tempID := c.Param("tempId")
	if err := h.svc.DiscardPending(c.Request.Context(), tempID); err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("No se pudo eliminar la venta pendiente"))
		return
	}
	c.Status(http.StatusNoContent)
}
