package handler

import (
	"net/http"

	"github.com/pablinho0889/business-bloom-b182c320/internal/apierror"
	"github.com/pablinho0889/business-bloom-b182c320/internal/dto"
	"github.com/pablinho0889/business-bloom-b182c320/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductsHandler struct{ svc service.SaleService }

func NewProductsHandler(svc service.SaleService) *ProductsHandler {
	return &ProductsHandler{svc: svc}
}

// List returns the cached stock projections. Works fully offline — the
// cache is hydrated from the local store at startup.
func (h *ProductsHandler) List(c *gin.Context) {
	products := h.svc.Products()
	c.JSON(http.StatusOK, dto.ProductsResponse{Data: products, Count: len(products)})
}

// Refresh pulls server-authoritative products and replaces the cache
// wholesale, then returns the fresh projections.
func (h *ProductsHandler) Refresh(c *gin.Context) {
	if err := h.svc.RefreshProducts(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, apierror.New("No se pudo actualizar el catálogo desde el servidor"))
		return
	}
	products := h.svc.Products()
	c.JSON(http.StatusOK, dto.ProductsResponse{Data: products, Count: len(products)})
}
