package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/pablinho0889/business-bloom-b182c320/internal/store"

	"github.com/gin-gonic/gin"
)

// Health reports agent liveness and local store health. The store check is
// a cheap count — if the device database cannot answer it, offline sales
// would be lost and the UI must warn loudly.
func Health(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		storeStatus := "ok"
		if _, err := st.Count(ctx, store.BucketPendingSales); err != nil {
			storeStatus = "error"
		}

		status := http.StatusOK
		if storeStatus != "ok" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"ok":    status == http.StatusOK,
			"store": storeStatus,
		})
	}
}
