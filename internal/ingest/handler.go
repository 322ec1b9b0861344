package ingest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kalijeogo/orderfunnel/internal/order"
)

// RegisterRoutes mounts the ingest endpoint. Like the spreadsheet script
// it replaces, the endpoint always answers HTTP 200 and carries
// success/failure in the body.
func RegisterRoutes(r *gin.Engine, svc *Service) {
	r.POST("/orders", func(c *gin.Context) {
		var req order.Submission
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, order.SubmitResponse{
				Success: false,
				Error:   "تنسيق البيانات غير صحيح",
			})
			return
		}

		c.JSON(http.StatusOK, svc.Submit(c.Request.Context(), req))
	})
}
