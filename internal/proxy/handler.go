package proxy

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/kalijeogo/orderfunnel/internal/analytics"
	"github.com/kalijeogo/orderfunnel/internal/form"
	"github.com/kalijeogo/orderfunnel/internal/order"
)

// CORSMiddleware allows the order form to POST from any origin. The
// endpoint takes no credentials and leaks nothing, so a wildcard is the
// simplest correct policy here.
func CORSMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodPost, http.MethodOptions},
		AllowHeaders:    []string{"Content-Type"},
		// preflight answers 200, the status the form has always seen
		OptionsResponseStatusCode: http.StatusOK,
	})
}

// RegisterRoutes mounts the public submission endpoint. Requests missing
// the minimal fields are bounced here without touching ingest; everything
// else is forwarded with a guaranteed request token.
func RegisterRoutes(r *gin.Engine, f *Forwarder, tracker *analytics.Client) {
	r.POST("/api/submit-order", func(c *gin.Context) {
		var req order.Submission
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, order.SubmitResponse{
				Success: false,
				Error:   "تنسيق البيانات غير صحيح",
			})
			return
		}

		req = order.Normalize(req)
		if missing := order.MissingMinimal(req); len(missing) > 0 {
			c.JSON(http.StatusBadRequest, order.SubmitResponse{
				Success: false,
				Error:   "بيانات ناقصة: " + strings.Join(missing, ", "),
			})
			return
		}

		if req.ClientRequestID == "" {
			req.ClientRequestID = form.NewRequestID()
		}

		resp := f.Forward(c.Request.Context(), req)
		if resp.Success && !resp.Duplicate {
			tracker.Track("Purchase", map[string]interface{}{
				"value":    req.Total,
				"currency": "DZD",
				"watch_id": req.SelectedWatchID,
			})
		}

		c.JSON(http.StatusOK, resp)
	})
}
