package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageza/vinoteca/backend/internal/metrics"
	"github.com/pageza/vinoteca/backend/internal/ndjson"
	"github.com/pageza/vinoteca/backend/internal/service"
	"github.com/pageza/vinoteca/backend/internal/types"
)

// startStream commits the NDJSON response headers and returns an emitter writing to it.
// The emitter fails once the client has gone away.
func startStream(c *gin.Context) service.Emitter {
	c.Header("Content-Type", ndjson.ContentType)
	c.Header("Cache-Control", "no-store")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()

	w := ndjson.NewWriter(c.Writer)
	ctx := c.Request.Context()
	return func(ev types.StreamEvent) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.Write(ev); err != nil {
			return err
		}
		metrics.StreamEventsTotal.WithLabelValues(string(ev.Kind)).Inc()
		return nil
	}
}
