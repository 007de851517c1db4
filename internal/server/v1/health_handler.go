package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/neurix/pkg/api"
)

// isoMillis matches the millisecond ISO-8601 form clients already parse.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

type HealthHandler struct {
	service string
	now     func() time.Time
}

func NewHealthHandler(service string) *HealthHandler {
	return &HealthHandler{service: service, now: time.Now}
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{
		Status:    "healthy",
		Service:   h.service,
		Timestamp: h.now().UTC().Format(isoMillis),
	})
}
