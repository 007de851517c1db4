package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/neurix/internal/gateway"
	"github.com/nulzo/neurix/internal/relay"
	"github.com/nulzo/neurix/internal/server/middleware"
	"github.com/nulzo/neurix/internal/server/validator"
	"github.com/nulzo/neurix/pkg/api"
)

type RelayHandler struct {
	relay    *relay.Service
	registry *gateway.Registry
}

// NewRelayHandler serves the relay endpoints. registry may be nil, in which
// case /api/models lists only relay names.
func NewRelayHandler(relay *relay.Service, registry *gateway.Registry) *RelayHandler {
	return &RelayHandler{relay: relay, registry: registry}
}

// Chat runs after the rate limiter has accepted and recorded the request.
func (h *RelayHandler) Chat(c *gin.Context) {
	if !h.relay.Configured() {
		_ = c.Error(api.NewError(http.StatusInternalServerError, api.MsgMissingServerKey))
		return
	}

	var req api.RelayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validator.IsValidation(err) {
			_ = c.Error(api.BadRequestError(api.MsgMissingFields, api.WithLog(err)))
			return
		}
		_ = c.Error(api.BadRequestError("Invalid JSON body", api.WithLog(err)))
		return
	}

	resp, err := h.relay.Forward(c.Request.Context(), middleware.ClientID(c), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *RelayHandler) Models(c *gin.Context) {
	resp := api.ModelsResponse{Models: h.relay.Models()}
	if h.registry != nil {
		resp.Dispatch = h.registry.Descriptors()
	}
	c.JSON(http.StatusOK, resp)
}
