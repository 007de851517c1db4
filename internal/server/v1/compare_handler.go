package v1

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/neurix/internal/analytics"
	"github.com/nulzo/neurix/internal/gateway"
	"github.com/nulzo/neurix/internal/server/middleware"
	"github.com/nulzo/neurix/internal/server/validator"
	"github.com/nulzo/neurix/pkg/api"
)

type CompareHandler struct {
	dispatcher *gateway.Dispatcher
	ingestor   analytics.Ingestor
}

// NewCompareHandler serves fan-out comparisons. ingestor may be nil.
func NewCompareHandler(dispatcher *gateway.Dispatcher, ingestor analytics.Ingestor) *CompareHandler {
	return &CompareHandler{dispatcher: dispatcher, ingestor: ingestor}
}

func (h *CompareHandler) Compare(c *gin.Context) {
	var req api.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	agg, err := h.dispatcher.DispatchAll(c.Request.Context(), &req.ChatRequest, req.Models)
	if err != nil {
		_ = c.Error(api.BadRequestError(err.Error()))
		return
	}

	for _, r := range agg.Results {
		h.record(c, r)
	}
	c.JSON(http.StatusOK, agg)
}

func (h *CompareHandler) CompareOne(c *gin.Context) {
	name := c.Param("model")

	var req api.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}
	if err := req.Validate(); err != nil {
		_ = c.Error(api.BadRequestError(err.Error()))
		return
	}

	result, ok := h.dispatcher.DispatchOne(c.Request.Context(), "", name, &req)
	if !ok {
		_ = c.Error(api.NotFoundError(fmt.Sprintf("Unknown model: %s", name), api.WithModel(name)))
		return
	}

	h.record(c, result)
	c.JSON(http.StatusOK, result)
}

// Status probes the models named in ?models=a,b, or every registered model.
func (h *CompareHandler) Status(c *gin.Context) {
	var models []string
	if raw := c.Query("models"); raw != "" {
		for _, m := range strings.Split(raw, ",") {
			if m = strings.TrimSpace(m); m != "" {
				models = append(models, m)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"models": h.dispatcher.Probe(c.Request.Context(), models),
	})
}

func (h *CompareHandler) record(c *gin.Context, r api.ModelResult) {
	if h.ingestor == nil {
		return
	}

	upstream := ""
	if t, ok := h.dispatcher.Registry().Lookup(r.Model); ok {
		upstream = t.Descriptor.UpstreamModel
	}
	h.ingestor.Log(analytics.FromResult(middleware.ClientID(c), upstream, r))
}

func bindError(err error) *api.Error {
	if validator.IsValidation(err) {
		return api.BadRequestError(validator.Describe(err), api.WithLog(err))
	}
	return api.BadRequestError("Invalid JSON body", api.WithLog(err))
}
