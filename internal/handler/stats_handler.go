package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusops/ccrm-api/internal/service"
	"github.com/campusops/ccrm-api/pkg/response"
)

// StatsHandler exposes aggregate statistics endpoints.
type StatsHandler struct {
	stats   *service.StatsService
	metrics *service.MetricsService
}

// NewStatsHandler constructs StatsHandler.
func NewStatsHandler(stats *service.StatsService, metrics *service.MetricsService) *StatsHandler {
	return &StatsHandler{stats: stats, metrics: metrics}
}

// Overview godoc
// @Summary Aggregate statistics across all collections
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats [get]
func (h *StatsHandler) Overview(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.stats.Overview(c.Request.Context()), nil)
}

// System godoc
// @Summary Runtime metrics snapshot
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats/system [get]
func (h *StatsHandler) System(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}
