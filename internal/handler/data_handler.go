package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusops/ccrm-api/internal/service"
	"github.com/campusops/ccrm-api/pkg/response"
)

// DataHandler exposes save/load endpoints for the data directory.
type DataHandler struct {
	persistence *service.PersistenceService
	metrics     *service.MetricsService
	stats       *service.StatsService
}

// NewDataHandler constructs DataHandler.
func NewDataHandler(persistence *service.PersistenceService, metrics *service.MetricsService, stats *service.StatsService) *DataHandler {
	return &DataHandler{persistence: persistence, metrics: metrics, stats: stats}
}

// Save godoc
// @Summary Save all records to the data directory
// @Tags Data
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /data/save [post]
func (h *DataHandler) Save(c *gin.Context) {
	result, err := h.persistence.SaveAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordSave()
	response.JSON(c, http.StatusOK, result, nil)
}

// Load godoc
// @Summary Replace all records with the data directory contents
// @Tags Data
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /data/load [post]
func (h *DataHandler) Load(c *gin.Context) {
	result, err := h.persistence.LoadAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.stats.Invalidate(c.Request.Context())
	response.JSON(c, http.StatusOK, result, nil)
}

// Files godoc
// @Summary List data directory files
// @Tags Data
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /data/files [get]
func (h *DataHandler) Files(c *gin.Context) {
	files, err := h.persistence.DataFiles(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, files, nil)
}
