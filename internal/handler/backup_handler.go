package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campusops/ccrm-api/internal/service"
	"github.com/campusops/ccrm-api/pkg/backup"
	appErrors "github.com/campusops/ccrm-api/pkg/errors"
	"github.com/campusops/ccrm-api/pkg/response"
)

// BackupHandler exposes snapshot endpoints.
type BackupHandler struct {
	backups *service.BackupService
	metrics *service.MetricsService
}

// NewBackupHandler constructs BackupHandler.
func NewBackupHandler(backups *service.BackupService, metrics *service.MetricsService) *BackupHandler {
	return &BackupHandler{backups: backups, metrics: metrics}
}

// Create godoc
// @Summary Save data and create a timestamped backup snapshot
// @Tags Backups
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /backups [post]
func (h *BackupHandler) Create(c *gin.Context) {
	info, err := h.backups.Create(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordBackup()
	response.Created(c, gin.H{
		"snapshot":   info,
		"size_human": backup.FormatSize(info.SizeBytes),
	})
}

// List godoc
// @Summary List backup snapshots
// @Tags Backups
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /backups [get]
func (h *BackupHandler) List(c *gin.Context) {
	infos, err := h.backups.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, infos, nil)
}

// Get godoc
// @Summary Get one backup snapshot's details
// @Tags Backups
// @Produce json
// @Param name path string true "Snapshot name"
// @Success 200 {object} response.Envelope
// @Router /backups/{name} [get]
func (h *BackupHandler) Get(c *gin.Context) {
	info, err := h.backups.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"snapshot":   info,
		"size_human": backup.FormatSize(info.SizeBytes),
	}, nil)
}

// Prune godoc
// @Summary Remove oldest snapshots beyond the keep count
// @Tags Backups
// @Produce json
// @Param keep query int true "How many snapshots to keep"
// @Success 200 {object} response.Envelope
// @Router /backups/prune [post]
func (h *BackupHandler) Prune(c *gin.Context) {
	keep, err := strconv.Atoi(c.Query("keep"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "keep must be an integer"))
		return
	}
	removed, err := h.backups.Prune(c.Request.Context(), keep)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"removed": removed}, nil)
}
