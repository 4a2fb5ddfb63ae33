package server

import (
	"errors"
	"net/http"
	"strconv"

	"woocommerce/migrator/internal/report"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const (
	ReportIDHeader   = "X-Migration-Report"
	defaultListLimit = 20
)

type ReportHandler struct {
	store report.Store
}

func NewReportHandler(store report.Store) *ReportHandler {
	return &ReportHandler{store: store}
}

func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
}

func (h *ReportHandler) List(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultListLimit)))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}

	reports, err := h.store.List(c.Request.Context(), limit)
	if err != nil {
		log.Errorf("❌ Failed to list reports: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reports"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": reports})
}

func (h *ReportHandler) Get(c *gin.Context) {
	id := c.Param("id")

	run, err := h.store.Get(c.Request.Context(), id)
	if errors.Is(err, report.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	if err != nil {
		log.Errorf("❌ Failed to load report %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load report"})
		return
	}

	c.JSON(http.StatusOK, run)
}
