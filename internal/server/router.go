package server

import (
	"context"
	"net/http"

	"woocommerce/migrator/internal/report"

	"github.com/gin-gonic/gin"
)

// NewEngine builds the gin engine with the trigger, report and health routes.
func NewEngine(runCtx context.Context, migrator Migrator, reports report.Store) *gin.Engine {
	engine := gin.New()
	engine.Use(Logger(), Recovery())

	NewMigrationHandler(runCtx, migrator).RegisterRoutes(engine)
	NewReportHandler(reports).RegisterRoutes(engine.Group("/reports"))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return engine
}
