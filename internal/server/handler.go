package server

import (
	"context"
	"errors"
	"net/http"

	"woocommerce/migrator/internal/domain"
	"woocommerce/migrator/internal/service"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Migrator is the part of service.Service the trigger routes drive.
type Migrator interface {
	MigrateCategories(ctx context.Context) (*domain.Report, error)
	MigrateAttributes(ctx context.Context) (*domain.Report, error)
	MigrateAllAttributeTerms(ctx context.Context) (*domain.Report, error)
	MigrateProducts(ctx context.Context) (*domain.Report, error)
	MigrateProductVariations(ctx context.Context) (*domain.Report, error)
}

// MigrationHandler serves the trigger routes. Each request runs its migration
// synchronously under runCtx, so a dropped client connection does not stop a run
// but shutting the server down does.
type MigrationHandler struct {
	migrator Migrator
	runCtx   context.Context
}

func NewMigrationHandler(runCtx context.Context, migrator Migrator) *MigrationHandler {
	return &MigrationHandler{migrator: migrator, runCtx: runCtx}
}

func (h *MigrationHandler) RegisterRoutes(rg gin.IRoutes) {
	rg.GET("/migrate-categories", h.trigger(h.migrator.MigrateCategories, "Categories migrated successfully."))
	rg.GET("/migrate-attributes", h.trigger(h.migrator.MigrateAttributes, "Attributes migrated successfully."))
	rg.GET("/migrate-attributes-terms", h.trigger(h.migrator.MigrateAllAttributeTerms, "Attribute terms migrated successfully."))
	rg.GET("/migrate-products", h.trigger(h.migrator.MigrateProducts, "Products migrated successfully."))
	rg.GET("/migrate-products-variations", h.trigger(h.migrator.MigrateProductVariations, "Product variations migrated successfully."))
}

// trigger answers with the fixed message once the run is over. Fetch failures are
// already logged and recorded in the run report; the caller gets the message
// regardless and the report id in a header.
func (h *MigrationHandler) trigger(run func(context.Context) (*domain.Report, error), message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := run(h.runCtx)
		if report != nil {
			c.Header(ReportIDHeader, report.ID)
		}

		if errors.Is(err, service.ErrNotImplemented) {
			c.String(http.StatusNotImplemented, "Product variations migration is not implemented.")
			return
		}
		if err != nil {
			log.Warnf("⚠️ %s finished with error: %v", c.Request.URL.Path, err)
		}

		c.String(http.StatusOK, message)
	}
}
