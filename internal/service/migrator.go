package service

import (
	"context"

	"woocommerce/migrator/internal/domain"

	log "github.com/sirupsen/logrus"
)

// SubmitFunc transforms one fetched record and creates it on the destination.
type SubmitFunc func(ctx context.Context, item domain.Record, destinationURL string) error

// ItemMigrator submits records one at a time. A failing record is logged and
// recorded, never fatal for the rest of the batch.
type ItemMigrator struct{}

func NewItemMigrator() *ItemMigrator {
	return &ItemMigrator{}
}

// Migrate submits items in order into report. Cancellation stops the loop and
// counts what is left as skipped.
func (m *ItemMigrator) Migrate(ctx context.Context, report *domain.Report, items []domain.Record, destinationURL string, submit SubmitFunc) {
	entityName := report.Entity.GetEntityName()

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			report.Skipped += len(items) - i
			report.Status = domain.RunStatusCancelled
			log.Warnf("🛑 %s migration cancelled, %d items skipped: %v", entityName, len(items)-i, err)
			return
		}

		if err := submit(ctx, item, destinationURL); err != nil {
			report.RecordFailure(i, item.Name(), err)
			log.Errorf("❌ Error migrating %s %q: %v", report.Entity, item.Name(), err)
			continue
		}

		report.RecordSuccess()
		log.Infof("✅ Migrated %s %q", report.Entity, item.Name())
	}
}
