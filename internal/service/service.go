package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"woocommerce/migrator/internal/client"
	"woocommerce/migrator/internal/domain"
	"woocommerce/migrator/internal/report"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrNotImplemented = errors.New("not implemented")

type Service struct {
	source         client.SourceClient
	destination    client.DestinationClient
	migrator       *ItemMigrator
	reports        report.Store
	attributeIDMap map[string]int64
	now            func() time.Time
}

// NewService wires the migration steps. attributeIDMap translates source attribute
// ids to destination ids for term migration; nil means the ids are shared.
func NewService(
	source client.SourceClient,
	destination client.DestinationClient,
	reports report.Store,
	attributeIDMap map[string]int64,
) *Service {
	return &Service{
		source:         source,
		destination:    destination,
		migrator:       NewItemMigrator(),
		reports:        reports,
		attributeIDMap: attributeIDMap,
		now:            time.Now,
	}
}

// Reports exposes the run history.
func (s *Service) Reports() report.Store {
	return s.reports
}

func (s *Service) MigrateCategories(ctx context.Context) (*domain.Report, error) {
	return s.migrateCollection(ctx, domain.EntityCategory, s.stripAndCreate(domain.CategoryStripFields))
}

func (s *Service) MigrateAttributes(ctx context.Context) (*domain.Report, error) {
	return s.migrateCollection(ctx, domain.EntityAttribute, s.stripAndCreate(domain.AttributeStripFields))
}

func (s *Service) MigrateProducts(ctx context.Context) (*domain.Report, error) {
	return s.migrateCollection(ctx, domain.EntityProduct, s.reduceAndCreate)
}

// MigrateProductVariations is deferred: variations need the destination ids of
// their parent products and of the attributes they reference, and neither is
// tracked.
func (s *Service) MigrateProductVariations(ctx context.Context) (*domain.Report, error) {
	run := s.newReport(domain.EntityProductVariation)
	run.Status = domain.RunStatusNotImplemented
	run.Finish(s.now())
	s.saveReport(ctx, run)

	log.Warnf("⚠️ %s migration is not implemented", domain.EntityProductVariation.GetEntityName())
	return run, ErrNotImplemented
}

// MigrateAllAttributeTerms copies the terms of every source attribute. Terms are
// posted under the destination attribute found in the configured id map, or under
// the source id when there is no map.
func (s *Service) MigrateAllAttributeTerms(ctx context.Context) (*domain.Report, error) {
	run := s.newReport(domain.EntityAttributeTerm)
	log.Infof("🔄 Migrating %s", domain.EntityAttributeTerm.GetEntityName())

	attributes, err := s.source.FetchAll(ctx, domain.EntityAttribute.Path(), nil)
	if err != nil {
		return s.fetchFailed(ctx, run, err)
	}

	if len(s.attributeIDMap) == 0 {
		log.Warnf("⚠️ No attribute id map configured: terms are posted under the source attribute ids, which only works if the destination assigned the same ids")
	}

	for _, attribute := range attributes {
		sourceID, ok := attribute.ID()
		if !ok {
			log.Errorf("❌ Attribute %q has no id, skipping its terms", attribute.Name())
			run.Failed++
			run.Failures = append(run.Failures, domain.ItemFailure{Name: attribute.Name(), Reason: "attribute has no id"})
			continue
		}

		destinationID, ok := s.destinationAttributeID(sourceID)
		if !ok {
			log.Errorf("❌ Attribute %q (#%d) is missing from the attribute id map, skipping its terms", attribute.Name(), sourceID)
			run.Failed++
			run.Failures = append(run.Failures, domain.ItemFailure{
				Name:   attribute.Name(),
				Reason: fmt.Sprintf("source attribute %d has no destination id", sourceID),
			})
			continue
		}

		child := s.newReport(domain.EntityAttributeTerm)
		child.Scope = fmt.Sprintf("attribute:%d", sourceID)

		terms, err := s.source.FetchAll(ctx, domain.EntityAttributeTerm.Path(sourceID), nil)
		if err != nil {
			child.Status = domain.RunStatusFetchFailed
			child.FetchError = err.Error()
			child.Finish(s.now())
			run.Absorb(child)
			log.Errorf("❌ Error fetching terms of attribute %q: %v", attribute.Name(), err)
			continue
		}

		child.Fetched = len(terms)
		log.Infof("Total terms to migrate for attribute %q: %d", attribute.Name(), len(terms))

		s.migrator.Migrate(ctx, child, terms,
			s.destination.URL(domain.EntityAttributeTerm.Path(destinationID)),
			s.stripAndCreate(domain.AttributeTermStripFields))
		child.Finish(s.now())
		run.Absorb(child)

		if child.Status == domain.RunStatusCancelled {
			run.Status = domain.RunStatusCancelled
			break
		}
	}

	if run.Status == domain.RunStatusRunning && hasFetchFailure(run.Children) {
		run.Status = domain.RunStatusCompletedWithErrors
	}
	run.Finish(s.now())
	s.saveReport(ctx, run)
	s.logSummary(run)

	return run, nil
}

func (s *Service) migrateCollection(ctx context.Context, entity domain.Entity, submit SubmitFunc) (*domain.Report, error) {
	run := s.newReport(entity)
	log.Infof("🔄 Migrating %s", entity.GetEntityName())

	items, err := s.source.FetchAll(ctx, entity.Path(), nil)
	if err != nil {
		return s.fetchFailed(ctx, run, err)
	}

	run.Fetched = len(items)
	log.Infof("Total %s to migrate: %d", entity, len(items))

	s.migrator.Migrate(ctx, run, items, s.destination.URL(entity.Path()), submit)

	run.Finish(s.now())
	s.saveReport(ctx, run)
	s.logSummary(run)

	return run, nil
}

func (s *Service) stripAndCreate(fields []string) SubmitFunc {
	return func(ctx context.Context, item domain.Record, destinationURL string) error {
		return s.destination.Create(ctx, destinationURL, domain.Strip(item, fields...))
	}
}

func (s *Service) reduceAndCreate(ctx context.Context, item domain.Record, destinationURL string) error {
	return s.destination.Create(ctx, destinationURL, domain.ReduceProduct(item))
}

func (s *Service) destinationAttributeID(sourceID int64) (int64, bool) {
	if len(s.attributeIDMap) == 0 {
		return sourceID, true
	}
	id, ok := s.attributeIDMap[strconv.FormatInt(sourceID, 10)]
	return id, ok
}

func (s *Service) fetchFailed(ctx context.Context, run *domain.Report, err error) (*domain.Report, error) {
	run.Status = domain.RunStatusFetchFailed
	run.FetchError = err.Error()
	run.Finish(s.now())
	s.saveReport(ctx, run)

	log.Errorf("❌ Error during %s migration: %v", run.Entity, err)
	return run, fmt.Errorf("%s migration: %w", run.Entity, err)
}

func (s *Service) newReport(entity domain.Entity) *domain.Report {
	return &domain.Report{
		ID:        uuid.NewString(),
		Entity:    entity,
		Status:    domain.RunStatusRunning,
		StartedAt: s.now(),
	}
}

// saveReport must not turn a finished migration into a failure.
func (s *Service) saveReport(ctx context.Context, run *domain.Report) {
	if s.reports == nil {
		return
	}
	if err := s.reports.Save(context.WithoutCancel(ctx), run); err != nil {
		log.Warnf("⚠️ Failed to save report %s: %v", run.ID, err)
	}
}

func (s *Service) logSummary(run *domain.Report) {
	log.Infof("🎉 %s migration %s: %d fetched, %d migrated, %d failed, %d skipped (report %s)",
		run.Entity.GetEntityName(), run.Status, run.Fetched, run.Succeeded, run.Failed, run.Skipped, run.ID)
}

func hasFetchFailure(children []*domain.Report) bool {
	for _, child := range children {
		if child.Status == domain.RunStatusFetchFailed {
			return true
		}
	}
	return false
}
