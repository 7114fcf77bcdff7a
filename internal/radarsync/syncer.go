package radarsync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/hervefr78/fga-crm/internal/models"
	"github.com/hervefr78/fga-crm/internal/rbac"
	"github.com/hervefr78/fga-crm/internal/realtime"
	"github.com/hervefr78/fga-crm/internal/startupradar"
	"github.com/hervefr78/fga-crm/internal/types"
	"gorm.io/gorm"
)

var (
	// ErrSyncInProgress rejects overlapping full-sync runs. Two concurrent
	// runs would race on the same external ids before either commits.
	ErrSyncInProgress = errors.New("a startup radar sync is already running")

	// ErrNoRadarLink means the company has no startup_radar_id.
	ErrNoRadarLink = errors.New("company has no startup radar link")

	// ErrInvestorAudit means the company is investor-sourced; the remote has
	// no audits for investors.
	ErrInvestorAudit = errors.New("audits are not available for investor companies")
)

// Syncer owns the one-way Startup Radar -> CRM reconciliation: the full-sync
// orchestrator, the single-company audit trigger and the last-result store.
type Syncer struct {
	db        *gorm.DB
	newClient func() *startupradar.Client
	store     resultStore
	runMu     sync.Mutex
}

func NewSyncer(db *gorm.DB, newClient func() *startupradar.Client) *Syncer {
	if newClient == nil {
		newClient = startupradar.NewClientFromEnv
	}
	return &Syncer{db: db, newClient: newClient}
}

// LastResult returns the outcome of the most recent sync run, if any.
func (s *Syncer) LastResult() (Result, bool) {
	return s.store.get()
}

// FullSync runs the complete reconciliation in dependency order:
// startups -> investors -> contacts -> audits, then commits everything in one
// transaction. Per-record problems accumulate in the result; only an
// authentication failure aborts the run, surfaced as the returned error.
// Records created by the sync belong to the acting user.
func (s *Syncer) FullSync(ctx context.Context, user types.AuthenticatedUser) (*Result, error) {
	if !s.runMu.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer s.runMu.Unlock()

	client := s.newClient()
	total := &Result{}

	if err := client.Authenticate(ctx); err != nil {
		total.Errors = append(total.Errors, fmt.Sprintf("authentication: %v", err))
		s.store.set(total)
		return total, err
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		total.Errors = append(total.Errors, fmt.Sprintf("begin transaction: %v", tx.Error))
		s.store.set(total)
		return total, nil
	}

	startupsResult, idMap := syncStartups(ctx, tx, client, user.ID)
	total.Merge(startupsResult)

	total.Merge(syncInvestors(ctx, tx, client, user.ID))

	total.Merge(syncContacts(ctx, tx, client, user.ID, idMap))

	// Second full round-trip for the startup list; simpler than caching the
	// first fetch across phases.
	startups, err := client.GetStartups(ctx)
	if err != nil {
		total.Errors = append(total.Errors, fmt.Sprintf("re-fetch startups for audits: %v", err))
		startups = nil
	}

	total.Merge(syncAudits(ctx, tx, client, user.ID, idMap, startups))

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		// Nothing was persisted, so the counters must not claim otherwise.
		total.zeroCounters()
		total.Errors = append(total.Errors, fmt.Sprintf("final commit: %v", err))
	} else {
		realtime.Broadcast(map[string]interface{}{
			"type":   "sync_complete",
			"result": total,
		})
	}

	s.store.set(total)

	log.Printf("[RadarSync] sync finished - companies: +%d/~%d, contacts: +%d/~%d, investors: +%d/~%d, audits: +%d, errors: %d",
		total.CompaniesCreated, total.CompaniesUpdated,
		total.ContactsCreated, total.ContactsUpdated,
		total.InvestorsCreated, total.InvestorsUpdated,
		total.AuditsCreated, len(total.Errors))

	return total, nil
}

// AuditOutcome is the result of a single-company audit trigger.
type AuditOutcome struct {
	AuditsCreated int      `json:"audits_created"`
	AuditsSkipped int      `json:"audits_skipped"`
	Errors        []string `json:"errors"`
}

// TriggerCompanyAudit imports the two audit sub-resources for one company,
// outside a full sync. Same idempotency rule as the audits phase.
func (s *Syncer) TriggerCompanyAudit(ctx context.Context, companyID uint, user types.AuthenticatedUser) (*AuditOutcome, error) {
	var company models.Company

	if err := s.db.First(&company, companyID).Error; err != nil {
		return nil, err
	}

	if company.StartupRadarID == nil || *company.StartupRadarID == "" {
		return nil, ErrNoRadarLink
	}
	if strings.HasPrefix(*company.StartupRadarID, investorPrefix) {
		return nil, ErrInvestorAudit
	}

	if err := rbac.CheckAccess(company.OwnerID, user); err != nil {
		return nil, err
	}

	client := s.newClient()
	if err := client.Authenticate(ctx); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	created, skipped, errs := importCompanyAudits(ctx, tx, client, company.ID, company.Name, *company.StartupRadarID, user.ID)

	outcome := &AuditOutcome{
		AuditsCreated: created,
		AuditsSkipped: skipped,
		Errors:        errs,
	}

	if created > 0 {
		if err := tx.Commit().Error; err != nil {
			tx.Rollback()
			outcome.AuditsCreated = 0
			outcome.Errors = append(outcome.Errors, fmt.Sprintf("commit: %v", err))
		}
	} else {
		tx.Rollback()
	}

	log.Printf("[RadarSync] audit %s: %d created, %d existing, %d errors",
		company.Name, outcome.AuditsCreated, outcome.AuditsSkipped, len(outcome.Errors))

	return outcome, nil
}
