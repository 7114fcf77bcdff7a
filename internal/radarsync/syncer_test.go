package radarsync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hervefr78/fga-crm/internal/models"
	"github.com/hervefr78/fga-crm/internal/startupradar"
	"github.com/hervefr78/fga-crm/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeRemote is a stand-in for the Startup Radar API. List endpoints serve a
// single page; analysis and audit payloads are keyed by startup id.
type fakeRemote struct {
	startups  []startupradar.Startup
	investors []startupradar.Investor
	contacts  []startupradar.Contact

	// raw JSON per startup id; missing key means remote 404
	analyses map[string]string
	audits   map[string]string

	// startup ids whose analysis endpoint answers 500
	failAnalysis map[string]bool

	// when non-nil, /startups blocks until the channel is closed
	startupsGate chan struct{}
	// closed once the first /startups request has arrived
	startupsSeen chan struct{}

	server *httptest.Server
}

func newFakeRemote(t *testing.T) *fakeRemote {
	t.Helper()

	remote := &fakeRemote{
		analyses:     map[string]string{},
		audits:       map[string]string{},
		failAnalysis: map[string]bool{},
		startupsSeen: make(chan struct{}),
	}

	var seenOnce bool

	remote.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/auth/login":
			json.NewEncoder(w).Encode(map[string]string{"access_token": "tok"})

		case r.URL.Path == "/startups":
			if !seenOnce {
				seenOnce = true
				close(remote.startupsSeen)
			}
			if remote.startupsGate != nil {
				<-remote.startupsGate
			}
			writePage(w, remote.startups)

		case r.URL.Path == "/investors":
			writePage(w, remote.investors)

		case r.URL.Path == "/contacts":
			writePage(w, remote.contacts)

		case strings.HasPrefix(r.URL.Path, "/analysis/startup/"):
			id := strings.TrimPrefix(r.URL.Path, "/analysis/startup/")
			if remote.failAnalysis[id] {
				http.Error(w, "boom", http.StatusInternalServerError)
				return
			}
			serveRaw(w, r, remote.analyses, id)

		case strings.HasPrefix(r.URL.Path, "/detailed-audit/"):
			serveRaw(w, r, remote.audits, strings.TrimPrefix(r.URL.Path, "/detailed-audit/"))

		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(remote.server.Close)

	return remote
}

func writePage(w http.ResponseWriter, items interface{}) {
	json.NewEncoder(w).Encode(map[string]interface{}{
		"items": items,
		"pages": 1,
	})
}

func serveRaw(w http.ResponseWriter, r *http.Request, payloads map[string]string, id string) {
	raw, ok := payloads[id]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Write([]byte(raw))
}

func openSyncTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Company{},
		&models.Contact{},
		&models.Activity{},
	))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return db
}

func newSyncer(t *testing.T, db *gorm.DB, remote *fakeRemote) (*Syncer, types.AuthenticatedUser) {
	t.Helper()

	user := models.User{Name: "ops", Email: "ops@example.com", PasswordHash: "x", Role: models.RoleAdmin, IsActive: true}
	require.NoError(t, db.Create(&user).Error)

	syncer := NewSyncer(db, func() *startupradar.Client {
		return startupradar.NewClient(remote.server.URL, "radar@example.com", "secret")
	})

	return syncer, types.AuthenticatedUser{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}
}

func seedRemote(remote *fakeRemote) {
	decisionMaker := true
	startupOne := int64(1)

	remote.startups = []startupradar.Startup{
		{ID: 1, Name: "Acme", Website: "https://acme.dev", Sector: "Fintech", Description: "Payments", Strategy: "PLG", Amount: 2000000, Series: "Seed"},
		{ID: 2, Name: "Globex", Sector: "Biotech"},
		{ID: 0, Name: "Ghost"}, // no id, must be skipped
	}
	// Shares the numeric id with the Acme startup; the inv: prefix keeps the
	// two rows apart.
	remote.investors = []startupradar.Investor{
		{ID: 1, Name: "Big Fund", Website: "https://bigfund.vc", StartupsCount: 40, TotalFundingAmount: 12000000},
	}
	remote.contacts = []startupradar.Contact{
		{ID: 11, StartupID: &startupOne, FirstName: "Jane", LastName: "Doe", Email: "jane@acme.dev", EmailStatus: "valid", Title: "CEO", IsDecisionMaker: &decisionMaker},
		{ID: 12, FirstName: "John", LastName: "Roe", Email: "john@nowhere.dev"},
	}
	remote.analyses["1"] = `{"positioning": "Clear leader", "value_proposition": "Fast payments", "messaging_score": 82.5, "strengths": ["clarity"]}`
	remote.audits["1"] = `{"status": "completed", "result": {"executive_summary": {"total_score": 71.5, "score_interpretation": "Good", "gaps_count": 3}}}`
}

func TestFullSync(t *testing.T) {
	db := openSyncTestDB(t)
	remote := newFakeRemote(t)
	seedRemote(remote)
	syncer, user := newSyncer(t, db, remote)

	result, err := syncer.FullSync(context.Background(), user)
	require.NoError(t, err)

	assert.Equal(t, 2, result.CompaniesCreated)
	assert.Equal(t, 0, result.CompaniesUpdated)
	assert.Equal(t, 1, result.InvestorsCreated)
	assert.Equal(t, 2, result.ContactsCreated)
	assert.Equal(t, 2, result.AuditsCreated)
	assert.Empty(t, result.Errors)

	var acme models.Company
	require.NoError(t, db.Where("startup_radar_id = ?", "1").First(&acme).Error)
	assert.Equal(t, "Acme", acme.Name)
	assert.Equal(t, "Fintech", acme.Industry)
	require.NotNil(t, acme.OwnerID)
	assert.Equal(t, user.ID, *acme.OwnerID)
	assert.Equal(t, "PLG", acme.CustomFields["strategy"])

	var fund models.Company
	require.NoError(t, db.Where("startup_radar_id = ?", "inv:1").First(&fund).Error)
	assert.Equal(t, "Big Fund", fund.Name)
	assert.Equal(t, "Venture capital", fund.Industry)
	assert.NotEqual(t, acme.ID, fund.ID)

	var jane models.Contact
	require.NoError(t, db.Where("startup_radar_id = ?", "11").First(&jane).Error)
	require.NotNil(t, jane.CompanyID)
	assert.Equal(t, acme.ID, *jane.CompanyID)
	assert.True(t, jane.IsDecisionMaker)
	assert.Equal(t, "startup_radar", jane.Source)

	var john models.Contact
	require.NoError(t, db.Where("startup_radar_id = ?", "12").First(&john).Error)
	assert.Nil(t, john.CompanyID)

	var audits []models.Activity
	require.NoError(t, db.Where("company_id = ? AND type = ?", acme.ID, models.ActivityTypeAudit).Order("subject").Find(&audits).Error)
	require.Len(t, audits, 2)
	assert.Equal(t, "Audit detailed: Acme", audits[0].Subject)
	assert.Equal(t, "Audit messaging: Acme", audits[1].Subject)
	assert.Equal(t, user.ID, audits[0].UserID)

	last, ok := syncer.LastResult()
	require.True(t, ok)
	assert.Equal(t, 2, last.CompaniesCreated)
}

func TestFullSyncIsIdempotent(t *testing.T) {
	db := openSyncTestDB(t)
	remote := newFakeRemote(t)
	seedRemote(remote)
	syncer, user := newSyncer(t, db, remote)

	_, err := syncer.FullSync(context.Background(), user)
	require.NoError(t, err)

	second, err := syncer.FullSync(context.Background(), user)
	require.NoError(t, err)

	assert.Equal(t, 0, second.CompaniesCreated)
	assert.Equal(t, 2, second.CompaniesUpdated)
	assert.Equal(t, 0, second.InvestorsCreated)
	assert.Equal(t, 1, second.InvestorsUpdated)
	assert.Equal(t, 0, second.ContactsCreated)
	assert.Equal(t, 2, second.ContactsUpdated)
	assert.Equal(t, 0, second.AuditsCreated)

	var companies int64
	require.NoError(t, db.Model(&models.Company{}).Count(&companies).Error)
	assert.Equal(t, int64(3), companies)

	var audits int64
	require.NoError(t, db.Model(&models.Activity{}).Where("type = ?", models.ActivityTypeAudit).Count(&audits).Error)
	assert.Equal(t, int64(2), audits)
}

func TestFullSyncPreservesManualCustomFields(t *testing.T) {
	db := openSyncTestDB(t)
	remote := newFakeRemote(t)
	seedRemote(remote)
	syncer, user := newSyncer(t, db, remote)

	_, err := syncer.FullSync(context.Background(), user)
	require.NoError(t, err)

	var acme models.Company
	require.NoError(t, db.Where("startup_radar_id = ?", "1").First(&acme).Error)
	acme.CustomFields["account_notes"] = "met at conference"
	require.NoError(t, db.Save(&acme).Error)

	remote.startups[0].Series = "Series A"

	_, err = syncer.FullSync(context.Background(), user)
	require.NoError(t, err)

	require.NoError(t, db.Where("startup_radar_id = ?", "1").First(&acme).Error)
	assert.Equal(t, "met at conference", acme.CustomFields["account_notes"])
	assert.Equal(t, "Series A", acme.CustomFields["funding_series"])
}

func TestFullSyncRecordsPartialFailures(t *testing.T) {
	db := openSyncTestDB(t)
	remote := newFakeRemote(t)
	seedRemote(remote)
	remote.analyses["2"] = `{"positioning": "Contender", "value_proposition": "Therapies"}`
	remote.failAnalysis["2"] = true
	syncer, user := newSyncer(t, db, remote)

	result, err := syncer.FullSync(context.Background(), user)
	require.NoError(t, err)

	// The failing record is reported; everything else still lands.
	assert.Equal(t, 2, result.CompaniesCreated)
	assert.Equal(t, 2, result.AuditsCreated)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Globex")
}

func TestFullSyncAuthFailure(t *testing.T) {
	db := openSyncTestDB(t)

	remote := &fakeRemote{server: httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))}
	t.Cleanup(remote.server.Close)

	syncer, user := newSyncer(t, db, remote)

	result, err := syncer.FullSync(context.Background(), user)

	var authErr *startupradar.AuthError
	require.ErrorAs(t, err, &authErr)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 0, result.CompaniesCreated)

	last, ok := syncer.LastResult()
	require.True(t, ok)
	assert.Len(t, last.Errors, 1)
}

func TestFullSyncSingleFlight(t *testing.T) {
	db := openSyncTestDB(t)
	remote := newFakeRemote(t)
	seedRemote(remote)
	remote.startupsGate = make(chan struct{})
	syncer, user := newSyncer(t, db, remote)

	done := make(chan error, 1)
	go func() {
		_, err := syncer.FullSync(context.Background(), user)
		done <- err
	}()

	<-remote.startupsSeen

	_, err := syncer.FullSync(context.Background(), user)
	assert.ErrorIs(t, err, ErrSyncInProgress)

	close(remote.startupsGate)
	require.NoError(t, <-done)
}

func TestTriggerCompanyAudit(t *testing.T) {
	db := openSyncTestDB(t)
	remote := newFakeRemote(t)
	syncer, user := newSyncer(t, db, remote)

	srID := "77"
	ownerID := user.ID
	company := models.Company{Name: "Acme", StartupRadarID: &srID, OwnerID: &ownerID}
	require.NoError(t, db.Create(&company).Error)

	remote.analyses[srID] = `{"positioning": "Leader", "value_proposition": "Fast"}`
	remote.audits[srID] = `{"status": "completed", "result": {"executive_summary": {"total_score": 64, "score_interpretation": "Fair"}}}`

	outcome, err := syncer.TriggerCompanyAudit(context.Background(), company.ID, user)
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.AuditsCreated)
	assert.Equal(t, 0, outcome.AuditsSkipped)

	// A second trigger finds the same subjects and inserts nothing.
	outcome, err = syncer.TriggerCompanyAudit(context.Background(), company.ID, user)
	require.NoError(t, err)
	assert.Equal(t, 0, outcome.AuditsCreated)
	assert.Equal(t, 2, outcome.AuditsSkipped)

	var audits int64
	require.NoError(t, db.Model(&models.Activity{}).Where("company_id = ?", company.ID).Count(&audits).Error)
	assert.Equal(t, int64(2), audits)
}

func TestTriggerCompanyAuditPendingThenCompleted(t *testing.T) {
	db := openSyncTestDB(t)
	remote := newFakeRemote(t)
	syncer, user := newSyncer(t, db, remote)

	srID := "78"
	ownerID := user.ID
	company := models.Company{Name: "Globex", StartupRadarID: &srID, OwnerID: &ownerID}
	require.NoError(t, db.Create(&company).Error)

	remote.audits[srID] = `{"status": "processing"}`

	outcome, err := syncer.TriggerCompanyAudit(context.Background(), company.ID, user)
	require.NoError(t, err)
	assert.Equal(t, 0, outcome.AuditsCreated)
	require.Len(t, outcome.Errors, 1)
	assert.Contains(t, outcome.Errors[0], "in progress")

	remote.audits[srID] = `{"status": "completed", "result": {"executive_summary": {"total_score": 80, "score_interpretation": "Strong"}}}`

	outcome, err = syncer.TriggerCompanyAudit(context.Background(), company.ID, user)
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.AuditsCreated)
	assert.Empty(t, outcome.Errors)
}

func TestTriggerCompanyAuditGuards(t *testing.T) {
	db := openSyncTestDB(t)
	remote := newFakeRemote(t)
	syncer, user := newSyncer(t, db, remote)

	_, err := syncer.TriggerCompanyAudit(context.Background(), 9999, user)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	unlinked := models.Company{Name: "Manual Corp"}
	require.NoError(t, db.Create(&unlinked).Error)

	_, err = syncer.TriggerCompanyAudit(context.Background(), unlinked.ID, user)
	assert.ErrorIs(t, err, ErrNoRadarLink)

	invID := "inv:5"
	investor := models.Company{Name: "Big Fund", StartupRadarID: &invID}
	require.NoError(t, db.Create(&investor).Error)

	_, err = syncer.TriggerCompanyAudit(context.Background(), investor.ID, user)
	assert.ErrorIs(t, err, ErrInvestorAudit)
}

func TestTriggerCompanyAuditAccessDenied(t *testing.T) {
	db := openSyncTestDB(t)
	remote := newFakeRemote(t)
	syncer, owner := newSyncer(t, db, remote)

	other := models.User{Name: "rep", Email: "rep@example.com", PasswordHash: "x", Role: models.RoleSales, IsActive: true}
	require.NoError(t, db.Create(&other).Error)

	srID := "80"
	ownerID := owner.ID
	company := models.Company{Name: "Acme", StartupRadarID: &srID, OwnerID: &ownerID}
	require.NoError(t, db.Create(&company).Error)

	sales := types.AuthenticatedUser{ID: other.ID, Role: other.Role}

	_, err := syncer.TriggerCompanyAudit(context.Background(), company.ID, sales)
	assert.Error(t, err)
}
