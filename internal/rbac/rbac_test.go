package rbac

import (
	"testing"

	"github.com/hervefr78/fga-crm/internal/models"
	"github.com/hervefr78/fga-crm/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Company{},
		&models.Contact{},
		&models.Deal{},
		&models.Task{},
		&models.Activity{},
	))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return db
}

func seedUser(t *testing.T, db *gorm.DB, name, role string) types.AuthenticatedUser {
	t.Helper()

	user := models.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&user).Error)

	return types.AuthenticatedUser{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}
}

func TestScopeQueryCompanies(t *testing.T) {
	db := openTestDB(t)

	alice := seedUser(t, db, "alice", models.RoleSales)
	bob := seedUser(t, db, "bob", models.RoleSales)
	boss := seedUser(t, db, "boss", models.RoleManager)
	root := seedUser(t, db, "root", models.RoleAdmin)

	aliceID, bobID := alice.ID, bob.ID
	require.NoError(t, db.Create(&models.Company{Name: "Acme", OwnerID: &aliceID}).Error)
	require.NoError(t, db.Create(&models.Company{Name: "Globex", OwnerID: &bobID}).Error)
	require.NoError(t, db.Create(&models.Company{Name: "Orphan Corp"}).Error)

	count := func(u types.AuthenticatedUser) int64 {
		var n int64
		require.NoError(t, ScopeQuery(db.Model(&models.Company{}), u, OwnerFieldDefault).Count(&n).Error)
		return n
	}

	assert.Equal(t, int64(1), count(alice))
	assert.Equal(t, int64(1), count(bob))
	assert.Equal(t, int64(3), count(boss))
	assert.Equal(t, int64(3), count(root))

	var own models.Company
	require.NoError(t, ScopeQuery(db.Model(&models.Company{}), alice, OwnerFieldDefault).First(&own).Error)
	assert.Equal(t, "Acme", own.Name)
}

func TestScopeQueryPreservesFilters(t *testing.T) {
	db := openTestDB(t)

	alice := seedUser(t, db, "alice", models.RoleSales)

	aliceID := alice.ID
	require.NoError(t, db.Create(&models.Company{Name: "Acme", Industry: "Fintech", OwnerID: &aliceID}).Error)
	require.NoError(t, db.Create(&models.Company{Name: "Beta", Industry: "Biotech", OwnerID: &aliceID}).Error)

	query := db.Model(&models.Company{}).Where("industry = ?", "Fintech")
	query = ScopeQuery(query, alice, OwnerFieldDefault)

	var n int64
	require.NoError(t, query.Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestScopeQueryTasksByAssignee(t *testing.T) {
	db := openTestDB(t)

	alice := seedUser(t, db, "alice", models.RoleSales)
	bob := seedUser(t, db, "bob", models.RoleSales)

	aliceID, bobID := alice.ID, bob.ID
	require.NoError(t, db.Create(&models.Task{Title: "Call Acme", AssignedTo: &aliceID}).Error)
	require.NoError(t, db.Create(&models.Task{Title: "Email Globex", AssignedTo: &bobID}).Error)
	require.NoError(t, db.Create(&models.Task{Title: "Unassigned"}).Error)

	var tasks []models.Task
	require.NoError(t, ScopeQuery(db.Model(&models.Task{}), alice, OwnerFieldAssignedTo).Find(&tasks).Error)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Call Acme", tasks[0].Title)
}

func TestScopeQueryActivitiesByUser(t *testing.T) {
	db := openTestDB(t)

	alice := seedUser(t, db, "alice", models.RoleSales)
	bob := seedUser(t, db, "bob", models.RoleSales)
	boss := seedUser(t, db, "boss", models.RoleManager)

	require.NoError(t, db.Create(&models.Activity{Type: "note", Subject: "a", UserID: alice.ID}).Error)
	require.NoError(t, db.Create(&models.Activity{Type: "note", Subject: "b", UserID: bob.ID}).Error)

	var n int64
	require.NoError(t, ScopeQuery(db.Model(&models.Activity{}), alice, OwnerFieldUserID).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	require.NoError(t, ScopeQuery(db.Model(&models.Activity{}), boss, OwnerFieldUserID).Count(&n).Error)
	assert.Equal(t, int64(2), n)
}

func TestCheckAccess(t *testing.T) {
	sales := types.AuthenticatedUser{ID: 7, Role: models.RoleSales}
	manager := types.AuthenticatedUser{ID: 8, Role: models.RoleManager}
	admin := types.AuthenticatedUser{ID: 9, Role: models.RoleAdmin}

	own := uint(7)
	other := uint(5)

	assert.NoError(t, CheckAccess(&own, sales))
	assert.ErrorIs(t, CheckAccess(&other, sales), ErrAccessDenied)

	// A record without an owner is invisible to sales.
	assert.ErrorIs(t, CheckAccess(nil, sales), ErrAccessDenied)

	assert.NoError(t, CheckAccess(&other, manager))
	assert.NoError(t, CheckAccess(nil, manager))
	assert.NoError(t, CheckAccess(&other, admin))
	assert.NoError(t, CheckAccess(nil, admin))
}
