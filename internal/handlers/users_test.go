package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hervefr78/fga-crm/db"
	"github.com/hervefr78/fga-crm/internal/models"
	"github.com/hervefr78/fga-crm/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, testDB.AutoMigrate(
		&models.User{},
		&models.Company{},
		&models.Contact{},
		&models.Deal{},
		&models.Task{},
		&models.Activity{},
		&models.EmailTemplate{},
	))

	previous := db.DB
	db.DB = testDB
	t.Cleanup(func() {
		db.DB = previous
		sqlDB, _ := testDB.DB()
		sqlDB.Close()
	})

	return testDB
}

// newTestRouter wires the handlers under test behind a middleware that injects
// the given identity, standing in for the JWT middleware.
func newTestRouter(user types.AuthenticatedUser) *gin.Engine {
	r := gin.New()
	r.Use(func(ctx *gin.Context) {
		ctx.Set(types.ContextUserKey, user)
	})

	r.GET("/users", ListUsers)
	r.PATCH("/users/:id/role", UpdateUserRole)
	r.PATCH("/users/:id/active", ToggleUserActive)

	r.GET("/companies", ListCompanies)
	r.GET("/companies/:id", GetCompany)
	r.DELETE("/companies/:id", DeleteCompany)
	r.GET("/contacts", ListContacts)
	r.GET("/contacts/:id", GetContact)
	r.DELETE("/contacts/:id", DeleteContact)
	r.GET("/deals", ListDeals)
	r.GET("/deals/:id", GetDeal)
	r.DELETE("/deals/:id", DeleteDeal)
	r.GET("/tasks", ListTasks)
	r.GET("/tasks/:id", GetTask)
	r.DELETE("/tasks/:id", DeleteTask)
	r.GET("/activities", ListActivities)
	r.GET("/activities/:id", GetActivity)
	r.DELETE("/activities/:id", DeleteActivity)
	r.GET("/email-templates", ListEmailTemplates)
	r.GET("/email-templates/:id", GetEmailTemplate)
	r.DELETE("/email-templates/:id", DeleteEmailTemplate)

	return r
}

func seedHandlerUser(t *testing.T, testDB *gorm.DB, name, role string) models.User {
	t.Helper()

	user := models.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, testDB.Create(&user).Error)
	return user
}

func asAuthenticated(u models.User) types.AuthenticatedUser {
	return types.AuthenticatedUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUpdateUserRole(t *testing.T) {
	testDB := setupHandlerDB(t)

	first := seedHandlerUser(t, testDB, "first", models.RoleAdmin)
	second := seedHandlerUser(t, testDB, "second", models.RoleAdmin)

	r := newTestRouter(asAuthenticated(first))

	w := doJSON(r, http.MethodPatch, fmt.Sprintf("/users/%d/role", second.ID), gin.H{"role": "sales"})
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.User
	require.NoError(t, testDB.First(&updated, second.ID).Error)
	assert.Equal(t, models.RoleSales, updated.Role)
}

func TestUpdateUserRoleRejectsSelf(t *testing.T) {
	testDB := setupHandlerDB(t)

	admin := seedHandlerUser(t, testDB, "admin", models.RoleAdmin)
	r := newTestRouter(asAuthenticated(admin))

	w := doJSON(r, http.MethodPatch, fmt.Sprintf("/users/%d/role", admin.ID), gin.H{"role": "sales"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "your own role")
}

func TestUpdateUserRoleRejectsInvalidRole(t *testing.T) {
	testDB := setupHandlerDB(t)

	admin := seedHandlerUser(t, testDB, "admin", models.RoleAdmin)
	target := seedHandlerUser(t, testDB, "target", models.RoleSales)
	r := newTestRouter(asAuthenticated(admin))

	w := doJSON(r, http.MethodPatch, fmt.Sprintf("/users/%d/role", target.ID), gin.H{"role": "superuser"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestUpdateUserRoleKeepsLastAdmin(t *testing.T) {
	testDB := setupHandlerDB(t)

	only := seedHandlerUser(t, testDB, "only", models.RoleAdmin)

	// Acting identity is an admin whose row no longer exists; the sole admin
	// left in the table must not be demotable.
	r := newTestRouter(types.AuthenticatedUser{ID: only.ID + 100, Role: models.RoleAdmin})

	w := doJSON(r, http.MethodPatch, fmt.Sprintf("/users/%d/role", only.ID), gin.H{"role": "manager"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "last administrator")

	var unchanged models.User
	require.NoError(t, testDB.First(&unchanged, only.ID).Error)
	assert.Equal(t, models.RoleAdmin, unchanged.Role)
}

func TestToggleUserActive(t *testing.T) {
	testDB := setupHandlerDB(t)

	admin := seedHandlerUser(t, testDB, "admin", models.RoleAdmin)
	rep := seedHandlerUser(t, testDB, "rep", models.RoleSales)
	r := newTestRouter(asAuthenticated(admin))

	w := doJSON(r, http.MethodPatch, fmt.Sprintf("/users/%d/active", rep.ID), gin.H{"is_active": false})
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.User
	require.NoError(t, testDB.First(&updated, rep.ID).Error)
	assert.False(t, updated.IsActive)

	w = doJSON(r, http.MethodPatch, fmt.Sprintf("/users/%d/active", admin.ID), gin.H{"is_active": false})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "deactivate yourself")
}

func TestGetCompanyOwnership(t *testing.T) {
	testDB := setupHandlerDB(t)

	owner := seedHandlerUser(t, testDB, "owner", models.RoleSales)
	intruder := seedHandlerUser(t, testDB, "intruder", models.RoleSales)
	boss := seedHandlerUser(t, testDB, "boss", models.RoleManager)

	ownerID := owner.ID
	company := models.Company{Name: "Acme", OwnerID: &ownerID}
	require.NoError(t, testDB.Create(&company).Error)

	path := fmt.Sprintf("/companies/%d", company.ID)

	w := doJSON(newTestRouter(asAuthenticated(owner)), http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(newTestRouter(asAuthenticated(intruder)), http.MethodGet, path, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(newTestRouter(asAuthenticated(boss)), http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Deleting someone else's record is denied the same way.
	w = doJSON(newTestRouter(asAuthenticated(intruder)), http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListUsersFilters(t *testing.T) {
	testDB := setupHandlerDB(t)

	admin := seedHandlerUser(t, testDB, "admin", models.RoleAdmin)
	seedHandlerUser(t, testDB, "alice", models.RoleSales)
	seedHandlerUser(t, testDB, "bob", models.RoleSales)

	r := newTestRouter(asAuthenticated(admin))

	w := doJSON(r, http.MethodGet, "/users?role=sales", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		Items []types.UserResponse `json:"items"`
		Total int64                `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, int64(2), payload.Total)
	assert.Len(t, payload.Items, 2)

	w = doJSON(r, http.MethodGet, "/users?role=wizard", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(r, http.MethodGet, "/users?search=ali", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, int64(1), payload.Total)
}
