package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/hervefr78/fga-crm/internal/models"
	"github.com/hervefr78/fga-crm/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Every owned kind must scope its list to the requesting sales user and deny
// detail access to records they do not own, while manager-class users see
// everything. One record per kind belongs to the owner; the intruder owns
// nothing.
func TestOwnershipIsolationAcrossKinds(t *testing.T) {
	testDB := setupHandlerDB(t)

	owner := seedHandlerUser(t, testDB, "owner", models.RoleSales)
	intruder := seedHandlerUser(t, testDB, "intruder", models.RoleSales)
	boss := seedHandlerUser(t, testDB, "boss", models.RoleManager)

	ownerID := owner.ID

	kinds := []struct {
		name string
		path string
		seed func(t *testing.T, db *gorm.DB) uint
	}{
		{
			name: "companies",
			path: "/companies",
			seed: func(t *testing.T, db *gorm.DB) uint {
				c := models.Company{Name: "Acme", OwnerID: &ownerID}
				require.NoError(t, db.Create(&c).Error)
				return c.ID
			},
		},
		{
			name: "contacts",
			path: "/contacts",
			seed: func(t *testing.T, db *gorm.DB) uint {
				c := models.Contact{FirstName: "Jane", LastName: "Doe", OwnerID: &ownerID}
				require.NoError(t, db.Create(&c).Error)
				return c.ID
			},
		},
		{
			name: "deals",
			path: "/deals",
			seed: func(t *testing.T, db *gorm.DB) uint {
				d := models.Deal{Title: "Acme expansion", Stage: "new", OwnerID: &ownerID}
				require.NoError(t, db.Create(&d).Error)
				return d.ID
			},
		},
		{
			name: "tasks",
			path: "/tasks",
			seed: func(t *testing.T, db *gorm.DB) uint {
				task := models.Task{Title: "Call Acme", AssignedTo: &ownerID}
				require.NoError(t, db.Create(&task).Error)
				return task.ID
			},
		},
		{
			name: "activities",
			path: "/activities",
			seed: func(t *testing.T, db *gorm.DB) uint {
				a := models.Activity{Type: "note", Subject: "Intro call", UserID: ownerID}
				require.NoError(t, db.Create(&a).Error)
				return a.ID
			},
		},
		{
			name: "email-templates",
			path: "/email-templates",
			seed: func(t *testing.T, db *gorm.DB) uint {
				tpl := models.EmailTemplate{Name: "Intro", Subject: "Hello", Body: "Hi {{first_name}}", OwnerID: ownerID}
				require.NoError(t, db.Create(&tpl).Error)
				return tpl.ID
			},
		},
	}

	listTotal := func(t *testing.T, user types.AuthenticatedUser, path string) int64 {
		t.Helper()
		w := doJSON(newTestRouter(user), http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var payload struct {
			Total int64 `json:"total"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
		return payload.Total
	}

	for _, kind := range kinds {
		kind := kind
		t.Run(kind.name, func(t *testing.T) {
			id := kind.seed(t, testDB)
			detail := fmt.Sprintf("%s/%d", kind.path, id)

			assert.Equal(t, int64(1), listTotal(t, asAuthenticated(owner), kind.path))
			assert.Equal(t, int64(0), listTotal(t, asAuthenticated(intruder), kind.path))
			assert.Equal(t, int64(1), listTotal(t, asAuthenticated(boss), kind.path))

			w := doJSON(newTestRouter(asAuthenticated(owner)), http.MethodGet, detail, nil)
			assert.Equal(t, http.StatusOK, w.Code)

			w = doJSON(newTestRouter(asAuthenticated(intruder)), http.MethodGet, detail, nil)
			assert.Equal(t, http.StatusForbidden, w.Code)

			w = doJSON(newTestRouter(asAuthenticated(intruder)), http.MethodDelete, detail, nil)
			assert.Equal(t, http.StatusForbidden, w.Code)

			w = doJSON(newTestRouter(asAuthenticated(boss)), http.MethodGet, detail, nil)
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}
