package rbac

import (
	"errors"

	"github.com/hervefr78/fga-crm/internal/types"
	"gorm.io/gorm"
)

// ErrAccessDenied is returned when a sales user touches a record they do not
// own. Handlers translate it to 403.
var ErrAccessDenied = errors.New("access to this resource is not allowed")

// OwnerField names the column holding the controlling user of an entity.
// Most entities use owner_id; tasks use assigned_to and activities user_id.
const (
	OwnerFieldDefault    = "owner_id"
	OwnerFieldAssignedTo = "assigned_to"
	OwnerFieldUserID     = "user_id"
)

// ScopeQuery restricts a list query to the requesting user's own records.
// Admin and manager see everything; for sales a conjunctive predicate on the
// given owner column is added, so pre-existing filters on the query survive.
func ScopeQuery(query *gorm.DB, user types.AuthenticatedUser, ownerField string) *gorm.DB {
	if user.IsManager() {
		return query
	}
	return query.Where(ownerField+" = ?", user.ID)
}

// CheckAccess verifies that the user may touch a single entity, given the
// value of its owner column. Admin and manager always pass. For sales the
// owner must equal the user's id; a record owned by nobody is inaccessible.
func CheckAccess(ownerID *uint, user types.AuthenticatedUser) error {
	if user.IsManager() {
		return nil
	}
	if ownerID == nil || *ownerID != user.ID {
		return ErrAccessDenied
	}
	return nil
}
