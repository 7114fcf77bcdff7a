package models

import "gorm.io/gorm"

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleSales   = "sales"
)

type User struct {
	gorm.Model

	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null;default:sales"`
	IsActive     bool   `gorm:"not null;default:true"`

	// Relationships
	OwnedCompanies []Company       `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	OwnedContacts  []Contact       `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	OwnedDeals     []Deal          `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Tasks          []Task          `gorm:"foreignKey:AssignedTo;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Activities     []Activity      `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	EmailTemplates []EmailTemplate `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsManager reports whether the user bypasses ownership scoping.
func (u *User) IsManager() bool {
	return u.Role == RoleAdmin || u.Role == RoleManager
}

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleManager || role == RoleSales
}
