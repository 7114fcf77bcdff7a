package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Company struct {
	gorm.Model

	Name        string `gorm:"not null;index"`
	Domain      string
	Website     string
	Description string
	Industry    string `gorm:"index"`
	SizeRange   string // 1-10, 11-50, 51-200, 201-500, 500+
	Country     string
	City        string
	Phone       string
	LinkedinURL string

	CustomFields datatypes.JSONMap `gorm:"type:jsonb"`

	OwnerID *uint `gorm:"index"`

	// External reference used as the sync idempotency key. Investor-sourced
	// rows carry an "inv:" prefix so they never collide with startups sharing
	// the same upstream numeric id.
	StartupRadarID *string `gorm:"uniqueIndex"`

	// Relationships
	Owner      *User      `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Contacts   []Contact  `gorm:"foreignKey:CompanyID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Deals      []Deal     `gorm:"foreignKey:CompanyID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Activities []Activity `gorm:"foreignKey:CompanyID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
