package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Contact struct {
	gorm.Model

	CompanyID *uint `gorm:"index"`

	FirstName   string `gorm:"not null"`
	LastName    string `gorm:"not null"`
	Email       string `gorm:"index"`
	EmailStatus string // valid, invalid, risky, unknown
	Phone       string

	Title           string
	Department      string
	IsDecisionMaker bool `gorm:"not null;default:false"`
	LinkedinURL     string

	Status          string `gorm:"not null;default:new;index"` // new, contacted, qualified, unqualified, nurturing
	Source          string
	LastContactedAt *time.Time

	CustomFields datatypes.JSONMap `gorm:"type:jsonb"`

	OwnerID        *uint   `gorm:"index"`
	StartupRadarID *string `gorm:"uniqueIndex"`

	// Relationships
	Company    *Company   `gorm:"foreignKey:CompanyID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Owner      *User      `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Deals      []Deal     `gorm:"foreignKey:ContactID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Activities []Activity `gorm:"foreignKey:ContactID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
