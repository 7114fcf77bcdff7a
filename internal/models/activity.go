package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActivityTypeAudit marks timeline entries imported from Startup Radar.
// Audit entries are deduplicated by (company_id, type, subject) because the
// remote analyses carry no stable external id.
const ActivityTypeAudit = "audit"

type Activity struct {
	gorm.Model

	Type     string `gorm:"not null;index"` // email, call, meeting, note, linkedin, audit
	Subject  string
	Content  string
	Metadata datatypes.JSONMap `gorm:"column:metadata;type:jsonb"`

	ContactID *uint `gorm:"index"`
	CompanyID *uint `gorm:"index"`
	DealID    *uint `gorm:"index"`
	UserID    uint  `gorm:"not null;index"`

	// Relationships
	Contact *Contact `gorm:"foreignKey:ContactID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Company *Company `gorm:"foreignKey:CompanyID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Deal    *Deal    `gorm:"foreignKey:DealID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	User    User     `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
