package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Pipeline stages, in kanban order.
var DealStages = []string{"new", "contacted", "meeting", "proposal", "negotiation", "won", "lost"}

type Deal struct {
	gorm.Model

	Title       string `gorm:"not null"`
	Description string

	Stage          string `gorm:"not null;default:new;index"`
	StageChangedAt *time.Time

	Amount      *float64
	Currency    string `gorm:"not null;default:EUR"`
	Probability *int   // 0-100

	ExpectedCloseDate *time.Time
	ActualCloseDate   *time.Time

	LossReason string
	Priority   string `gorm:"not null;default:medium"` // low, medium, high, urgent
	Position   int    `gorm:"not null;default:0"`

	CustomFields datatypes.JSONMap `gorm:"type:jsonb"`

	CompanyID *uint `gorm:"index"`
	ContactID *uint `gorm:"index"`
	OwnerID   *uint `gorm:"index"`

	// Relationships
	Company    *Company   `gorm:"foreignKey:CompanyID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Contact    *Contact   `gorm:"foreignKey:ContactID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Owner      *User      `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Activities []Activity `gorm:"foreignKey:DealID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}

func ValidDealStage(stage string) bool {
	for _, s := range DealStages {
		if s == stage {
			return true
		}
	}
	return false
}
