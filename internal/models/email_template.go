package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EmailTemplate struct {
	gorm.Model

	Name      string `gorm:"not null;index"`
	Subject   string `gorm:"not null"`
	Body      string `gorm:"not null"`
	Variables datatypes.JSON `gorm:"type:jsonb"`

	OwnerID uint `gorm:"not null;index"`

	// Relationships
	Owner User `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
