package models

import (
	"time"

	"gorm.io/gorm"
)

type Task struct {
	gorm.Model

	Title       string `gorm:"not null"`
	Description string
	Type        string `gorm:"not null;default:todo"`   // todo, call, email, meeting
	Priority    string `gorm:"not null;default:medium"` // low, medium, high, urgent
	IsCompleted bool   `gorm:"not null;default:false"`
	DueDate     *time.Time
	CompletedAt *time.Time

	// Owner column for tasks is assigned_to, not owner_id.
	AssignedTo *uint `gorm:"column:assigned_to;index"`
	ContactID  *uint
	DealID     *uint

	// Relationships
	Assignee *User    `gorm:"foreignKey:AssignedTo;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Contact  *Contact `gorm:"foreignKey:ContactID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Deal     *Deal    `gorm:"foreignKey:DealID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
