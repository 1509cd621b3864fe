package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is a delivery occasion that orders may be grouped under.
type Event struct {
	ID               uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Title            string     `gorm:"column:title;not null"`
	Description      *string    `gorm:"column:description"`
	EventDate        *time.Time `gorm:"column:event_date"`
	Location         *string    `gorm:"column:location"`
	GoogleCalendarID *string    `gorm:"column:google_calendar_id;uniqueIndex"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Event) TableName() string { return "events" }
