package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sherryseats/orders-backend/pkg/enums"
)

// CityRequest records a visitor asking for delivery to a city not yet served.
type CityRequest struct {
	ID          uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	City        string                  `gorm:"column:city;not null"`
	Email       string                  `gorm:"column:email;not null"`
	Status      enums.CityRequestStatus `gorm:"column:status;type:city_request_status;not null;default:'pending'"`
	RequestDate time.Time               `gorm:"column:request_date;not null"`
}

func (CityRequest) TableName() string { return "city_requests" }
