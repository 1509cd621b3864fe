package customers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sherryseats/orders-backend/pkg/db/models"
)

// Input is the customer block of an order submission.
type Input struct {
	Name           string
	Phone          string
	Email          string
	HeardFrom      *string
	ReferralNames  *string
	ReferralEmails *string
	EmailOptIn     bool
	SMSOptIn       bool
}

// Summary is a customer plus the titles of events they ordered for.
type Summary struct {
	models.Customer
	EventsAttended []string
}

// Repository persists customers. Upsert is the only write path.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, input Input) (*models.Customer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	List(ctx context.Context) ([]models.Customer, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Customer, error)
	EventTitlesByCustomer(ctx context.Context) (map[uuid.UUID][]string, error)
}
