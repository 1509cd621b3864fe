package customers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sherryseats/orders-backend/pkg/db"
	"github.com/sherryseats/orders-backend/pkg/db/models"
	pkgerrors "github.com/sherryseats/orders-backend/pkg/errors"
)

const (
	phoneConstraint = "customers_phone_key"
	emailConstraint = "customers_email_key"
)

// upsertSQL replaces every column except id, phone and created_at in one
// statement so concurrent submissions for one phone converge on a single row.
const upsertSQL = `
INSERT INTO customers (
  id, name, phone, email, heard_from, referral_names, referral_emails,
  email_optin, sms_optin, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (phone) DO UPDATE SET
  name = EXCLUDED.name,
  email = EXCLUDED.email,
  heard_from = EXCLUDED.heard_from,
  referral_names = EXCLUDED.referral_names,
  referral_emails = EXCLUDED.referral_emails,
  email_optin = EXCLUDED.email_optin,
  sms_optin = EXCLUDED.sms_optin,
  updated_at = EXCLUDED.updated_at
RETURNING id`

type repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Upsert(ctx context.Context, input Input) (*models.Customer, error) {
	now := time.Now().UTC()
	conn := r.db.WithContext(ctx)

	var id uuid.UUID
	row := conn.Raw(upsertSQL,
		uuid.New(),
		strings.TrimSpace(input.Name),
		strings.TrimSpace(input.Phone),
		strings.TrimSpace(input.Email),
		input.HeardFrom,
		input.ReferralNames,
		input.ReferralEmails,
		input.EmailOptIn,
		input.SMSOptIn,
		now,
		now,
	).Row()
	if err := row.Scan(&id); err != nil {
		if db.IsUniqueViolation(err, emailConstraint) || db.IsUniqueViolation(err, "customers.email") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email already belongs to another customer").
				WithDetails(map[string]any{"field": "customer.email"})
		}
		return nil, db.Classify(err, "upsert customer")
	}

	var customer models.Customer
	if err := conn.Where("id = ?", id).First(&customer).Error; err != nil {
		return nil, db.Classify(err, "load customer")
	}
	return &customer, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, db.Classify(err, "find customer")
	}
	return &customer, nil
}

func (r *repository) List(ctx context.Context) ([]models.Customer, error) {
	var rows []models.Customer
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, db.Classify(err, "list customers")
	}
	return rows, nil
}

func (r *repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Customer, error) {
	var rows []models.Customer
	err := r.db.WithContext(ctx).
		Where("id IN (?)", r.db.Model(&models.Order{}).Select("customer_id").Where("event_id = ?", eventID)).
		Order("created_at DESC").
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, db.Classify(err, "list customers by event")
	}
	return rows, nil
}

type customerEventRow struct {
	CustomerID uuid.UUID
	Title      string
}

// EventTitlesByCustomer maps each customer to the distinct titles of events
// they ordered for. Orders with a dangling event reference are skipped.
func (r *repository) EventTitlesByCustomer(ctx context.Context) (map[uuid.UUID][]string, error) {
	var rows []customerEventRow
	err := r.db.WithContext(ctx).
		Table("orders").
		Select("DISTINCT orders.customer_id AS customer_id, events.title AS title").
		Joins("JOIN events ON events.id = orders.event_id").
		Order("events.title ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, db.Classify(err, "list customer events")
	}
	out := make(map[uuid.UUID][]string, len(rows))
	for _, row := range rows {
		out[row.CustomerID] = append(out[row.CustomerID], row.Title)
	}
	return out, nil
}
