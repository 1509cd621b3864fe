package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sherryseats/orders-backend/pkg/db"
	"github.com/sherryseats/orders-backend/pkg/db/models"
	pkgerrors "github.com/sherryseats/orders-backend/pkg/errors"
)

const calendarIDConstraint = "events_google_calendar_id_key"

type Repository interface {
	List(ctx context.Context) ([]models.Event, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpcomingInCity(ctx context.Context, city string, from time.Time) ([]models.Event, error)
	UpsertByCalendarID(ctx context.Context, event *models.Event) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) List(ctx context.Context) ([]models.Event, error) {
	var rows []models.Event
	if err := r.db.WithContext(ctx).Order("event_date DESC").Order("title ASC").Find(&rows).Error; err != nil {
		return nil, db.Classify(err, "list events")
	}
	return rows, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
		}
		return nil, db.Classify(err, "find event")
	}
	return &event, nil
}

func (r *repository) Create(ctx context.Context, event *models.Event) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return classifyWrite(err, "create event")
	}
	return nil
}

func (r *repository) Update(ctx context.Context, event *models.Event) error {
	result := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", event.ID).
		Updates(map[string]any{
			"title":              event.Title,
			"description":        event.Description,
			"event_date":         event.EventDate,
			"location":           event.Location,
			"google_calendar_id": event.GoogleCalendarID,
			"updated_at":         time.Now().UTC(),
		})
	if result.Error != nil {
		return classifyWrite(result.Error, "update event")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
	}
	return nil
}

// Delete removes the event only. Orders keep their event_id.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Event{})
	if result.Error != nil {
		return db.Classify(result.Error, "delete event")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
	}
	return nil
}

// UpcomingInCity matches the city anywhere in the location, ignoring case.
func (r *repository) UpcomingInCity(ctx context.Context, city string, from time.Time) ([]models.Event, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(city)) + "%"
	var rows []models.Event
	err := r.db.WithContext(ctx).
		Where("LOWER(location) LIKE ?", pattern).
		Where("event_date >= ?", from.UTC()).
		Order("event_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, db.Classify(err, "list events by city")
	}
	return rows, nil
}

// UpsertByCalendarID inserts or refreshes an event mirrored from the calendar.
func (r *repository) UpsertByCalendarID(ctx context.Context, event *models.Event) error {
	if event.GoogleCalendarID == nil || *event.GoogleCalendarID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "google calendar id is required")
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "google_calendar_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "description", "event_date", "location", "updated_at"}),
		}).
		Create(event).Error
	if err != nil {
		return classifyWrite(err, "upsert calendar event")
	}
	return nil
}

func classifyWrite(err error, op string) error {
	if db.IsUniqueViolation(err, calendarIDConstraint) || db.IsUniqueViolation(err, "events.google_calendar_id") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "google calendar id already linked to another event").
			WithDetails(map[string]any{"field": "google_calendar_id"})
	}
	return db.Classify(err, op)
}
