package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sherryseats/orders-backend/pkg/calendar"
	"github.com/sherryseats/orders-backend/pkg/db/models"
	pkgerrors "github.com/sherryseats/orders-backend/pkg/errors"
	"github.com/sherryseats/orders-backend/pkg/logger"
)

// ServedCities are the Michigan communities with scheduled deliveries.
var ServedCities = []string{
	"Metamora", "Davison", "Lapeer", "Imlay City", "Capac",
	"Armada", "Waterford", "Clarkston", "Oxford", "Lake Orion", "Auburn Hills",
}

type queryBounder interface {
	Bound(ctx context.Context) (context.Context, context.CancelFunc)
}

// Input carries the editable fields of an event.
type Input struct {
	Title            string
	Description      *string
	EventDate        *time.Time
	Location         *string
	GoogleCalendarID *string
}

type Service interface {
	List(ctx context.Context) ([]models.Event, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Event, error)
	Create(ctx context.Context, input Input) (*models.Event, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*models.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpcomingInCity(ctx context.Context, city string, now time.Time) ([]models.Event, error)
	CalendarEvents(ctx context.Context) []calendar.Event
	SyncCalendar(ctx context.Context) (int, error)
}

type service struct {
	repo   Repository
	bound  queryBounder
	source calendar.Source
	logg   *logger.Logger
}

// NewService wires event management. source may be nil when no calendar is configured.
func NewService(repo Repository, bound queryBounder, source calendar.Source, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("events repository required")
	}
	if bound == nil {
		return nil, fmt.Errorf("query bounder required")
	}
	return &service{repo: repo, bound: bound, source: source, logg: logg}, nil
}

func (s *service) List(ctx context.Context) ([]models.Event, error) {
	ctx, cancel := s.bound.Bound(ctx)
	defer cancel()
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	ctx, cancel := s.bound.Bound(ctx)
	defer cancel()
	return s.repo.FindByID(ctx, id)
}

func (s *service) Create(ctx context.Context, input Input) (*models.Event, error) {
	if err := validate(input); err != nil {
		return nil, err
	}
	ctx, cancel := s.bound.Bound(ctx)
	defer cancel()

	event := fromInput(uuid.New(), input)
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*models.Event, error) {
	if err := validate(input); err != nil {
		return nil, err
	}
	ctx, cancel := s.bound.Bound(ctx)
	defer cancel()

	if err := s.repo.Update(ctx, fromInput(id, input)); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := s.bound.Bound(ctx)
	defer cancel()
	return s.repo.Delete(ctx, id)
}

func (s *service) UpcomingInCity(ctx context.Context, city string, now time.Time) ([]models.Event, error) {
	if strings.TrimSpace(city) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "city is required")
	}
	ctx, cancel := s.bound.Bound(ctx)
	defer cancel()
	return s.repo.UpcomingInCity(ctx, city, now)
}

// CalendarEvents never fails: an unreachable or unconfigured calendar reads as empty.
func (s *service) CalendarEvents(ctx context.Context) []calendar.Event {
	if s.source == nil {
		return []calendar.Event{}
	}
	items, err := s.source.UpcomingEvents(ctx)
	if err != nil {
		if s.logg != nil && !errors.Is(err, calendar.ErrNotConfigured) {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "calendar unavailable; returning no events")
		}
		return []calendar.Event{}
	}
	return items
}

// SyncCalendar mirrors upcoming calendar entries into events keyed by their
// calendar id and returns how many were written.
func (s *service) SyncCalendar(ctx context.Context) (int, error) {
	if s.source == nil {
		return 0, nil
	}
	items, err := s.source.UpcomingEvents(ctx)
	if err != nil {
		if errors.Is(err, calendar.ErrNotConfigured) {
			return 0, nil
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch calendar events")
	}

	written := 0
	for _, item := range items {
		if strings.TrimSpace(item.ID) == "" {
			continue
		}
		calID := item.ID
		start := item.Start.UTC()
		event := &models.Event{
			Title:            item.Title,
			Description:      optional(item.Description),
			EventDate:        &start,
			Location:         optional(item.Location),
			GoogleCalendarID: &calID,
		}
		opCtx, cancel := s.bound.Bound(ctx)
		err := s.repo.UpsertByCalendarID(opCtx, event)
		cancel()
		if err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func validate(input Input) error {
	if strings.TrimSpace(input.Title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "event title is required").
			WithDetails(map[string]any{"field": "title"})
	}
	return nil
}

func fromInput(id uuid.UUID, input Input) *models.Event {
	event := &models.Event{
		ID:               id,
		Title:            strings.TrimSpace(input.Title),
		Description:      input.Description,
		Location:         input.Location,
		GoogleCalendarID: input.GoogleCalendarID,
	}
	if input.EventDate != nil {
		at := input.EventDate.UTC()
		event.EventDate = &at
	}
	return event
}

func optional(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}
