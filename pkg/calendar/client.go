// Package calendar reads upcoming public events from the shared Google Calendar.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/sherryseats/orders-backend/pkg/config"
	"github.com/sherryseats/orders-backend/pkg/logger"
)

const (
	untitledEvent     = "Untitled Event"
	defaultMaxResults = 50
	defaultTimeout    = 10 * time.Second
)

// ErrNotConfigured is returned when no API key or calendar id is set.
var ErrNotConfigured = errors.New("google calendar is not configured")

// Event is one upcoming calendar entry.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	AllDay      bool      `json:"all_day"`
	Location    string    `json:"location"`
}

// Source lists upcoming events. Implemented by Client and by test fakes.
type Source interface {
	UpcomingEvents(ctx context.Context) ([]Event, error)
}

type Client struct {
	svc        *gcal.Service
	calendarID string
	maxResults int64
	timeout    time.Duration
	loc        *time.Location
	now        func() time.Time
}

// NewClient builds a calendar reader. When the calendar is not configured the
// returned client answers every call with ErrNotConfigured.
func NewClient(ctx context.Context, cfg config.CalendarConfig, loc *time.Location, logg *logger.Logger, extra ...option.ClientOption) (*Client, error) {
	c := &Client{
		calendarID: strings.TrimSpace(cfg.CalendarID),
		maxResults: cfg.MaxResults,
		timeout:    cfg.Timeout,
		loc:        loc,
		now:        time.Now,
	}
	if c.maxResults <= 0 {
		c.maxResults = defaultMaxResults
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.loc == nil {
		c.loc = time.UTC
	}
	if !cfg.Enabled() {
		if logg != nil {
			logg.Warn(ctx, "google calendar disabled; calendar endpoints will return no events")
		}
		return c, nil
	}

	opts := append([]option.ClientOption{option.WithAPIKey(strings.TrimSpace(cfg.APIKey))}, extra...)
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}
	c.svc = svc
	return c, nil
}

// UpcomingEvents returns events starting from now, ordered by start time.
func (c *Client) UpcomingEvents(ctx context.Context) ([]Event, error) {
	if c == nil || c.svc == nil {
		return nil, ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.svc.Events.List(c.calendarID).
		TimeMin(c.now().UTC().Format(time.RFC3339)).
		MaxResults(c.maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list calendar events: %w", err)
	}
	return convertEvents(resp.Items, c.loc), nil
}

func convertEvents(items []*gcal.Event, loc *time.Location) []Event {
	events := make([]Event, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		start, allDay, ok := parseStart(item.Start, loc)
		if !ok {
			continue
		}
		title := strings.TrimSpace(item.Summary)
		if title == "" {
			title = untitledEvent
		}
		events = append(events, Event{
			ID:          item.Id,
			Title:       title,
			Description: item.Description,
			Start:       start,
			AllDay:      allDay,
			Location:    item.Location,
		})
	}
	return events
}

// parseStart prefers the timed start and falls back to the all-day date.
func parseStart(start *gcal.EventDateTime, loc *time.Location) (time.Time, bool, bool) {
	if start == nil {
		return time.Time{}, false, false
	}
	if start.DateTime != "" {
		t, err := time.Parse(time.RFC3339, start.DateTime)
		if err == nil {
			return t, false, true
		}
	}
	if start.Date != "" {
		t, err := time.ParseInLocation("2006-01-02", start.Date, loc)
		if err == nil {
			return t, true, true
		}
	}
	return time.Time{}, false, false
}
