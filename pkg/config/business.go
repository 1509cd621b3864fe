package config

import (
	"fmt"
	"strings"
	"time"
)

// BusinessConfig decides which calendar day counts as "today" for planning.
type BusinessConfig struct {
	Timezone string `envconfig:"SHERRYS_BUSINESS_TIMEZONE" default:"America/Detroit"`
}

// Location resolves the configured IANA zone; blank means UTC.
func (b BusinessConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(b.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%s=%q: %w", EnvBusinessTimezone, name, err)
	}
	return loc, nil
}

type CalendarConfig struct {
	APIKey     string        `envconfig:"SHERRYS_GOOGLE_CALENDAR_API_KEY"`
	CalendarID string        `envconfig:"SHERRYS_GOOGLE_CALENDAR_ID"`
	MaxResults int64         `envconfig:"SHERRYS_GOOGLE_CALENDAR_MAX_RESULTS" default:"50"`
	Timeout    time.Duration `envconfig:"SHERRYS_GOOGLE_CALENDAR_TIMEOUT" default:"10s"`
}

// Enabled is false until both the key and the calendar id are set.
func (c CalendarConfig) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != "" && strings.TrimSpace(c.CalendarID) != ""
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SHERRYS_GCP_PROJECT_ID"`
	ApplicationCredentials string `envconfig:"SHERRYS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic string `envconfig:"SHERRYS_PUBSUB_ORDERS_TOPIC" default:"sherrys-order-events"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"SHERRYS_IDEMPOTENCY_TTL" default:"24h"`
}

// RateLimitConfig caps anonymous writes per client IP. A zero limit disables the check.
type RateLimitConfig struct {
	Window           time.Duration `envconfig:"SHERRYS_RATE_LIMIT_WINDOW" default:"1m"`
	OrderIntakeLimit int           `envconfig:"SHERRYS_RATE_LIMIT_ORDER_INTAKE" default:"20"`
	CityRequestLimit int           `envconfig:"SHERRYS_RATE_LIMIT_CITY_REQUESTS" default:"10"`
}
