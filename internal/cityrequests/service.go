// Package cityrequests logs visitor requests for delivery to new cities.
package cityrequests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sherryseats/orders-backend/pkg/db"
	"github.com/sherryseats/orders-backend/pkg/db/models"
	"github.com/sherryseats/orders-backend/pkg/enums"
	pkgerrors "github.com/sherryseats/orders-backend/pkg/errors"
)

var emailValidator = validator.New()

type queryBounder interface {
	Bound(ctx context.Context) (context.Context, context.CancelFunc)
}

type Service interface {
	Create(ctx context.Context, city, email string) (*models.CityRequest, error)
	List(ctx context.Context) ([]models.CityRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.CityRequestStatus) (*models.CityRequest, error)
}

type service struct {
	db    *gorm.DB
	bound queryBounder
	now   func() time.Time
}

func NewService(conn *gorm.DB, bound queryBounder) (Service, error) {
	if conn == nil {
		return nil, fmt.Errorf("database connection required")
	}
	if bound == nil {
		return nil, fmt.Errorf("query bounder required")
	}
	return &service{db: conn, bound: bound, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, city, email string) (*models.CityRequest, error) {
	city = strings.TrimSpace(city)
	email = strings.TrimSpace(email)
	if city == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "city is required").WithDetails(map[string]any{"field": "city"})
	}
	if err := emailValidator.Var(email, "required,email"); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required").WithDetails(map[string]any{"field": "email"})
	}

	ctx, cancel := s.bound.Bound(ctx)
	defer cancel()

	row := &models.CityRequest{
		ID:          uuid.New(),
		City:        city,
		Email:       email,
		Status:      enums.CityRequestStatusPending,
		RequestDate: s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, db.Classify(err, "create city request")
	}
	return row, nil
}

func (s *service) List(ctx context.Context) ([]models.CityRequest, error) {
	ctx, cancel := s.bound.Bound(ctx)
	defer cancel()

	var rows []models.CityRequest
	if err := s.db.WithContext(ctx).Order("request_date DESC").Find(&rows).Error; err != nil {
		return nil, db.Classify(err, "list city requests")
	}
	return rows, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.CityRequestStatus) (*models.CityRequest, error) {
	if !status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown city request status %q", status).
			WithDetails(map[string]any{"field": "status"})
	}
	ctx, cancel := s.bound.Bound(ctx)
	defer cancel()

	result := s.db.WithContext(ctx).Model(&models.CityRequest{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return nil, db.Classify(result.Error, "update city request")
	}
	if result.RowsAffected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "city request not found")
	}
	var row models.CityRequest
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "city request not found")
		}
		return nil, db.Classify(err, "load city request")
	}
	return &row, nil
}
