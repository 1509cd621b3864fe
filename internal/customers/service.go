package customers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type queryBounder interface {
	Bound(ctx context.Context) (context.Context, context.CancelFunc)
}

// Service exposes the read side used by staff screens.
type Service interface {
	List(ctx context.Context) ([]Summary, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]Summary, error)
}

type service struct {
	repo  Repository
	bound queryBounder
}

func NewService(repo Repository, bound queryBounder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	if bound == nil {
		return nil, fmt.Errorf("query bounder required")
	}
	return &service{repo: repo, bound: bound}, nil
}

func (s *service) List(ctx context.Context) ([]Summary, error) {
	ctx, cancel := s.bound.Bound(ctx)
	defer cancel()

	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	titles, err := s.repo.EventTitlesByCustomer(ctx)
	if err != nil {
		return nil, err
	}
	return summarize(rows, titles), nil
}

func (s *service) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]Summary, error) {
	ctx, cancel := s.bound.Bound(ctx)
	defer cancel()

	rows, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	titles, err := s.repo.EventTitlesByCustomer(ctx)
	if err != nil {
		return nil, err
	}
	return summarize(rows, titles), nil
}
