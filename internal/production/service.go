// Package production turns committed future demand and on-hand stock into a
// list of what still has to be made.
package production

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/sherryseats/orders-backend/pkg/types"
)

// Line is one product in a production plan.
type Line struct {
	ProductName  string
	TotalNeeded  int
	CurrentStock int
	NeedToMake   int
	EventName    *string
}

type queryBounder interface {
	Bound(ctx context.Context) (context.Context, context.CancelFunc)
}

// PlanRecorder observes plan runs. metrics.OrderMetrics satisfies it.
type PlanRecorder interface {
	ObservePlan(scope string, duration time.Duration, rows int)
}

type Service interface {
	Plan(ctx context.Context, now time.Time, eventID *uuid.UUID) ([]Line, error)
	UnmatchedProducts(ctx context.Context, now time.Time) ([]string, error)
}

type service struct {
	repo     Repository
	bound    queryBounder
	loc      *time.Location
	recorder PlanRecorder
}

// NewService builds the engine. loc decides which calendar day "now" falls on.
func NewService(repo Repository, bound queryBounder, loc *time.Location, recorder PlanRecorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("production repository required")
	}
	if bound == nil {
		return nil, fmt.Errorf("query bounder required")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &service{repo: repo, bound: bound, loc: loc, recorder: recorder}, nil
}

func (s *service) today(now time.Time) types.Date {
	return types.DateOf(now.In(s.loc))
}

// Plan reports every product whose pending demand from today onward exceeds
// stock, largest shortfall first.
func (s *service) Plan(ctx context.Context, now time.Time, eventID *uuid.UUID) ([]Line, error) {
	started := time.Now()
	ctx, cancel := s.bound.Bound(ctx)
	defer cancel()

	var eventName *string
	if eventID != nil {
		title, err := s.repo.EventTitle(ctx, *eventID)
		if err != nil {
			return nil, err
		}
		eventName = &title
	}

	demand, err := s.repo.PendingDemand(ctx, s.today(now), eventID)
	if err != nil {
		return nil, err
	}
	totals, names := sumByProduct(demand)
	stock, err := s.repo.StockByName(ctx, names)
	if err != nil {
		return nil, err
	}

	lines := shortfall(totals, names, stock, eventName)
	if s.recorder != nil {
		scope := "all"
		if eventID != nil {
			scope = "event"
		}
		s.recorder.ObservePlan(scope, time.Since(started), len(lines))
	}
	return lines, nil
}

// UnmatchedProducts lists product names in live demand with no inventory row
// of exactly the same name. Each one is planned as if stock were zero.
func (s *service) UnmatchedProducts(ctx context.Context, now time.Time) ([]string, error) {
	ctx, cancel := s.bound.Bound(ctx)
	defer cancel()

	demand, err := s.repo.PendingDemand(ctx, s.today(now), nil)
	if err != nil {
		return nil, err
	}
	_, names := sumByProduct(demand)
	stock, err := s.repo.StockByName(ctx, names)
	if err != nil {
		return nil, err
	}
	missing := []string{}
	for _, name := range names {
		if _, ok := stock[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

func sumByProduct(rows []DemandRow) (map[string]int, []string) {
	totals := make(map[string]int)
	names := []string{}
	for _, row := range rows {
		if _, ok := totals[row.ProductName]; !ok {
			names = append(names, row.ProductName)
		}
		totals[row.ProductName] += row.Quantity
	}
	sort.Strings(names)
	return totals, names
}

func shortfall(totals map[string]int, names []string, stock map[string]int, eventName *string) []Line {
	lines := []Line{}
	for _, name := range names {
		current := stock[name]
		need := totals[name] - current
		if need <= 0 {
			continue
		}
		lines = append(lines, Line{
			ProductName:  name,
			TotalNeeded:  totals[name],
			CurrentStock: current,
			NeedToMake:   need,
			EventName:    eventName,
		})
	}
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].NeedToMake != lines[j].NeedToMake {
			return lines[i].NeedToMake > lines[j].NeedToMake
		}
		return lines[i].ProductName < lines[j].ProductName
	})
	return lines
}
