package cron

import (
	"context"
	"fmt"

	"github.com/sherryseats/orders-backend/pkg/db/models"
	"github.com/sherryseats/orders-backend/pkg/logger"
)

type stockReader interface {
	BelowMinimum(ctx context.Context) ([]models.InventoryItem, error)
}

type LowStockJobParams struct {
	Logger    *logger.Logger
	Inventory stockReader
}

func NewLowStockJob(params LowStockJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	return &lowStockJob{logg: params.Logger, inventory: params.Inventory}, nil
}

type lowStockJob struct {
	logg      *logger.Logger
	inventory stockReader
}

func (j *lowStockJob) Name() string { return "low_stock_report" }

// Run logs one warning per item under its minimum stock level.
func (j *lowStockJob) Run(ctx context.Context) error {
	items, err := j.inventory.BelowMinimum(ctx)
	if err != nil {
		return fmt.Errorf("low stock report: %w", err)
	}
	for _, item := range items {
		itemCtx := j.logg.WithFields(ctx, map[string]any{
			"item_name":     item.ItemName,
			"current_stock": item.CurrentStock,
			"min_stock":     item.MinStock,
		})
		j.logg.Warn(itemCtx, "inventory below minimum")
	}
	j.logg.Info(j.logg.WithField(ctx, "items_below_minimum", len(items)), "low stock report complete")
	return nil
}
