package service

import (
	"context"

	"embassy-inventory/internal/model"
	"embassy-inventory/internal/repository"

	"github.com/shopspring/decimal"
)

// Summary is the at-a-glance state of the catalog.
type Summary struct {
	Items             int             `json:"items"`
	TotalQty          int             `json:"total_qty"`
	TotalValuation    decimal.Decimal `json:"total_valuation"`
	LowStockCount     int             `json:"low_stock_count"`
	LowStockThreshold int             `json:"low_stock_threshold"`
}

type DashboardService interface {
	Summary(ctx context.Context) (*Summary, error)
}

type dashboardService struct {
	productRepo       repository.ProductRepository
	lowStockThreshold int
}

func NewDashboardService(pRepo repository.ProductRepository, lowStockThreshold int) DashboardService {
	return &dashboardService{productRepo: pRepo, lowStockThreshold: lowStockThreshold}
}

// Summary counts products below the threshold as low stock.
func (s *dashboardService) Summary(ctx context.Context) (*Summary, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		Items:             len(products),
		TotalValuation:    decimal.Zero,
		LowStockThreshold: s.lowStockThreshold,
	}
	for _, p := range products {
		sum.TotalQty += p.Qty
		sum.TotalValuation = sum.TotalValuation.Add(p.TotalPrice())
		if p.Qty < s.lowStockThreshold {
			sum.LowStockCount++
		}
	}
	sum.TotalValuation = model.RoundMoney(sum.TotalValuation)
	return sum, nil
}
