package service

import (
	"context"
	"strings"
	"time"

	"embassy-inventory/internal/apperr"
	"embassy-inventory/internal/metrics"
	"embassy-inventory/internal/model"
	"embassy-inventory/internal/repository"

	"go.uber.org/zap"
)

type OutflowService interface {
	LogIssue(ctx context.Context, user string, product model.Product, qty int) (*model.OutflowEntry, error)
	ListSorted(ctx context.Context, sortKey string) ([]model.OutflowEntry, error)
	ListAll(ctx context.Context) ([]model.OutflowEntry, error)
	Backfill(ctx context.Context) (*repository.BackfillReport, error)
}

type outflowService struct {
	outflowRepo repository.OutflowRepository
	log         *zap.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
}

func NewOutflowService(oRepo repository.OutflowRepository, log *zap.Logger, m *metrics.Metrics) OutflowService {
	return &outflowService{
		outflowRepo: oRepo,
		log:         log,
		metrics:     m,
		now:         time.Now,
	}
}

// LogIssue records an issue of qty units, snapshotting the product as it is now.
func (s *outflowService) LogIssue(ctx context.Context, user string, product model.Product, qty int) (*model.OutflowEntry, error) {
	if qty <= 0 {
		return nil, apperr.Validation("qty must be > 0")
	}

	entry := model.NewOutflowEntry(model.NewTimestamp(s.now()), strings.TrimSpace(user), product, qty)
	if err := s.outflowRepo.Add(ctx, &entry); err != nil {
		return nil, err
	}

	s.metrics.LedgerAppends.Inc()
	s.log.Info("outflow logged",
		zap.Int64("id", entry.ID),
		zap.String("sku", entry.SKU),
		zap.Int("qty", entry.Qty),
		zap.String("user", entry.User))
	return &entry, nil
}

func (s *outflowService) ListSorted(ctx context.Context, sortKey string) ([]model.OutflowEntry, error) {
	return s.outflowRepo.List(ctx, model.ParseOutflowSort(sortKey))
}

func (s *outflowService) ListAll(ctx context.Context) ([]model.OutflowEntry, error) {
	return s.outflowRepo.List(ctx, model.DefaultOutflowSort)
}

func (s *outflowService) Backfill(ctx context.Context) (*repository.BackfillReport, error) {
	report, err := s.outflowRepo.Backfill(ctx)
	if err != nil {
		return nil, err
	}

	s.metrics.Backfilled.WithLabelValues("category").Add(float64(report.Category))
	s.metrics.Backfilled.WithLabelValues("price").Add(float64(report.Price))
	s.metrics.Backfilled.WithLabelValues("total_price").Add(float64(report.TotalPrice))
	if report.Total() > 0 {
		s.log.Info("outflow backfilled",
			zap.Int64("category", report.Category),
			zap.Int64("price", report.Price),
			zap.Int64("total_price", report.TotalPrice))
	}
	return report, nil
}
