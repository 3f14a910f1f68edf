package service

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"embassy-inventory/internal/apperr"
	"embassy-inventory/internal/metrics"
	"embassy-inventory/internal/model"
	"embassy-inventory/internal/repository"
	"embassy-inventory/pkg/database"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2024, 3, 1, 9, 30, 15, 0, time.Local)

// storeSuite gives each test a freshly migrated store.
type storeSuite struct {
	suite.Suite
	ctx      context.Context
	db       *gorm.DB
	products repository.ProductRepository
	outflow  repository.OutflowRepository
	metrics  *metrics.Metrics
}

func (s *storeSuite) SetupTest() {
	s.ctx = context.Background()
	db, err := database.Connect(filepath.Join(s.T().TempDir(), "embassy.db"), nil)
	s.Require().NoError(err)
	s.Require().NoError(database.Migrate(s.ctx, db, zap.NewNop()))
	s.db = db
	s.products = repository.NewProductRepo(db)
	s.outflow = repository.NewOutflowRepo(db)
	s.metrics = metrics.New()
}

func (s *storeSuite) TearDownTest() {
	s.Require().NoError(database.Close(s.db))
}

func (s *storeSuite) inventory() *inventoryService {
	svc := NewInventoryService(s.db, s.products, s.outflow, zap.NewNop(), s.metrics).(*inventoryService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func dec(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func widgetRequest() CreateProductRequest {
	return CreateProductRequest{
		SKU:      "A1",
		Name:     "Widget",
		Price:    dec("9.999"),
		Qty:      10,
		Unit:     model.UnitEach,
		Category: model.CategoryOther,
	}
}

type failingOutflowRepo struct {
	repository.OutflowRepository
}

func (f failingOutflowRepo) WithTx(*gorm.DB) repository.OutflowRepository {
	return f
}

func (f failingOutflowRepo) Add(context.Context, *model.OutflowEntry) error {
	return apperr.Storage("append outflow", errors.New("disk full"))
}
