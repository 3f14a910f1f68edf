package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"embassy-inventory/internal/apperr"
	"embassy-inventory/internal/metrics"
	"embassy-inventory/internal/model"
	"embassy-inventory/internal/repository"
	"embassy-inventory/pkg/validator"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateProductRequest struct {
	SKU      string           `validate:"required"`
	Name     string           `validate:"required"`
	Price    *decimal.Decimal `validate:"required,gte=0,money"`
	Qty      int              `validate:"gte=0"`
	Unit     model.Unit       `validate:"required,unit"`
	Category model.Category   `validate:"required,category"`
}

type UpdateProductRequest struct {
	SKU      string           `validate:"required"`
	Name     string           `validate:"required"`
	Price    *decimal.Decimal `validate:"required,gte=0,money"`
	Unit     model.Unit       `validate:"required,unit"`
	Category model.Category   `validate:"required,category"`
}

type InventoryService interface {
	CreateProduct(ctx context.Context, req CreateProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, req UpdateProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, sku string) (bool, error)
	FindProduct(ctx context.Context, sku string) (*model.Product, error)
	ListProducts(ctx context.Context, sortKey string) ([]model.Product, error)
	Receive(ctx context.Context, sku string, qty int) (*model.Product, error)
	Issue(ctx context.Context, sku string, qty int) (*model.Product, error)
	IssueAndLog(ctx context.Context, sku string, qty int, user string) (*model.Product, *model.OutflowEntry, error)
}

type inventoryService struct {
	db          *gorm.DB
	productRepo repository.ProductRepository
	outflowRepo repository.OutflowRepository
	log         *zap.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
}

func NewInventoryService(db *gorm.DB, pRepo repository.ProductRepository, oRepo repository.OutflowRepository, log *zap.Logger, m *metrics.Metrics) InventoryService {
	return &inventoryService{
		db:          db,
		productRepo: pRepo,
		outflowRepo: oRepo,
		log:         log,
		metrics:     m,
		now:         time.Now,
	}
}

// txError passes domain errors through and marks anything else, such as a
// failed commit, as a storage failure.
func txError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperr.ErrValidation),
		errors.Is(err, apperr.ErrNotFound),
		errors.Is(err, apperr.ErrInsufficientStock):
		return err
	default:
		return apperr.Storage(op, err)
	}
}

func validate(req interface{}) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return apperr.Validation("%s", validator.Messages(errs))
	}
	return nil
}

func (s *inventoryService) CreateProduct(ctx context.Context, req CreateProductRequest) (*model.Product, error) {
	req.SKU = strings.TrimSpace(req.SKU)
	req.Name = strings.TrimSpace(req.Name)

	// 1. Field validation
	if err := validate(req); err != nil {
		return nil, err
	}

	product := &model.Product{
		SKU:      req.SKU,
		Name:     req.Name,
		Price:    model.RoundMoney(*req.Price),
		Qty:      req.Qty,
		Unit:     req.Unit,
		Category: req.Category,
		AddedOn:  model.NewTimestamp(s.now()),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.productRepo.WithTx(tx)

		// 2. Duplicate SKU check
		existing, err := repo.FindBySKU(ctx, product.SKU)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperr.Validation("SKU %q already exists", product.SKU)
		}

		// 3. Persist
		return repo.Create(ctx, product)
	})
	if err != nil {
		return nil, txError("create product", err)
	}

	s.metrics.CatalogChanges.WithLabelValues("create").Inc()
	s.log.Info("product created",
		zap.String("sku", product.SKU),
		zap.Int("qty", product.Qty),
		zap.String("price", product.Price.StringFixed(model.MoneyPlaces)))
	return product, nil
}

func (s *inventoryService) UpdateProduct(ctx context.Context, req UpdateProductRequest) (*model.Product, error) {
	req.SKU = strings.TrimSpace(req.SKU)
	req.Name = strings.TrimSpace(req.Name)

	var updated *model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.productRepo.WithTx(tx)

		existing, err := repo.FindBySKU(ctx, req.SKU)
		if err != nil {
			return err
		}
		if existing == nil {
			return apperr.NotFound(req.SKU)
		}
		if err := validate(req); err != nil {
			return err
		}

		existing.Name = req.Name
		existing.Price = model.RoundMoney(*req.Price)
		existing.Unit = req.Unit
		existing.Category = req.Category
		if err := repo.Update(ctx, existing); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, txError("update product", err)
	}

	s.metrics.CatalogChanges.WithLabelValues("update").Inc()
	s.log.Info("product updated",
		zap.String("sku", updated.SKU),
		zap.String("price", updated.Price.StringFixed(model.MoneyPlaces)))
	return updated, nil
}

// DeleteProduct removes the product regardless of outflow rows that name it.
func (s *inventoryService) DeleteProduct(ctx context.Context, sku string) (bool, error) {
	sku = strings.TrimSpace(sku)
	removed, err := s.productRepo.Delete(ctx, sku)
	if err != nil {
		return false, err
	}
	if removed {
		s.metrics.CatalogChanges.WithLabelValues("delete").Inc()
		s.log.Info("product deleted", zap.String("sku", sku))
	}
	return removed, nil
}

// FindProduct returns nil when no product has the SKU.
func (s *inventoryService) FindProduct(ctx context.Context, sku string) (*model.Product, error) {
	return s.productRepo.FindBySKU(ctx, strings.TrimSpace(sku))
}

func (s *inventoryService) ListProducts(ctx context.Context, sortKey string) ([]model.Product, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	model.SortProducts(products, model.ParseProductSort(sortKey))
	return products, nil
}

func (s *inventoryService) Receive(ctx context.Context, sku string, qty int) (*model.Product, error) {
	sku = strings.TrimSpace(sku)

	var updated *model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.productRepo.WithTx(tx)

		product, err := repo.FindBySKU(ctx, sku)
		if err != nil {
			return err
		}
		if product == nil {
			return apperr.NotFound(sku)
		}
		if qty <= 0 {
			return apperr.Validation("qty to add must be > 0")
		}
		if qty > math.MaxInt-product.Qty {
			return apperr.Validation("qty to add would take %s past %d on hand", sku, math.MaxInt)
		}
		if err := repo.AddQty(ctx, sku, qty); err != nil {
			return err
		}
		product.Qty += qty
		updated = product
		return nil
	})
	if err != nil {
		return nil, txError("receive stock", err)
	}

	s.metrics.UnitsReceived.Add(float64(qty))
	s.log.Info("stock received", zap.String("sku", sku), zap.Int("qty", qty), zap.Int("on_hand", updated.Qty))
	return updated, nil
}

// Issue takes qty out of stock without writing the ledger.
func (s *inventoryService) Issue(ctx context.Context, sku string, qty int) (*model.Product, error) {
	sku = strings.TrimSpace(sku)

	var updated *model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.issue(ctx, s.productRepo.WithTx(tx), sku, qty)
		updated = product
		return err
	})
	if err != nil {
		return nil, txError("issue stock", err)
	}

	s.metrics.UnitsIssued.Add(float64(qty))
	s.log.Info("stock issued", zap.String("sku", sku), zap.Int("qty", qty), zap.Int("on_hand", updated.Qty))
	return updated, nil
}

// IssueAndLog issues stock and appends the outflow row in one transaction.
// If either step fails neither is kept.
func (s *inventoryService) IssueAndLog(ctx context.Context, sku string, qty int, user string) (*model.Product, *model.OutflowEntry, error) {
	sku = strings.TrimSpace(sku)

	var (
		updated *model.Product
		entry   model.OutflowEntry
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.issue(ctx, s.productRepo.WithTx(tx), sku, qty)
		if err != nil {
			return err
		}
		entry = model.NewOutflowEntry(model.NewTimestamp(s.now()), strings.TrimSpace(user), *product, qty)
		if err := s.outflowRepo.WithTx(tx).Add(ctx, &entry); err != nil {
			return err
		}
		updated = product
		return nil
	})
	if err != nil {
		return nil, nil, txError("issue stock", err)
	}

	s.metrics.UnitsIssued.Add(float64(qty))
	s.metrics.LedgerAppends.Inc()
	s.log.Info("stock issued",
		zap.String("sku", sku),
		zap.Int("qty", qty),
		zap.Int("on_hand", updated.Qty),
		zap.String("user", entry.User),
		zap.Int64("outflow_id", entry.ID))
	return updated, &entry, nil
}

func (s *inventoryService) issue(ctx context.Context, repo repository.ProductRepository, sku string, qty int) (*model.Product, error) {
	product, err := repo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperr.NotFound(sku)
	}
	if qty <= 0 {
		return nil, apperr.Validation("qty must be > 0")
	}
	if product.Qty < qty {
		return nil, apperr.InsufficientStock(sku, product.Qty, qty)
	}

	ok, err := repo.DeductQty(ctx, sku, qty)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.InsufficientStock(sku, product.Qty, qty)
	}
	product.Qty -= qty
	return product, nil
}

// FilterProducts keeps products whose SKU or name contains text, ignoring case.
// Blank text keeps everything.
func FilterProducts(products []model.Product, text string) []model.Product {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return products
	}
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.SKU), needle) || strings.Contains(strings.ToLower(p.Name), needle) {
			out = append(out, p)
		}
	}
	return out
}
