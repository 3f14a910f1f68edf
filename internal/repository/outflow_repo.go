package repository

import (
	"context"

	"embassy-inventory/internal/apperr"
	"embassy-inventory/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OutflowRepository interface {
	WithTx(tx *gorm.DB) OutflowRepository
	Add(ctx context.Context, entry *model.OutflowEntry) error
	List(ctx context.Context, sort model.OutflowSort) ([]model.OutflowEntry, error)
	Backfill(ctx context.Context) (*BackfillReport, error)
}

// BackfillReport counts the rows each repair step rewrote.
type BackfillReport struct {
	Category   int64 `json:"category"`
	Price      int64 `json:"price"`
	TotalPrice int64 `json:"total_price"`
}

func (r BackfillReport) Total() int64 {
	return r.Category + r.Price + r.TotalPrice
}

// The repair only touches rows it can change: a blank category or zero price
// with no usable product value is left as it is.
const (
	backfillCategory = `
		UPDATE outflow
		SET category = COALESCE((
			SELECT p.category FROM products p WHERE p.sku = outflow.sku
		), '')
		WHERE TRIM(IFNULL(category, '')) = ''
		  AND (category IS NULL OR EXISTS (
			SELECT 1 FROM products p WHERE p.sku = outflow.sku AND TRIM(p.category) <> ''
		  ))`

	backfillPrice = `
		UPDATE outflow
		SET price = COALESCE((
			SELECT p.price FROM products p WHERE p.sku = outflow.sku
		), 0)
		WHERE IFNULL(price, 0) = 0
		  AND (price IS NULL OR EXISTS (
			SELECT 1 FROM products p WHERE p.sku = outflow.sku AND p.price <> 0
		  ))`

	backfillTotalPrice = `
		UPDATE outflow
		SET total_price = ROUND(IFNULL(price, 0) * qty, 2)
		WHERE IFNULL(total_price, 0) = 0
		  AND (total_price IS NULL OR ROUND(IFNULL(price, 0) * qty, 2) <> 0)`
)

type outflowRepo struct {
	db *gorm.DB
}

func NewOutflowRepo(db *gorm.DB) OutflowRepository {
	return &outflowRepo{db}
}

func (r *outflowRepo) WithTx(tx *gorm.DB) OutflowRepository {
	return &outflowRepo{tx}
}

func (r *outflowRepo) Add(ctx context.Context, entry *model.OutflowEntry) error {
	return apperr.Storage("append outflow", r.db.WithContext(ctx).Create(entry).Error)
}

// List orders by the fixed column behind sort, then by id in the same direction.
func (r *outflowRepo) List(ctx context.Context, sort model.OutflowSort) ([]model.OutflowEntry, error) {
	var entries []model.OutflowEntry
	err := r.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: sort.Column()}, Desc: sort.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: sort.Desc}).
		Find(&entries).Error
	if err != nil {
		return nil, apperr.Storage("list outflow", err)
	}
	return entries, nil
}

// Backfill repairs legacy rows in one transaction. Running it again changes nothing.
func (r *outflowRepo) Backfill(ctx context.Context) (*BackfillReport, error) {
	var report BackfillReport
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			sql   string
			count *int64
		}{
			{backfillCategory, &report.Category},
			{backfillPrice, &report.Price},
			{backfillTotalPrice, &report.TotalPrice},
		}
		for _, step := range steps {
			res := tx.Exec(step.sql)
			if res.Error != nil {
				return res.Error
			}
			*step.count = res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Storage("backfill outflow", err)
	}
	return &report, nil
}
