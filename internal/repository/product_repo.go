package repository

import (
	"context"
	"errors"

	"embassy-inventory/internal/apperr"
	"embassy-inventory/internal/model"

	"gorm.io/gorm"
)

type ProductRepository interface {
	// WithTx returns a repository bound to tx.
	WithTx(tx *gorm.DB) ProductRepository
	Create(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context) ([]model.Product, error)
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, sku string) (bool, error)
	AddQty(ctx context.Context, sku string, n int) error
	DeductQty(ctx context.Context, sku string, n int) (bool, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepo{tx}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	err := r.db.WithContext(ctx).Create(product).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Validation("SKU %q already exists", product.SKU)
	}
	return apperr.Storage("create product", err)
}

func (r *productRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Order("sku").Find(&products).Error
	if err != nil {
		return nil, apperr.Storage("list products", err)
	}
	return products, nil
}

// FindBySKU returns nil without an error when no product has the SKU.
func (r *productRepo) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).First(&product, "sku = ?", sku).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage("find product", err)
	}
	return &product, nil
}

// Update writes the editable columns. Qty and added_on are left alone.
func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("sku = ?", product.SKU).
		Updates(map[string]interface{}{
			"name":     product.Name,
			"price":    product.Price,
			"unit":     product.Unit,
			"category": product.Category,
		})
	if res.Error != nil {
		return apperr.Storage("update product", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(product.SKU)
	}
	return nil
}

// Delete reports whether a row was removed.
func (r *productRepo) Delete(ctx context.Context, sku string) (bool, error) {
	res := r.db.WithContext(ctx).Where("sku = ?", sku).Delete(&model.Product{})
	if res.Error != nil {
		return false, apperr.Storage("delete product", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *productRepo) AddQty(ctx context.Context, sku string, n int) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("sku = ?", sku).
		UpdateColumn("qty", gorm.Expr("qty + ?", n))
	if res.Error != nil {
		return apperr.Storage("receive stock", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(sku)
	}
	return nil
}

// DeductQty subtracts n only while qty >= n. It reports false when the guard
// rejected the update, which covers both a missing SKU and short stock.
func (r *productRepo) DeductQty(ctx context.Context, sku string, n int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("sku = ? AND qty >= ?", sku, n).
		UpdateColumn("qty", gorm.Expr("qty - ?", n))
	if res.Error != nil {
		return false, apperr.Storage("issue stock", res.Error)
	}
	return res.RowsAffected > 0, nil
}
