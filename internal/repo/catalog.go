package repo

import (
	"context"

	"gorm.io/gorm"

	"storefront/internal/models"
)

func (r *GormRepo) FindProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) ListProducts(ctx context.Context, offset, limit int, activeOnly bool) (int64, []models.Product, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{})
	if activeOnly {
		q = q.Where("active = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Product
	if err := q.Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.DB.WithContext(ctx).Create(product).Error
}

func (r *GormRepo) SaveProduct(ctx context.Context, product *models.Product) error {
	return r.DB.WithContext(ctx).Save(product).Error
}

// DeleteProduct removes the product and detaches historical order items
// from it, leaving their name/price snapshot intact. Cart lines that
// still point at the product are dropped with it.
func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	return r.Transaction(ctx, func(tx *GormRepo) error {
		if err := tx.DB.Model(&models.OrderItem{}).
			Where("product_id = ?", id).
			Update("product_id", nil).Error; err != nil {
			return err
		}
		if err := tx.DB.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		res := tx.DB.Delete(&models.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// DecrementStock performs the conditional update that closes the
// check-then-decrement race: the decrement only lands when enough stock
// is left, and the caller must check the returned flag.
func (r *GormRepo) DecrementStock(ctx context.Context, productID uint, qty int) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepo) RestoreStock(ctx context.Context, productID uint, qty int) error {
	return r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", qty)).Error
}
