package repo

import (
	"context"

	"gorm.io/gorm"

	"storefront/internal/models"
)

func (r *GormRepo) FindUserCart(ctx context.Context, email string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.DB.WithContext(ctx).Preload("Items").Where("user_email = ?", email).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *GormRepo) CreateCart(ctx context.Context, cart *models.Cart) error {
	return r.DB.WithContext(ctx).Create(cart).Error
}

func (r *GormRepo) ListCartLines(ctx context.Context, cartID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.DB.WithContext(ctx).Where("cart_id = ?", cartID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) FindCartLine(ctx context.Context, lineID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB.WithContext(ctx).First(&item, lineID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// AddCartLineQuantity atomically bumps the existing line for the
// product. Returns false when the cart has no such line yet and the
// caller must create one.
func (r *GormRepo) AddCartLineQuantity(ctx context.Context, cartID, productID uint, qty int) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Update("quantity", gorm.Expr("quantity + ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepo) SaveCartLine(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Save(item).Error
}

func (r *GormRepo) CreateCartLine(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Create(item).Error
}

func (r *GormRepo) DeleteCartLine(ctx context.Context, lineID uint) error {
	return r.DB.WithContext(ctx).Delete(&models.CartItem{}, lineID).Error
}

func (r *GormRepo) DeleteCartLineByProduct(ctx context.Context, cartID, productID uint) error {
	return r.DB.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{}).Error
}

// ClearCart empties the cart's lines. The cart row itself survives.
func (r *GormRepo) ClearCart(ctx context.Context, cartID uint) error {
	return r.DB.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}
