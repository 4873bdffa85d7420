package repo

import (
	"context"

	"storefront/internal/models"
)

func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Create(order).Error
}

func (r *GormRepo) FindOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) FindOrdersByUser(ctx context.Context, email string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").
		Where("user_email = ?", email).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) FindAllOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) FindOrdersByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrderStatusFrom applies the transition only while the order is
// still in the expected state. A false return means a concurrent
// transition got there first; the caller must not touch stock.
func (r *GormRepo) UpdateOrderStatusFrom(ctx context.Context, orderID uint, from, to models.OrderStatus) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepo) UserHasOrders(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("user_email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) TotalRevenue(ctx context.Context, status models.OrderStatus) (float64, error) {
	var total float64
	if err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("status = ?", status).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
