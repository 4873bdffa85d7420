package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"storefront/internal/models"
	"storefront/internal/repo"
)

// OrderService turns carts into immutable order snapshots and drives the
// order status state machine. Placement, cancellation and status updates
// each run in a single transaction so money and stock never drift.
type OrderService struct {
	Repo *repo.GormRepo
}

// PlaceOrder converts the user's cart into an order: all-or-nothing
// stock check, item snapshot, stock decrement, cart clear. Nothing is
// mutated unless every line passes the check.
func (s *OrderService) PlaceOrder(ctx context.Context, email string) (*models.Order, error) {
	var order *models.Order
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		cart, err := getOrCreateCart(ctx, tx, email)
		if err != nil {
			return err
		}

		lines, err := tx.ListCartLines(ctx, cart.ID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return fmt.Errorf("%w: cart is empty", ErrValidation)
		}

		var total float64
		items := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			product, err := tx.FindProduct(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: product %d", ErrNotFound, line.ProductID)
				}
				return err
			}
			if product.Stock < line.Quantity {
				return stockConflict(product.Name, product.Stock, line.Quantity)
			}

			productID := product.ID
			items = append(items, models.OrderItem{
				ProductID:   &productID,
				ProductName: product.Name,
				UnitPrice:   product.Price,
				Quantity:    line.Quantity,
			})
			total += product.Price * float64(line.Quantity)
		}

		order = &models.Order{
			UserEmail:  email,
			Status:     models.StatusPlaced,
			TotalPrice: total,
			Items:      items,
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}

		for _, item := range order.Items {
			ok, err := tx.DecrementStock(ctx, *item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				// Lost a stock race since the check above. Rolling back
				// the whole placement keeps the all-or-nothing promise.
				// The re-read goes through the outer connection so the
				// reported availability reflects what actually committed.
				available := 0
				name := item.ProductName
				if p, err := s.Repo.FindProduct(ctx, *item.ProductID); err == nil {
					available = p.Stock
					name = p.Name
				}
				return stockConflict(name, available, item.Quantity)
			}
		}

		return tx.ClearCart(ctx, cart.ID)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// CancelOrder applies the PLACED -> CANCELLED transition and restores
// stock. Admin path: no ownership check.
func (s *OrderService) CancelOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	return s.transition(ctx, orderID, models.StatusCancelled)
}

// CancelUserOrder is the customer path: the order must belong to the
// requesting user. A foreign order yields ErrOwnership, not ErrNotFound,
// because the order does exist.
func (s *OrderService) CancelUserOrder(ctx context.Context, orderID uint, email string) (*models.Order, error) {
	order, err := s.OrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserEmail != email {
		return nil, fmt.Errorf("%w: order does not belong to current user", ErrOwnership)
	}
	return s.transition(ctx, orderID, models.StatusCancelled)
}

// UpdateStatus is the admin status change. Transitioning to CANCELLED
// restores stock exactly like CancelOrder; any other target is a pure
// metadata change.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, status models.OrderStatus) (*models.Order, error) {
	return s.transition(ctx, orderID, status)
}

func (s *OrderService) transition(ctx context.Context, orderID uint, status models.OrderStatus) (*models.Order, error) {
	var order *models.Order
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		var err error
		order, err = tx.FindOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
			}
			return err
		}

		// Only PLACED orders may change status at all.
		if order.Status != models.StatusPlaced {
			return stateConflict(order.Status)
		}

		// The write re-checks the status, so a concurrent transition
		// that committed after the read above cannot be applied twice
		// (and stock below is restored at most once).
		ok, err := tx.UpdateOrderStatusFrom(ctx, order.ID, models.StatusPlaced, status)
		if err != nil {
			return err
		}
		if !ok {
			if current, err := tx.FindOrder(ctx, orderID); err == nil {
				return stateConflict(current.Status)
			}
			return stateConflict(order.Status)
		}
		order.Status = status

		if status == models.StatusCancelled {
			for _, item := range order.Items {
				// Items whose product was deleted have nowhere to
				// return stock to.
				if item.ProductID == nil {
					continue
				}
				if err := tx.RestoreStock(ctx, *item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) OrderByID(ctx context.Context, orderID uint) (*models.Order, error) {
	order, err := s.Repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, err
	}
	return order, nil
}

func (s *OrderService) Orders(ctx context.Context, email string) ([]models.Order, error) {
	return s.Repo.FindOrdersByUser(ctx, email)
}

func (s *OrderService) AllOrders(ctx context.Context) ([]models.Order, error) {
	return s.Repo.FindAllOrders(ctx)
}

func (s *OrderService) OrdersByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	return s.Repo.FindOrdersByStatus(ctx, status)
}

func (s *OrderService) UserHasOrders(ctx context.Context, email string) (bool, error) {
	return s.Repo.UserHasOrders(ctx, email)
}

// TotalRevenue sums total_price over DELIVERED orders.
func (s *OrderService) TotalRevenue(ctx context.Context) (float64, error) {
	return s.Repo.TotalRevenue(ctx, models.StatusDelivered)
}

// ParseOrderStatus maps an admin-supplied status string onto the enum.
func ParseOrderStatus(raw string) (models.OrderStatus, error) {
	switch models.OrderStatus(strings.ToUpper(raw)) {
	case models.StatusPlaced:
		return models.StatusPlaced, nil
	case models.StatusCancelled:
		return models.StatusCancelled, nil
	case models.StatusDelivered:
		return models.StatusDelivered, nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", ErrValidation, raw)
	}
}

func stateConflict(status models.OrderStatus) error {
	return fmt.Errorf("%w: cannot change status of %s orders",
		ErrStateConflict, strings.ToLower(string(status)))
}

func stockConflict(name string, available, requested int) error {
	return fmt.Errorf("%w: insufficient stock for product %q (available: %d, requested: %d)",
		ErrStockConflict, name, available, requested)
}
