package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"storefront/internal/models"
	"storefront/internal/repo"
	"storefront/internal/transport"
)

// CartService maintains the mutable pre-purchase basket. Every mutation
// returns the full cart view so callers never need a follow-up read.
type CartService struct {
	Repo *repo.GormRepo
}

func (s *CartService) GetCart(ctx context.Context, email string) (*transport.CartResponse, error) {
	var view *transport.CartResponse
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		cart, err := getOrCreateCart(ctx, tx, email)
		if err != nil {
			return err
		}
		view, err = buildCartView(ctx, tx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *CartService) AddToCart(ctx context.Context, email string, productID uint, quantity int) (*transport.CartResponse, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be > 0", ErrValidation)
	}

	var view *transport.CartResponse
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if _, err := tx.FindProduct(ctx, productID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: product %d", ErrNotFound, productID)
			}
			return err
		}

		cart, err := getOrCreateCart(ctx, tx, email)
		if err != nil {
			return err
		}

		bumped, err := tx.AddCartLineQuantity(ctx, cart.ID, productID, quantity)
		if err != nil {
			return err
		}
		if !bumped {
			line := &models.CartItem{CartID: cart.ID, ProductID: productID, Quantity: quantity}
			if err := tx.CreateCartLine(ctx, line); err != nil {
				return err
			}
		}

		view, err = buildCartView(ctx, tx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// RemoveFromCart drops the line for productID. A missing line is a no-op.
func (s *CartService) RemoveFromCart(ctx context.Context, email string, productID uint) (*transport.CartResponse, error) {
	var view *transport.CartResponse
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		cart, err := getOrCreateCart(ctx, tx, email)
		if err != nil {
			return err
		}
		if err := tx.DeleteCartLineByProduct(ctx, cart.ID, productID); err != nil {
			return err
		}
		view, err = buildCartView(ctx, tx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *CartService) ClearCart(ctx context.Context, email string) (*transport.CartResponse, error) {
	var view *transport.CartResponse
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		cart, err := getOrCreateCart(ctx, tx, email)
		if err != nil {
			return err
		}
		if err := tx.ClearCart(ctx, cart.ID); err != nil {
			return err
		}
		view, err = buildCartView(ctx, tx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// IncreaseQuantity bumps a cart line by one. The line is addressed by its
// own id so controllers addressing by product id can coexist.
func (s *CartService) IncreaseQuantity(ctx context.Context, lineID uint) (*transport.CartResponse, error) {
	var view *transport.CartResponse
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		line, err := tx.FindCartLine(ctx, lineID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: cart line %d", ErrNotFound, lineID)
			}
			return err
		}

		line.Quantity++
		if err := tx.SaveCartLine(ctx, line); err != nil {
			return err
		}

		view, err = buildCartView(ctx, tx, line.CartID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// DecreaseQuantity lowers a cart line by one; at quantity 1 the line is
// deleted outright rather than left at zero.
func (s *CartService) DecreaseQuantity(ctx context.Context, lineID uint) (*transport.CartResponse, error) {
	var view *transport.CartResponse
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		line, err := tx.FindCartLine(ctx, lineID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: cart line %d", ErrNotFound, lineID)
			}
			return err
		}

		if line.Quantity > 1 {
			line.Quantity--
			if err := tx.SaveCartLine(ctx, line); err != nil {
				return err
			}
		} else {
			if err := tx.DeleteCartLine(ctx, line.ID); err != nil {
				return err
			}
		}

		view, err = buildCartView(ctx, tx, line.CartID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func getOrCreateCart(ctx context.Context, tx *repo.GormRepo, email string) (*models.Cart, error) {
	cart, err := tx.FindUserCart(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = &models.Cart{UserEmail: email}
		if err := tx.CreateCart(ctx, cart); err != nil {
			return nil, err
		}
		return cart, nil
	}
	return cart, err
}

// buildCartView resolves every line against the current catalog record,
// so prices reflect catalog edits made after the line was added. Lines
// whose product has vanished are left out of the view.
func buildCartView(ctx context.Context, tx *repo.GormRepo, cartID uint) (*transport.CartResponse, error) {
	lines, err := tx.ListCartLines(ctx, cartID)
	if err != nil {
		return nil, err
	}

	view := &transport.CartResponse{CartID: cartID, Items: make([]transport.CartItemResponse, 0, len(lines))}
	for _, line := range lines {
		product, err := tx.FindProduct(ctx, line.ProductID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		view.Items = append(view.Items, transport.CartItemResponse{
			LineID:      line.ID,
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			Price:       product.Price,
			Stock:       product.Stock,
		})
		view.TotalPrice += product.Price * float64(line.Quantity)
	}
	return view, nil
}
