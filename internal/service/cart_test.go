package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUser = "alice@example.com"

func TestGetCart_CreatesLazily(t *testing.T) {
	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := t.Context()

	view, err := svc.GetCart(ctx, testUser)
	require.NoError(t, err)
	require.NotZero(t, view.CartID)
	assert.Empty(t, view.Items)
	assert.Zero(t, view.TotalPrice)

	again, err := svc.GetCart(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, view.CartID, again.CartID)
}

func TestAddToCart(t *testing.T) {
	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := t.Context()

	product := createProduct(t, r, "keyboard", 49.90, 10)

	view, err := svc.AddToCart(ctx, testUser, product.ID, 2)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, product.ID, view.Items[0].ProductID)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.InDelta(t, 99.80, view.TotalPrice, 1e-9)

	// Same product accumulates onto the existing line.
	view, err = svc.AddToCart(ctx, testUser, product.ID, 3)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 5, view.Items[0].Quantity)
}

func TestAddToCart_Validation(t *testing.T) {
	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := t.Context()

	product := createProduct(t, r, "mouse", 10, 5)

	_, err := svc.AddToCart(ctx, testUser, product.ID, 0)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.AddToCart(ctx, testUser, product.ID, -1)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.AddToCart(ctx, testUser, 9999, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddCartLineQuantity(t *testing.T) {
	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := t.Context()

	product := createProduct(t, r, "pen", 2, 50)

	view, err := svc.GetCart(ctx, testUser)
	require.NoError(t, err)

	// No line yet: the atomic bump reports a miss instead of creating.
	bumped, err := r.AddCartLineQuantity(ctx, view.CartID, product.ID, 2)
	require.NoError(t, err)
	assert.False(t, bumped)

	_, err = svc.AddToCart(ctx, testUser, product.ID, 2)
	require.NoError(t, err)

	bumped, err = r.AddCartLineQuantity(ctx, view.CartID, product.ID, 3)
	require.NoError(t, err)
	assert.True(t, bumped)

	got, err := svc.GetCart(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 5, got.Items[0].Quantity)
}

func TestCart_PriceTracksCatalog(t *testing.T) {
	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := t.Context()

	product := createProduct(t, r, "monitor", 200, 5)

	_, err := svc.AddToCart(ctx, testUser, product.ID, 1)
	require.NoError(t, err)

	product.Price = 150
	require.NoError(t, r.SaveProduct(ctx, product))

	view, err := svc.GetCart(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.InDelta(t, 150, view.Items[0].Price, 1e-9)
	assert.InDelta(t, 150, view.TotalPrice, 1e-9)
}

func TestRemoveFromCart(t *testing.T) {
	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := t.Context()

	product := createProduct(t, r, "cable", 5, 100)

	_, err := svc.AddToCart(ctx, testUser, product.ID, 4)
	require.NoError(t, err)

	view, err := svc.RemoveFromCart(ctx, testUser, product.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	// Removing an absent line is a no-op, not an error.
	view, err = svc.RemoveFromCart(ctx, testUser, product.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestClearCart(t *testing.T) {
	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := t.Context()

	a := createProduct(t, r, "a", 1, 10)
	b := createProduct(t, r, "b", 2, 10)

	_, err := svc.AddToCart(ctx, testUser, a.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, testUser, b.ID, 2)
	require.NoError(t, err)

	view, err := svc.ClearCart(ctx, testUser)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Zero(t, view.TotalPrice)
}

func TestIncreaseDecreaseQuantity(t *testing.T) {
	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := t.Context()

	product := createProduct(t, r, "ssd", 80, 10)

	view, err := svc.AddToCart(ctx, testUser, product.ID, 2)
	require.NoError(t, err)
	lineID := view.Items[0].LineID

	view, err = svc.IncreaseQuantity(ctx, lineID)
	require.NoError(t, err)
	assert.Equal(t, 3, view.Items[0].Quantity)

	view, err = svc.DecreaseQuantity(ctx, lineID)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Items[0].Quantity)

	_, err = svc.DecreaseQuantity(ctx, lineID)
	require.NoError(t, err)
	view, err = svc.DecreaseQuantity(ctx, lineID)
	require.NoError(t, err)
	// Dropping below one deletes the line entirely.
	assert.Empty(t, view.Items)

	_, err = svc.DecreaseQuantity(ctx, lineID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.IncreaseQuantity(ctx, lineID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCartView_SkipsDeletedProducts(t *testing.T) {
	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := t.Context()

	keep := createProduct(t, r, "keep", 10, 5)
	gone := createProduct(t, r, "gone", 20, 5)

	_, err := svc.AddToCart(ctx, testUser, keep.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, testUser, gone.ID, 1)
	require.NoError(t, err)

	require.NoError(t, r.DeleteProduct(ctx, gone.ID))

	view, err := svc.GetCart(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, keep.ID, view.Items[0].ProductID)
	assert.InDelta(t, 10, view.TotalPrice, 1e-9)
}
