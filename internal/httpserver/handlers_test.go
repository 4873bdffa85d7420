package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront/internal/config"
	"storefront/internal/models"
	"storefront/internal/repo"
	"storefront/internal/service"
)

type testEnv struct {
	t     *testing.T
	e     *echo.Echo
	repo  *repo.GormRepo
	cart  *CartHTTP
	order *OrderHTTP
	admin *AdminHTTP
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	r := repo.New(db)
	orderSvc := &service.OrderService{Repo: r}
	return &testEnv{
		t:     t,
		e:     echo.New(),
		repo:  r,
		cart:  &CartHTTP{Svc: &service.CartService{Repo: r}},
		order: &OrderHTTP{Svc: orderSvc},
		admin: &AdminHTTP{Orders: orderSvc, Repo: r},
	}
}

// newContext builds an echo context with the identity middleware's
// output already in place, the way RequireLogin would leave it.
func (env *testEnv) newContext(method, path, email string, body any) (*httptest.ResponseRecorder, echo.Context) {
	env.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)
	if email != "" {
		c.Set("userEmail", email)
	}
	return rec, c
}

func (env *testEnv) createProduct(name string, price float64, stock int) *models.Product {
	env.t.Helper()

	product := &models.Product{Name: name, Description: name, Price: price, Stock: stock, Active: true}
	require.NoError(env.t, env.repo.CreateProduct(env.t.Context(), product))
	return product
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	return he.Code
}

func TestAddToCartHandler(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct("keyboard", 50, 10)

	rec, c := env.newContext(http.MethodPost, "/api/v1/cart/items", "alice@example.com",
		map[string]any{"product_id": product.ID, "quantity": 2})
	require.NoError(t, env.cart.AddToCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		Items []struct {
			ProductID uint    `json:"product_id"`
			Quantity  int     `json:"quantity"`
			Price     float64 `json:"price"`
		} `json:"items"`
		TotalPrice float64 `json:"total_price"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Len(t, view.Items, 1)
	assert.Equal(t, product.ID, view.Items[0].ProductID)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.InDelta(t, 100, view.TotalPrice, 1e-9)
}

func TestAddToCartHandler_UnknownProduct(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.newContext(http.MethodPost, "/api/v1/cart/items", "alice@example.com",
		map[string]any{"product_id": 999, "quantity": 1})
	err := env.cart.AddToCart(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))
}

func TestPlaceOrderHandler(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct("mouse", 25, 4)

	_, c := env.newContext(http.MethodPost, "/api/v1/cart/items", "alice@example.com",
		map[string]any{"product_id": product.ID, "quantity": 3})
	require.NoError(t, env.cart.AddToCart(c))

	rec, c := env.newContext(http.MethodPost, "/api/v1/orders", "alice@example.com", nil)
	require.NoError(t, env.order.PlaceOrder(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		OrderID    uint    `json:"order_id"`
		TotalPrice float64 `json:"total_price"`
		Status     string  `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotZero(t, resp.OrderID)
	assert.InDelta(t, 75, resp.TotalPrice, 1e-9)
	assert.Equal(t, "PLACED", resp.Status)
}

func TestPlaceOrderHandler_StockConflict(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct("rare", 100, 1)

	_, c := env.newContext(http.MethodPost, "/api/v1/cart/items", "alice@example.com",
		map[string]any{"product_id": product.ID, "quantity": 2})
	require.NoError(t, env.cart.AddToCart(c))

	_, c = env.newContext(http.MethodPost, "/api/v1/orders", "alice@example.com", nil)
	err := env.order.PlaceOrder(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, httpStatus(t, err))
}

func TestCancelMyOrderHandler_Foreign(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct("camera", 250, 5)

	_, c := env.newContext(http.MethodPost, "/api/v1/cart/items", "bob@example.com",
		map[string]any{"product_id": product.ID, "quantity": 1})
	require.NoError(t, env.cart.AddToCart(c))
	_, c = env.newContext(http.MethodPost, "/api/v1/orders", "bob@example.com", nil)
	require.NoError(t, env.order.PlaceOrder(c))

	_, c = env.newContext(http.MethodPost, "/api/v1/orders/1/cancel", "alice@example.com", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	err := env.order.CancelMyOrder(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, httpStatus(t, err))
}

func TestUpdateOrderStatusHandler(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct("desk", 120, 8)

	_, c := env.newContext(http.MethodPost, "/api/v1/cart/items", "alice@example.com",
		map[string]any{"product_id": product.ID, "quantity": 1})
	require.NoError(t, env.cart.AddToCart(c))
	_, c = env.newContext(http.MethodPost, "/api/v1/orders", "alice@example.com", nil)
	require.NoError(t, env.order.PlaceOrder(c))

	// Unknown status string is a validation failure.
	_, c = env.newContext(http.MethodPost, "/api/v1/admin/orders/1/status", "admin@example.com",
		map[string]string{"status": "shipped"})
	c.SetParamNames("id")
	c.SetParamValues("1")
	err := env.admin.UpdateOrderStatus(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))

	rec, c := env.newContext(http.MethodPost, "/api/v1/admin/orders/1/status", "admin@example.com",
		map[string]string{"status": "delivered"})
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.admin.UpdateOrderStatus(c))
	require.Equal(t, http.StatusOK, rec.Code)

	// Terminal orders reject any further change.
	_, c = env.newContext(http.MethodPost, "/api/v1/admin/orders/1/cancel", "admin@example.com", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	err = env.admin.CancelOrder(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, httpStatus(t, err))
}

func TestDashboardHandler(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct("gadget", 100, 50)

	require.NoError(t, env.repo.CreateUser(t.Context(), &models.User{
		Email: "alice@example.com", PasswordHash: "x", Role: "user", Active: true,
	}))

	_, c := env.newContext(http.MethodPost, "/api/v1/cart/items", "alice@example.com",
		map[string]any{"product_id": product.ID, "quantity": 2})
	require.NoError(t, env.cart.AddToCart(c))
	_, c = env.newContext(http.MethodPost, "/api/v1/orders", "alice@example.com", nil)
	require.NoError(t, env.order.PlaceOrder(c))

	_, c = env.newContext(http.MethodPost, "/api/v1/admin/orders/1/status", "admin@example.com",
		map[string]string{"status": "DELIVERED"})
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.admin.UpdateOrderStatus(c))

	rec, c := env.newContext(http.MethodGet, "/api/v1/admin/dashboard", "admin@example.com", nil)
	require.NoError(t, env.admin.Dashboard(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		TotalUsers      int64   `json:"total_users"`
		CompletedOrders int     `json:"completed_orders"`
		TotalRevenue    float64 `json:"total_revenue"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.EqualValues(t, 1, resp.TotalUsers)
	assert.Equal(t, 1, resp.CompletedOrders)
	assert.InDelta(t, 200, resp.TotalRevenue, 1e-9)
}
