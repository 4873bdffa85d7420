package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/auth"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	CartHandler    *CartHTTP
	OrderHandler   *OrderHTTP
	AdminHandler   *AdminHTTP
	ProductHandler *ProductHTTP
	SearchHandler  *SearchHTTP
	Tokens         *auth.TokenService
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)

	products := v1.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)

	if d.SearchHandler != nil {
		v1.GET("/search", d.SearchHandler.Search)
	}

	user := v1.Group("", d.Tokens.RequireLogin)
	user.POST("/logout", d.AuthHandler.Logout)
	user.DELETE("/profile", d.AuthHandler.DeleteProfile)

	cart := user.Group("/cart")
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("/items", d.CartHandler.AddToCart)
	cart.DELETE("/items/:productId", d.CartHandler.RemoveFromCart)
	cart.DELETE("", d.CartHandler.ClearCart)
	cart.POST("/lines/:lineId/increase", d.CartHandler.IncreaseLine)
	cart.POST("/lines/:lineId/decrease", d.CartHandler.DecreaseLine)

	orders := user.Group("/orders")
	orders.POST("", d.OrderHandler.PlaceOrder)
	orders.GET("", d.OrderHandler.MyOrders)
	orders.POST("/:id/cancel", d.OrderHandler.CancelMyOrder)
	orders.POST("/:id/pay", d.OrderHandler.Pay)

	admin := v1.Group("/admin", d.Tokens.AdminOnly)
	admin.GET("/dashboard", d.AdminHandler.Dashboard)
	admin.GET("/orders", d.AdminHandler.ListOrders)
	admin.GET("/orders/:id", d.AdminHandler.GetOrder)
	admin.POST("/orders/:id/status", d.AdminHandler.UpdateOrderStatus)
	admin.POST("/orders/:id/cancel", d.AdminHandler.CancelOrder)
	admin.POST("/products", d.ProductHandler.CreateProduct)
	admin.PATCH("/products/:id", d.ProductHandler.PatchProduct)
	admin.DELETE("/products/:id", d.ProductHandler.DeleteProduct)
}
