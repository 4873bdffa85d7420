package transport

import (
	"time"

	"storefront/internal/models"
)

type CartItemResponse struct {
	LineID      uint    `json:"line_id"`
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

type CartResponse struct {
	CartID     uint               `json:"cart_id"`
	Items      []CartItemResponse `json:"items"`
	TotalPrice float64            `json:"total_price"`
}

type AddToCartRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type OrderItemResponse struct {
	ProductID   *uint   `json:"product_id"`
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
}

type OrderResponse struct {
	OrderID    uint                `json:"order_id"`
	Reference  string              `json:"reference"`
	UserEmail  string              `json:"user_email"`
	Items      []OrderItemResponse `json:"items"`
	TotalPrice float64             `json:"total_price"`
	Status     models.OrderStatus  `json:"status"`
	CreatedAt  time.Time           `json:"created_at"`
}

func ToOrderResponse(o *models.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
		})
	}
	return OrderResponse{
		OrderID:    o.ID,
		Reference:  o.Reference,
		UserEmail:  o.UserEmail,
		Items:      items,
		TotalPrice: o.TotalPrice,
		Status:     o.Status,
		CreatedAt:  o.CreatedAt,
	}
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type CreateProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	ImageURL    string  `json:"image_url"`
}

type PatchProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	ImageURL    *string  `json:"image_url"`
	Active      *bool    `json:"active"`
}

type DashboardResponse struct {
	TotalUsers      int64   `json:"total_users"`
	ActiveUsers     int64   `json:"active_users"`
	CompletedOrders int     `json:"completed_orders"`
	TotalRevenue    float64 `json:"total_revenue"`
}
