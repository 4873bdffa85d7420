package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	StatusPlaced    OrderStatus = "PLACED"
	StatusCancelled OrderStatus = "CANCELLED"
	StatusDelivered OrderStatus = "DELIVERED"
)

// Terminal reports whether no further transition is allowed from s.
func (s OrderStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusDelivered
}

type Product struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name        string  `gorm:"not null"                  json:"name"`
	Description string  `gorm:"not null"                  json:"description"`
	Price       float64 `gorm:"not null"                  json:"price"`
	Stock       int     `gorm:"not null;check:stock >= 0" json:"stock"`
	ImageURL    string  `json:"image_url"`
	Active      bool    `gorm:"not null;default:true"     json:"active"`
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null"                 json:"role"`
	Active       bool   `gorm:"not null;default:true"    json:"active"`
}

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"      json:"id"`
	Token     string    `gorm:"unique;not null" json:"token"`
	UserEmail string    `gorm:"index;not null"  json:"user_email"`
	ExpiresAt time.Time `gorm:"not null"        json:"expires_at"`
	Revoked   bool      `gorm:"default:false"   json:"revoked"`
}

// Cart is the aggregate root for pre-purchase lines. One cart per user,
// created lazily on first access and kept (emptied) after checkout.
type Cart struct {
	ID        uint       `gorm:"primaryKey;autoIncrement"    json:"id"`
	UserEmail string     `gorm:"uniqueIndex;not null"        json:"user_email"`
	Items     []CartItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
}

// CartItem carries no price: cart views always resolve the current
// product price, so catalog changes show up before checkout. One line
// per product per cart, enforced by the unique index.
type CartItem struct {
	ID        uint `gorm:"primaryKey;autoIncrement"              json:"id"`
	CartID    uint `gorm:"not null;uniqueIndex:idx_cart_product" json:"cart_id"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_cart_product" json:"product_id"`
	Quantity  int  `gorm:"not null;check:quantity > 0"           json:"quantity"`
}

// Order is immutable after creation except for Status. Items and
// TotalPrice are a snapshot taken at placement time.
type Order struct {
	ID         uint        `gorm:"primaryKey;autoIncrement"    json:"id"`
	Reference  string      `gorm:"uniqueIndex;not null"        json:"reference"`
	UserEmail  string      `gorm:"index;not null"              json:"user_email"`
	Items      []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	TotalPrice float64     `gorm:"not null"                    json:"total_price"`
	Status     OrderStatus `gorm:"not null"                    json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.Reference == "" {
		o.Reference = uuid.NewString()
	}
	return nil
}

// OrderItem keeps a nullable product reference plus denormalized name and
// unit price, so deleting a product never invalidates order history.
type OrderItem struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"    json:"id"`
	OrderID     uint    `gorm:"index;not null"              json:"order_id"`
	ProductID   *uint   `json:"product_id"`
	ProductName string  `gorm:"not null"                    json:"product_name"`
	UnitPrice   float64 `gorm:"not null"                    json:"unit_price"`
	Quantity    int     `gorm:"not null;check:quantity > 0" json:"quantity"`
}
