package api

import (
	"time"

	"github.com/thomas/lookbook-terminal/internal/catalog"
)

// ============================================
// Auth Types
// ============================================

// User is the user record as the server returns it. Newer accounts carry their
// address fields in Profile, older ones at the top level.
type User struct {
	ID        string       `json:"id,omitempty"`
	AltID     string       `json:"_id,omitempty"`
	Email     string       `json:"email"`
	Name      string       `json:"name,omitempty"`
	FirstName string       `json:"firstName,omitempty"`
	LastName  string       `json:"lastName,omitempty"`
	Phone     string       `json:"phone,omitempty"`
	Address   string       `json:"address,omitempty"`
	City      string       `json:"city,omitempty"`
	Postal    string       `json:"postal,omitempty"`
	Country   string       `json:"country,omitempty"`
	Role      string       `json:"role,omitempty"`
	Profile   *UserProfile `json:"profile,omitempty"`
}

// UserProfile is the nested profile sub-record.
type UserProfile struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	City      string `json:"city,omitempty"`
	Postal    string `json:"postal,omitempty"`
	Country   string `json:"country,omitempty"`
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// ProfileUpdate is the payload of a profile update.
type ProfileUpdate struct {
	Name    string       `json:"name,omitempty"`
	Email   string       `json:"email,omitempty"`
	Profile *UserProfile `json:"profile,omitempty"`
}

// PasswordChange is the payload of a password change.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ============================================
// Catalog Types
// ============================================

// Product sort orders understood by the server.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortName      = "name"
)

// ProductQuery holds the filters of a product listing.
type ProductQuery struct {
	Search   string
	Category string
	Sort     string
	Featured bool
	Page     int
	Limit    int
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Products []catalog.Product `json:"products"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	Pages    int               `json:"pages"`
}

// Category groups products.
type Category struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
}

// ============================================
// Lookbook Types
// ============================================

// Post is a lookbook entry.
type Post struct {
	ID         string          `json:"id,omitempty"`
	Title      string          `json:"title"`
	Body       string          `json:"body,omitempty"` // HTML
	Media      []catalog.Media `json:"media,omitempty"`
	ProductIDs []string        `json:"productIds,omitempty"`
	Reactions  Reactions       `json:"reactions,omitempty"`
	Comments   int             `json:"commentCount,omitempty"`
	CreatedAt  time.Time       `json:"createdAt,omitzero"`
}

// Reactions counts reactions per kind, e.g. "like": 3.
type Reactions map[string]int

// Comment is a comment left on a post.
type Comment struct {
	ID        string    `json:"id,omitempty"`
	PostID    string    `json:"postId,omitempty"`
	Author    string    `json:"author,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// ContentBlock is an editable piece of site copy, e.g. the hero banner.
type ContentBlock struct {
	Key       string         `json:"key"`
	Title     string         `json:"title,omitempty"`
	Body      string         `json:"body,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	UpdatedAt time.Time      `json:"updatedAt,omitzero"`
}

// ============================================
// Order Types
// ============================================

// Order statuses shown in the admin console. The server owns the transitions.
const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

// OrderStatuses lists the statuses in display order.
var OrderStatuses = []string{OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled}

// OrderItem is one order line.
type OrderItem struct {
	ProductID    string            `json:"productId"`
	Name         string            `json:"name"`
	Price        float64           `json:"price"`
	Qty          int               `json:"qty"`
	Image        string            `json:"image,omitempty"`
	Color        string            `json:"color,omitempty"`
	Size         string            `json:"size,omitempty"`
	Variant      string            `json:"variant,omitempty"`
	VariantLabel string            `json:"variantLabel,omitempty"`
	Options      map[string]string `json:"options,omitempty"`
}

// ShippingAddress is where an order ships to.
type ShippingAddress struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address"`
	City    string `json:"city"`
	Postal  string `json:"postal"`
	Country string `json:"country"`
}

// CreateOrderRequest places an order.
type CreateOrderRequest struct {
	Items    []OrderItem     `json:"items"`
	Shipping ShippingAddress `json:"shipping"`
	Notes    string          `json:"notes,omitempty"`
}

// Order is a placed order.
type Order struct {
	ID          string          `json:"id"`
	OrderNumber string          `json:"orderNumber"`
	Status      string          `json:"status"`
	Items       []OrderItem     `json:"items"`
	Shipping    ShippingAddress `json:"shipping"`
	Subtotal    float64         `json:"subtotal"`
	Total       float64         `json:"total"`
	Notes       string          `json:"notes,omitempty"`
	UserID      string          `json:"userId,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ============================================
// Upload, Admin and Misc Types
// ============================================

// Upload is a stored media file.
type Upload struct {
	URL  string `json:"url"`
	Type string `json:"type,omitempty"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	Orders         int            `json:"orders"`
	Revenue        float64        `json:"revenue"`
	Products       int            `json:"products"`
	Users          int            `json:"users"`
	Messages       int            `json:"messages"`
	OrdersByStatus map[string]int `json:"ordersByStatus,omitempty"`
}

// ContactMessage is sent from the contact form.
type ContactMessage struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// Health is the health check response.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
