package domain

import "time"

// Roles passed explicitly by the caller; privilege is never inferred.
const (
	RoleChef  = "chef"
	RoleDiner = "diner"
)

type Dish struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Emoji       string    `json:"emoji"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	IsApproved  bool      `json:"isApproved"`
	AvgRating   float64   `json:"avg_rating"`
	RatingCount int       `json:"rating_count"`
	CreatedAt   time.Time `json:"createdAt"`
}

// OrderItem is a snapshot of the dish at placement time. Deleting or editing
// the dish afterwards does not touch existing orders.
type OrderItem struct {
	DishID   int     `json:"dishId"`
	Name     string  `json:"name"`
	Emoji    string  `json:"emoji"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type Order struct {
	ID         int         `json:"id"`
	Items      []OrderItem `json:"items"`
	Status     Status      `json:"status"`
	TotalPrice float64     `json:"totalPrice"`
	Rating     int         `json:"rating"`
	QRCode     string      `json:"qr_code,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
}

type Wallet struct {
	Balance float64 `json:"balance"`
}

// DefaultWalletBalance seeds the singleton wallet on first access.
const DefaultWalletBalance = 100.0

type Message struct {
	ID        int       `json:"id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

const (
	EventOrderPlaced   = "order_placed"
	EventStatusChanged = "status_changed"
	EventOrderRated    = "order_rated"
)

type Event struct {
	Type      string    `json:"type"`
	OrderID   int       `json:"order_id"`
	Status    Status    `json:"status,omitempty"`
	Rating    int       `json:"rating,omitempty"`
	Total     float64   `json:"total,omitempty"`
	DishNames []string  `json:"dish_names,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
