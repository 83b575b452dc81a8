package service

import (
	"context"

	"couple-kitchen/internal/domain"
)

type MenuRepository interface {
	CreateDish(dish *domain.Dish) error
	GetDish(id int) (*domain.Dish, error)
	ListDishes(approved bool) ([]domain.Dish, error)
	UpdateDish(dish *domain.Dish) error
	DeleteDish(id int) (*domain.Dish, error)
	UpdateDishAggregates(name string, avg float64, count int) error
}

// OrderRepository owns the wallet debit: CreateOrder applies the conditional
// balance decrement and the order insert in a single atomic unit.
type OrderRepository interface {
	CreateOrder(order *domain.Order) error
	GetOrder(id int) (*domain.Order, error)
	ListOrders() ([]domain.Order, error)
	UpdateStatus(id int, from, to domain.Status) error
	SetRating(id, rating int) error
	DishRating(name string) (avg float64, count int, err error)
	SaveQRCode(orderID int, qr []byte) error
	GetQRCode(orderID int) ([]byte, error)
}

type WalletRepository interface {
	Balance() (float64, error)
	Recharge(amount float64) error
}

type MessageRepository interface {
	AppendMessage(msg *domain.Message) error
	RecentMessages(limit int) ([]domain.Message, error)
}

// MenuCache is optional; a nil cache means every read hits the repository.
type MenuCache interface {
	GetMenu(ctx context.Context) ([]domain.Dish, error)
	SetMenu(ctx context.Context, dishes []domain.Dish) error
	InvalidateMenu(ctx context.Context) error
	GetDishRating(ctx context.Context, name string) (avg float64, count int, ok bool, err error)
	SetDishRating(ctx context.Context, name string, avg float64, count int) error
}

type EventPublisher interface {
	Publish(ctx context.Context, ev domain.Event) error
}

type MenuServiceInterface interface {
	Propose(ctx context.Context, name, emoji, category string, price float64, role string) (*domain.Dish, error)
	Approve(ctx context.Context, id int, price float64) (*domain.Dish, error)
	Edit(ctx context.Context, id int, update DishUpdate) (*domain.Dish, error)
	Delete(ctx context.Context, id int) (*domain.Dish, error)
	ListApproved(ctx context.Context) ([]domain.Dish, error)
	ListPending(ctx context.Context) ([]domain.Dish, error)
}

type OrderServiceInterface interface {
	Place(ctx context.Context, items []PlacedItem) (*domain.Order, error)
	Advance(ctx context.Context, id int, target domain.Status) (*domain.Order, error)
	Rate(ctx context.Context, id, score int) (*domain.Order, error)
	List() ([]domain.Order, error)
	Get(id int) (*domain.Order, error)
	AverageRating(ctx context.Context, name string) (avg float64, count int, err error)
	QRCode(id int) ([]byte, error)
	QRLink(id int) string
}

type WalletServiceInterface interface {
	Balance() (float64, error)
	Recharge(amount float64) error
}

type ChatServiceInterface interface {
	Post(sender, content string) (*domain.Message, error)
	Recent() ([]domain.Message, error)
}
