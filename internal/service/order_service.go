package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"couple-kitchen/internal/domain"
)

// PlacedItem is what the client submits: a dish reference and a quantity.
// Prices always come from the stored dish record, never from the request.
type PlacedItem struct {
	DishID   int `json:"dishId"`
	Quantity int `json:"quantity"`
}

type OrderService struct {
	orders    OrderRepository
	menu      MenuRepository
	cache     MenuCache
	publisher EventPublisher
	qrEncoder QRGenerator

	// AllowRatingOverwrite decides whether a second rating replaces the
	// first or is rejected. Flip here to change the contract.
	AllowRatingOverwrite bool
}

func NewOrderService(orders OrderRepository, menu MenuRepository, cache MenuCache, publisher EventPublisher, qr QRGenerator) *OrderService {
	return &OrderService{
		orders:               orders,
		menu:                 menu,
		cache:                cache,
		publisher:            publisher,
		qrEncoder:            qr,
		AllowRatingOverwrite: true,
	}
}

func (s *OrderService) Place(ctx context.Context, items []PlacedItem) (*domain.Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one item", domain.ErrValidation)
	}

	order := &domain.Order{Status: domain.StatusWaiting}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
		}

		dish, err := s.menu.GetDish(item.DishID)
		if err != nil {
			return nil, fmt.Errorf("%w: unknown dish %d", domain.ErrValidation, item.DishID)
		}
		if !dish.IsApproved {
			return nil, fmt.Errorf("%w: dish %q is not on the menu", domain.ErrValidation, dish.Name)
		}

		order.Items = append(order.Items, domain.OrderItem{
			DishID:   dish.ID,
			Name:     dish.Name,
			Emoji:    dish.Emoji,
			Price:    dish.Price,
			Quantity: item.Quantity,
		})
		order.TotalPrice += dish.Price * float64(item.Quantity)
	}

	// Debit and insert happen in one atomic repository operation.
	if err := s.orders.CreateOrder(order); err != nil {
		return nil, err
	}

	if s.qrEncoder != nil {
		if qr, err := s.qrEncoder.Generate(order.ID); err == nil {
			_ = s.orders.SaveQRCode(order.ID, qr)
		}
	}

	s.publish(ctx, domain.Event{
		Type:      domain.EventOrderPlaced,
		OrderID:   order.ID,
		Status:    order.Status,
		Total:     order.TotalPrice,
		DishNames: dishNames(order),
		Timestamp: time.Now(),
	})

	return order, nil
}

func (s *OrderService) Advance(ctx context.Context, id int, target domain.Status) (*domain.Order, error) {
	if !domain.ValidStatus(target) {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidTransition, target)
	}

	order, err := s.orders.GetOrder(id)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(order.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, order.Status, target)
	}

	// Conditional update keyed on the expected current status; a concurrent
	// advance loses here instead of skipping a step.
	if err := s.orders.UpdateStatus(id, order.Status, target); err != nil {
		return nil, err
	}
	order.Status = target

	s.publish(ctx, domain.Event{
		Type:      domain.EventStatusChanged,
		OrderID:   order.ID,
		Status:    target,
		Timestamp: time.Now(),
	})

	return order, nil
}

func (s *OrderService) Rate(ctx context.Context, id, score int) (*domain.Order, error) {
	if score < 1 || score > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrValidation)
	}

	order, err := s.orders.GetOrder(id)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.StatusDone {
		return nil, fmt.Errorf("%w: only completed orders can be rated", domain.ErrInvalidState)
	}
	if order.Rating != 0 && !s.AllowRatingOverwrite {
		return nil, fmt.Errorf("%w: order already rated", domain.ErrInvalidState)
	}

	if err := s.orders.SetRating(id, score); err != nil {
		return nil, err
	}
	order.Rating = score

	s.publish(ctx, domain.Event{
		Type:      domain.EventOrderRated,
		OrderID:   order.ID,
		Rating:    score,
		DishNames: dishNames(order),
		Timestamp: time.Now(),
	})

	return order, nil
}

func (s *OrderService) List() ([]domain.Order, error) {
	return s.orders.ListOrders()
}

func (s *OrderService) Get(id int) (*domain.Order, error) {
	return s.orders.GetOrder(id)
}

// AverageRating reads the cached aggregate when available and falls back to
// the store. A zero count means no rated orders mention the dish.
func (s *OrderService) AverageRating(ctx context.Context, name string) (float64, int, error) {
	if s.cache != nil {
		if avg, count, ok, err := s.cache.GetDishRating(ctx, name); err == nil && ok {
			return avg, count, nil
		}
	}

	avg, count, err := s.orders.DishRating(name)
	if err != nil {
		return 0, 0, err
	}

	if s.cache != nil {
		_ = s.cache.SetDishRating(ctx, name, avg, count)
	}
	return avg, count, nil
}

func (s *OrderService) QRCode(id int) ([]byte, error) {
	qr, err := s.orders.GetQRCode(id)
	if err != nil {
		return nil, err
	}
	if len(qr) == 0 && s.qrEncoder != nil {
		if regenerated, err := s.qrEncoder.Generate(id); err == nil {
			_ = s.orders.SaveQRCode(id, regenerated)
			return regenerated, nil
		}
	}
	return qr, nil
}

func (s *OrderService) QRLink(id int) string {
	return fmt.Sprintf("/api/orders/%d/qrcode", id)
}

func (s *OrderService) publish(ctx context.Context, ev domain.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		log.Printf("[kitchen-svc] warning: failed to publish %s event: %v", ev.Type, err)
	}
}

func dishNames(order *domain.Order) []string {
	names := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		names = append(names, item.Name)
	}
	return names
}

var _ OrderServiceInterface = (*OrderService)(nil)
