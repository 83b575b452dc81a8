package service

import (
	"context"
	"fmt"
	"log"

	"couple-kitchen/internal/domain"
)

// DishUpdate is a partial dish edit; nil fields are left untouched.
type DishUpdate struct {
	Name     *string
	Emoji    *string
	Category *string
	Price    *float64
}

type MenuService struct {
	repo  MenuRepository
	cache MenuCache
}

func NewMenuService(repo MenuRepository, cache MenuCache) *MenuService {
	return &MenuService{repo: repo, cache: cache}
}

// Propose creates a dish. A chef role publishes it immediately; any other
// caller leaves it pending until Approve.
func (s *MenuService) Propose(ctx context.Context, name, emoji, category string, price float64, role string) (*domain.Dish, error) {
	if name == "" || emoji == "" {
		return nil, fmt.Errorf("%w: name and emoji are required", domain.ErrValidation)
	}
	if price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}

	dish := &domain.Dish{
		Name:       name,
		Emoji:      emoji,
		Category:   category,
		Price:      price,
		IsApproved: role == domain.RoleChef,
	}
	if err := s.repo.CreateDish(dish); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return dish, nil
}

func (s *MenuService) Approve(ctx context.Context, id int, price float64) (*domain.Dish, error) {
	if price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}

	dish, err := s.repo.GetDish(id)
	if err != nil {
		return nil, err
	}

	dish.IsApproved = true
	dish.Price = price
	if err := s.repo.UpdateDish(dish); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return dish, nil
}

func (s *MenuService) Edit(ctx context.Context, id int, update DishUpdate) (*domain.Dish, error) {
	dish, err := s.repo.GetDish(id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		if *update.Name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", domain.ErrValidation)
		}
		dish.Name = *update.Name
	}
	if update.Emoji != nil {
		if *update.Emoji == "" {
			return nil, fmt.Errorf("%w: emoji must not be empty", domain.ErrValidation)
		}
		dish.Emoji = *update.Emoji
	}
	if update.Category != nil {
		dish.Category = *update.Category
	}
	if update.Price != nil {
		if *update.Price < 0 {
			return nil, fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
		}
		dish.Price = *update.Price
	}

	if err := s.repo.UpdateDish(dish); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return dish, nil
}

// Delete removes the dish from the menu. Existing orders keep their item
// snapshots.
func (s *MenuService) Delete(ctx context.Context, id int) (*domain.Dish, error) {
	dish, err := s.repo.DeleteDish(id)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return dish, nil
}

func (s *MenuService) ListApproved(ctx context.Context) ([]domain.Dish, error) {
	if s.cache != nil {
		if dishes, err := s.cache.GetMenu(ctx); err == nil && dishes != nil {
			return dishes, nil
		}
	}

	dishes, err := s.repo.ListDishes(true)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetMenu(ctx, dishes); err != nil {
			log.Printf("[kitchen-svc] warning: failed to cache menu: %v", err)
		}
	}
	return dishes, nil
}

func (s *MenuService) ListPending(ctx context.Context) ([]domain.Dish, error) {
	return s.repo.ListDishes(false)
}

func (s *MenuService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateMenu(ctx); err != nil {
		log.Printf("[kitchen-svc] warning: failed to invalidate menu cache: %v", err)
	}
}

var _ MenuServiceInterface = (*MenuService)(nil)
