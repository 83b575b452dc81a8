package storage

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"couple-kitchen/internal/domain"
)

// MemoryStore is the explicit non-persistent fallback behind MEMORY_MODE.
// It satisfies the same repository interfaces as the Postgres store; all
// state is lost on restart. The mutex makes the wallet check-and-decrement
// atomic, matching the conditional UPDATE in the SQL path.
type MemoryStore struct {
	mu sync.Mutex

	dishes   map[int]*domain.Dish
	orders   map[int]*domain.Order
	qrCodes  map[int][]byte
	messages []domain.Message
	wallet   *domain.Wallet

	nextDishID    int
	nextOrderID   int
	nextMessageID int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		dishes:  make(map[int]*domain.Dish),
		orders:  make(map[int]*domain.Order),
		qrCodes: make(map[int][]byte),
	}
}

func (s *MemoryStore) CreateDish(dish *domain.Dish) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextDishID++
	dish.ID = s.nextDishID
	dish.CreatedAt = time.Now()

	stored := *dish
	s.dishes[dish.ID] = &stored
	return nil
}

func (s *MemoryStore) GetDish(id int) (*domain.Dish, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dish, ok := s.dishes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *dish
	return &copied, nil
}

func (s *MemoryStore) ListDishes(approved bool) ([]domain.Dish, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dishes := []domain.Dish{}
	for _, dish := range s.dishes {
		if dish.IsApproved == approved {
			dishes = append(dishes, *dish)
		}
	}
	sort.Slice(dishes, func(i, j int) bool { return dishes[i].ID < dishes[j].ID })
	return dishes, nil
}

func (s *MemoryStore) UpdateDish(dish *domain.Dish) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.dishes[dish.ID]
	if !ok {
		return domain.ErrNotFound
	}
	dish.CreatedAt = stored.CreatedAt
	updated := *dish
	s.dishes[dish.ID] = &updated
	return nil
}

func (s *MemoryStore) DeleteDish(id int) (*domain.Dish, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dish, ok := s.dishes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(s.dishes, id)
	return dish, nil
}

func (s *MemoryStore) UpdateDishAggregates(name string, avg float64, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, dish := range s.dishes {
		if dish.Name == name {
			dish.AvgRating = avg
			dish.RatingCount = count
		}
	}
	return nil
}

func (s *MemoryStore) CreateOrder(order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureWallet()
	if s.wallet.Balance < order.TotalPrice {
		return &domain.InsufficientFundsError{Balance: s.wallet.Balance, Required: order.TotalPrice}
	}
	s.wallet.Balance -= order.TotalPrice

	s.nextOrderID++
	order.ID = s.nextOrderID
	order.CreatedAt = time.Now()

	stored := *order
	stored.Items = append([]domain.OrderItem(nil), order.Items...)
	s.orders[order.ID] = &stored
	return nil
}

func (s *MemoryStore) GetOrder(id int) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *order
	copied.Items = append([]domain.OrderItem(nil), order.Items...)
	return &copied, nil
}

func (s *MemoryStore) ListOrders() ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := []domain.Order{}
	for _, order := range s.orders {
		copied := *order
		copied.Items = append([]domain.OrderItem(nil), order.Items...)
		orders = append(orders, copied)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	return orders, nil
}

func (s *MemoryStore) UpdateStatus(id int, from, to domain.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	if order.Status != from {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to)
	}
	order.Status = to
	return nil
}

func (s *MemoryStore) SetRating(id, rating int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	order.Rating = rating
	return nil
}

func (s *MemoryStore) DishRating(name string) (float64, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sum, count int
	for _, order := range s.orders {
		if order.Rating == 0 {
			continue
		}
		for _, item := range order.Items {
			if item.Name == name {
				sum += order.Rating
				count++
				break
			}
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

func (s *MemoryStore) SaveQRCode(orderID int, qr []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[orderID]; !ok {
		return domain.ErrNotFound
	}
	s.qrCodes[orderID] = qr
	return nil
}

func (s *MemoryStore) GetQRCode(orderID int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[orderID]; !ok {
		return nil, domain.ErrNotFound
	}
	return s.qrCodes[orderID], nil
}

func (s *MemoryStore) Balance() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureWallet()
	return s.wallet.Balance, nil
}

func (s *MemoryStore) Recharge(amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureWallet()
	s.wallet.Balance += amount
	return nil
}

func (s *MemoryStore) ensureWallet() {
	if s.wallet == nil {
		s.wallet = &domain.Wallet{Balance: domain.DefaultWalletBalance}
	}
}

func (s *MemoryStore) AppendMessage(msg *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextMessageID++
	msg.ID = s.nextMessageID
	msg.CreatedAt = time.Now()
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *MemoryStore) RecentMessages(limit int) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := len(s.messages) - limit
	if start < 0 {
		start = 0
	}
	return append([]domain.Message{}, s.messages[start:]...), nil
}
