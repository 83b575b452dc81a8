package storage

import (
	"database/sql"
	"fmt"

	"couple-kitchen/internal/domain"
)

type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

func (r *PostgresRepository) EnsureSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS dishes (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			emoji TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			price DOUBLE PRECISION NOT NULL DEFAULT 0,
			is_approved BOOLEAN NOT NULL DEFAULT FALSE,
			avg_rating DOUBLE PRECISION NOT NULL DEFAULT 0,
			rating_count INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id SERIAL PRIMARY KEY,
			status TEXT NOT NULL,
			total_price DOUBLE PRECISION NOT NULL DEFAULT 0,
			rating INT NOT NULL DEFAULT 0,
			qr_code BYTEA,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			order_id INT NOT NULL REFERENCES orders(id),
			dish_id INT NOT NULL,
			name TEXT NOT NULL,
			emoji TEXT NOT NULL,
			price DOUBLE PRECISION NOT NULL,
			quantity INT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS wallets (
			id INT PRIMARY KEY,
			balance DOUBLE PRECISION NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id SERIAL PRIMARY KEY,
			sender TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, stmt := range statements {
		if _, err := r.DB.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) CreateDish(dish *domain.Dish) error {
	return r.DB.QueryRow(
		"INSERT INTO dishes (name, emoji, category, price, is_approved) VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at",
		dish.Name, dish.Emoji, dish.Category, dish.Price, dish.IsApproved,
	).Scan(&dish.ID, &dish.CreatedAt)
}

func (r *PostgresRepository) GetDish(id int) (*domain.Dish, error) {
	var dish domain.Dish
	err := r.DB.QueryRow(`
		SELECT id, name, emoji, category, price, is_approved, avg_rating, rating_count, created_at
		FROM dishes
		WHERE id = $1`, id).
		Scan(&dish.ID, &dish.Name, &dish.Emoji, &dish.Category, &dish.Price, &dish.IsApproved, &dish.AvgRating, &dish.RatingCount, &dish.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &dish, nil
}

func (r *PostgresRepository) ListDishes(approved bool) ([]domain.Dish, error) {
	rows, err := r.DB.Query(`
		SELECT id, name, emoji, category, price, is_approved, avg_rating, rating_count, created_at
		FROM dishes
		WHERE is_approved = $1
		ORDER BY id`, approved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dishes := []domain.Dish{}
	for rows.Next() {
		var dish domain.Dish
		if err := rows.Scan(&dish.ID, &dish.Name, &dish.Emoji, &dish.Category, &dish.Price, &dish.IsApproved, &dish.AvgRating, &dish.RatingCount, &dish.CreatedAt); err != nil {
			continue
		}
		dishes = append(dishes, dish)
	}
	return dishes, nil
}

func (r *PostgresRepository) UpdateDish(dish *domain.Dish) error {
	result, err := r.DB.Exec(`
		UPDATE dishes
		SET name=$1, emoji=$2, category=$3, price=$4, is_approved=$5
		WHERE id=$6`,
		dish.Name, dish.Emoji, dish.Category, dish.Price, dish.IsApproved, dish.ID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteDish(id int) (*domain.Dish, error) {
	var dish domain.Dish
	err := r.DB.QueryRow(`
		DELETE FROM dishes
		WHERE id = $1
		RETURNING id, name, emoji, category, price, is_approved, avg_rating, rating_count, created_at`, id).
		Scan(&dish.ID, &dish.Name, &dish.Emoji, &dish.Category, &dish.Price, &dish.IsApproved, &dish.AvgRating, &dish.RatingCount, &dish.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &dish, nil
}

func (r *PostgresRepository) UpdateDishAggregates(name string, avg float64, count int) error {
	_, err := r.DB.Exec(`
		UPDATE dishes
		SET avg_rating = $1, rating_count = $2
		WHERE name = $3`, avg, count, name)
	return err
}

// CreateOrder debits the wallet and inserts the order in one transaction.
// The conditional decrement is the concurrency guard: two placements racing
// for the same funds cannot both pass it.
func (r *PostgresRepository) CreateOrder(order *domain.Order) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"INSERT INTO wallets (id, balance) VALUES (1, $1) ON CONFLICT (id) DO NOTHING",
		domain.DefaultWalletBalance); err != nil {
		return err
	}

	result, err := tx.Exec(
		"UPDATE wallets SET balance = balance - $1 WHERE id = 1 AND balance >= $1",
		order.TotalPrice)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		var balance float64
		if err := tx.QueryRow("SELECT balance FROM wallets WHERE id = 1").Scan(&balance); err != nil {
			return err
		}
		return &domain.InsufficientFundsError{Balance: balance, Required: order.TotalPrice}
	}

	if err := tx.QueryRow(`
		INSERT INTO orders (status, total_price, rating)
		VALUES ($1, $2, 0)
		RETURNING id, created_at
	`, order.Status, order.TotalPrice).Scan(&order.ID, &order.CreatedAt); err != nil {
		return err
	}

	for _, item := range order.Items {
		if _, err := tx.Exec(`
			INSERT INTO order_items (order_id, dish_id, name, emoji, price, quantity)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, order.ID, item.DishID, item.Name, item.Emoji, item.Price, item.Quantity); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PostgresRepository) GetOrder(id int) (*domain.Order, error) {
	var order domain.Order
	err := r.DB.QueryRow(`
		SELECT id, status, total_price, rating, created_at
		FROM orders WHERE id = $1
	`, id).Scan(&order.ID, &order.Status, &order.TotalPrice, &order.Rating, &order.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := r.orderItems(id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return &order, nil
}

func (r *PostgresRepository) ListOrders() ([]domain.Order, error) {
	rows, err := r.DB.Query(`
		SELECT id, status, total_price, rating, created_at
		FROM orders
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.Status, &order.TotalPrice, &order.Rating, &order.CreatedAt); err != nil {
			continue
		}
		orders = append(orders, order)
	}

	for i := range orders {
		items, err := r.orderItems(orders[i].ID)
		if err != nil {
			continue
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *PostgresRepository) orderItems(orderID int) ([]domain.OrderItem, error) {
	rows, err := r.DB.Query(`
		SELECT dish_id, name, emoji, price, quantity
		FROM order_items
		WHERE order_id = $1
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.DishID, &item.Name, &item.Emoji, &item.Price, &item.Quantity); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// UpdateStatus only succeeds when the row still holds the expected status.
func (r *PostgresRepository) UpdateStatus(id int, from, to domain.Status) error {
	result, err := r.DB.Exec(
		"UPDATE orders SET status = $1 WHERE id = $2 AND status = $3",
		to, id, from)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to)
	}
	return nil
}

func (r *PostgresRepository) SetRating(id, rating int) error {
	result, err := r.DB.Exec("UPDATE orders SET rating = $1 WHERE id = $2", rating, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DishRating(name string) (float64, int, error) {
	var avg float64
	var count int
	err := r.DB.QueryRow(`
		SELECT COALESCE(AVG(rating), 0), COUNT(*)
		FROM (
			SELECT DISTINCT o.id, o.rating
			FROM orders o
			JOIN order_items oi ON oi.order_id = o.id
			WHERE o.rating > 0 AND oi.name = $1
		) rated
	`, name).Scan(&avg, &count)
	if err != nil {
		return 0, 0, err
	}
	return avg, count, nil
}

func (r *PostgresRepository) SaveQRCode(orderID int, qr []byte) error {
	_, err := r.DB.Exec("UPDATE orders SET qr_code = $1 WHERE id = $2", qr, orderID)
	return err
}

func (r *PostgresRepository) GetQRCode(orderID int) ([]byte, error) {
	var qr []byte
	err := r.DB.QueryRow("SELECT qr_code FROM orders WHERE id = $1", orderID).Scan(&qr)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return qr, nil
}

// Balance lazily seeds the singleton wallet on first access.
func (r *PostgresRepository) Balance() (float64, error) {
	if _, err := r.DB.Exec(
		"INSERT INTO wallets (id, balance) VALUES (1, $1) ON CONFLICT (id) DO NOTHING",
		domain.DefaultWalletBalance); err != nil {
		return 0, err
	}

	var balance float64
	if err := r.DB.QueryRow("SELECT balance FROM wallets WHERE id = 1").Scan(&balance); err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *PostgresRepository) Recharge(amount float64) error {
	if _, err := r.DB.Exec(
		"INSERT INTO wallets (id, balance) VALUES (1, $1) ON CONFLICT (id) DO NOTHING",
		domain.DefaultWalletBalance); err != nil {
		return err
	}

	_, err := r.DB.Exec("UPDATE wallets SET balance = balance + $1 WHERE id = 1", amount)
	return err
}

func (r *PostgresRepository) AppendMessage(msg *domain.Message) error {
	return r.DB.QueryRow(
		"INSERT INTO messages (sender, content) VALUES ($1, $2) RETURNING id, created_at",
		msg.Sender, msg.Content,
	).Scan(&msg.ID, &msg.CreatedAt)
}

// RecentMessages returns the newest limit messages, oldest first.
func (r *PostgresRepository) RecentMessages(limit int) ([]domain.Message, error) {
	rows, err := r.DB.Query(`
		SELECT id, sender, content, created_at FROM (
			SELECT id, sender, content, created_at
			FROM messages
			ORDER BY created_at DESC, id DESC
			LIMIT $1
		) recent
		ORDER BY created_at ASC, id ASC
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(&msg.ID, &msg.Sender, &msg.Content, &msg.CreatedAt); err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
