package service

import (
	"context"
	"encoding/json"
	"log"

	"couple-kitchen/internal/domain"

	"github.com/segmentio/kafka-go"
)

// Aggregator consumes order lifecycle events and keeps per-dish rating
// aggregates fresh in the store and cache.
type Aggregator struct {
	Reader *kafka.Reader
	Orders OrderRepository
	Menu   MenuRepository
	Cache  MenuCache
}

func NewAggregator(reader *kafka.Reader, orders OrderRepository, menu MenuRepository, cache MenuCache) *Aggregator {
	return &Aggregator{
		Reader: reader,
		Orders: orders,
		Menu:   menu,
		Cache:  cache,
	}
}

func (a *Aggregator) Start(ctx context.Context) {
	log.Println("[kitchen-svc] starting rating aggregator...")
	for {
		message, err := a.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[kitchen-svc] error reading event: %v", err)
			continue
		}

		var ev domain.Event
		if err := json.Unmarshal(message.Value, &ev); err != nil {
			log.Printf("[kitchen-svc] error unmarshaling event: %v", err)
			continue
		}

		if ev.Type == domain.EventOrderRated {
			a.ProcessRating(ctx, ev)
		}
	}
}

func (a *Aggregator) ProcessRating(ctx context.Context, ev domain.Event) {
	log.Printf("[kitchen-svc] processing rating: order=%d rating=%d", ev.OrderID, ev.Rating)

	for _, name := range ev.DishNames {
		avg, count, err := a.Orders.DishRating(name)
		if err != nil {
			log.Printf("[kitchen-svc] error computing rating for %q: %v", name, err)
			continue
		}

		if err := a.Menu.UpdateDishAggregates(name, avg, count); err != nil {
			log.Printf("[kitchen-svc] error updating aggregates for %q: %v", name, err)
		}
		if a.Cache != nil {
			if err := a.Cache.SetDishRating(ctx, name, avg, count); err != nil {
				log.Printf("[kitchen-svc] error caching rating for %q: %v", name, err)
			}
		}
	}
}
