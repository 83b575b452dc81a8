package main

import (
	"context"
	"log"
	"time"

	"couple-kitchen/config"
	httpapi "couple-kitchen/internal/api/http"
	"couple-kitchen/internal/service"
	"couple-kitchen/internal/storage"
)

func main() {
	var (
		menuRepo   service.MenuRepository
		orderRepo  service.OrderRepository
		walletRepo service.WalletRepository
		msgRepo    service.MessageRepository
		cache      service.MenuCache
		publisher  service.EventPublisher
	)

	if config.MemoryMode() {
		log.Println("[kitchen-svc] MEMORY_MODE=1: using non-persistent in-memory store, all data is lost on restart")
		mem := storage.NewMemoryStore()
		menuRepo, orderRepo, walletRepo, msgRepo = mem, mem, mem, mem
	} else {
		db := config.MustInitPostgres()
		defer db.Close()

		pg := storage.NewPostgresRepository(db)
		if err := pg.EnsureSchema(); err != nil {
			log.Fatal("Failed to ensure schema:", err)
		}
		menuRepo, orderRepo, walletRepo, msgRepo = pg, pg, pg, pg

		rdb := config.MustInitRedis()
		defer rdb.Close()
		cache = storage.NewRedisCache(rdb, 5*time.Minute)

		writer := config.NewKafkaWriter(config.TopicKitchenEvents)
		defer writer.Close()
		publisher = storage.NewKafkaPublisher(writer)

		reader := config.NewKafkaReader(config.TopicKitchenEvents, "kitchen-aggregator")
		defer reader.Close()
		aggregator := service.NewAggregator(reader, pg, pg, cache)
		go aggregator.Start(context.Background())
	}

	qr := service.DefaultQRGenerator{BaseURL: config.Getenv("PUBLIC_URL", "http://localhost:8080")}

	menuSvc := service.NewMenuService(menuRepo, cache)
	orderSvc := service.NewOrderService(orderRepo, menuRepo, cache, publisher, qr)
	walletSvc := service.NewWalletService(walletRepo)
	chatSvc := service.NewChatService(msgRepo)

	handler := httpapi.NewHandler(menuSvc, orderSvc, walletSvc, chatSvc)
	httpapi.StartServer(config.HTTPAddr(), httpapi.NewRouter(handler))
}
