package main

import (
	"os"
	"time"

	"starfruit/internal/config"
	"starfruit/internal/domain/model"
	"starfruit/internal/geo"
	"starfruit/internal/handler"
	"starfruit/internal/infra/db"
	"starfruit/internal/infra/rabbit"
	infraRepo "starfruit/internal/infra/repository"
	"starfruit/internal/notify"
	"starfruit/internal/poller"
	"starfruit/internal/server"
	"starfruit/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Logger
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	//.envは無くてもいい（本番は環境変数で渡す）
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Store{},
		&model.Product{},
		&model.Address{},
		&model.CartSnapshot{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderAudit{},
		&model.RiderProfile{},
	); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	storeRepo := infraRepo.NewStoreGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	auditRepo := infraRepo.NewOrderAuditGormRepository(gormDB)
	riderRepo := infraRepo.NewRiderProfileGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//Rabbit（注文の変更イベント）
	rb, err := rabbit.New(cfg.RabbitURL, cfg.RabbitExchange)
	if err != nil {
		log.Fatal().Err(err).Msg("rabbit connect failed")
	}
	defer rb.Close()

	publisher := notify.NewEventPublisher(rb)
	hub := notify.NewHub()

	//リレー：変更イベントを受けて顧客SSEへ節目通知を配る
	if err := rb.ConsumeTopic("order-milestones", []string{notify.RKOrderUpdatedAll}, hub.HandleEvent); err != nil {
		log.Fatal().Err(err).Msg("rabbit consume failed")
	}

	//地理系
	resolver := geo.NewResolver(cfg.GeocoderURL, cfg.GeocoderTimeout)
	router := geo.NewRouter(cfg.RouterURL, cfg.GeocoderTimeout)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(cfg, userRepo, riderRepo)
	storeUC := usecase.NewStoreUsecase(storeRepo)
	productUC := usecase.NewProductUsecase(productRepo, storeRepo)
	addressUC := usecase.NewAddressUsecase(addressRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, productRepo)
	checkoutUC := usecase.NewCheckoutUsecase(txManager, cartRepo, cartUC, addressRepo, storeRepo, publisher)
	orderUC := usecase.NewOrderUsecase(orderRepo, orderItemRepo, auditRepo, storeRepo)
	deliveryUC := usecase.NewDeliveryUsecase(txManager, orderRepo, storeRepo, riderRepo, publisher)
	riderUC := usecase.NewRiderUsecase(riderRepo, orderRepo, storeRepo, resolver, router)

	poll := poller.New(cfg.PollInterval)

	//Handler生成
	h := server.Handlers{
		Auth:    handler.NewAuthHandler(authUC),
		Product: handler.NewProductHandler(productUC, storeUC),
		Address: handler.NewAddressHandler(addressUC),
		Cart:    handler.NewCartHandler(cartUC),
		Order:   handler.NewOrderHandler(checkoutUC, orderUC, deliveryUC, hub),
		Store:   handler.NewStoreHandler(storeUC, productUC, orderUC, deliveryUC, poll),
		Rider:   handler.NewRiderHandler(riderUC, deliveryUC, poll),
	}

	log.Info().Str("port", cfg.Port).Msg("starting api server")
	if err := server.Start(cfg, h); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
