package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/gateway/woocommerce"
	"storefront/internal/handler"
	"storefront/internal/infra/cache"
	"storefront/internal/infra/db"
	infraRepo "storefront/internal/infra/repository"
	repo "storefront/internal/repository"
	"storefront/internal/server"
	"storefront/internal/usecase"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	//.env（無ければ環境変数だけ）
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		log.Errorf("server error: %v", err)
		os.Exit(1)
	}
}

// run は ctx が終わるかサーバーが落ちるまで動く。保存先は必ず閉じる。
func run(ctx context.Context, cfg config.Config) error {
	//カート保存先
	store, closeStore, err := openCartStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize cart store: %w", err)
	}
	defer closeStore()

	fetcher := woocommerce.NewFetcher(cfg.APIBaseURL, cfg.APIKey, cfg.APISecret)
	if !cfg.APIConfigured() {
		log.Warn("API_BASE_URL / API_KEY / API_SECRET not fully set: order and product endpoints will answer 500")
	}

	//Usecase生成
	cartUC := usecase.NewCartUsecase(store, cfg.Shipping)
	orderUC := usecase.NewOrderUsecase(woocommerce.NewOrderGateway(fetcher))
	catalogUC := usecase.NewCatalogUsecase(fetcher)

	//Handler生成
	e := server.New(cfg, server.Handlers{
		Cart:    handler.NewCartHandler(cartUC),
		Order:   handler.NewOrderHandler(orderUC),
		Product: handler.NewProductHandler(catalogUC),
	})

	//Server起動
	return server.Start(ctx, e, ":"+cfg.Port)
}

func setupLogger(cfg config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// テストで差し替える
var openCartStore = newCartStore

func newCartStore(ctx context.Context, cfg config.Config) (repo.CartStore, func(), error) {
	switch cfg.CartStore {
	case config.StoreRedis:
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		log.Infof("cart store: redis (%s)", cfg.Redis.Addr)
		return infraRepo.NewCartRedisStore(client, cfg.CartTTL), func() { _ = client.Close() }, nil

	case config.StorePostgres:
		gormDB, err := db.Connect(cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(gormDB); err != nil {
			return nil, nil, err
		}
		closeDB := func() {
			if sqlDB, err := gormDB.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		log.Info("cart store: postgres")
		return infraRepo.NewCartGormStore(gormDB), closeDB, nil
	}

	log.Warnf("cart store: memory (TTL %s). carts are lost on restart and not shared between processes; use redis or postgres outside development", cfg.CartTTL)
	return infraRepo.NewCartMemoryStore(cfg.CartTTL), func() {}, nil
}
