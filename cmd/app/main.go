package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/suchimauz/booking-slots-resolver/internal/adapters/in/http"
	"github.com/suchimauz/booking-slots-resolver/internal/adapters/in/rabbitmq"
	"github.com/suchimauz/booking-slots-resolver/internal/adapters/out/cache"
	"github.com/suchimauz/booking-slots-resolver/internal/adapters/out/logger"
	"github.com/suchimauz/booking-slots-resolver/internal/adapters/out/postgres"
	"github.com/suchimauz/booking-slots-resolver/internal/adapters/out/supabase"
	"github.com/suchimauz/booking-slots-resolver/internal/config"
	"github.com/suchimauz/booking-slots-resolver/internal/core/ports/out"
	"github.com/suchimauz/booking-slots-resolver/internal/core/services/slot_resolver_service"
)

func main() {
	// .env нужен только для локальной разработки, в окружениях
	// переменные приходят из деплоя
	_ = godotenv.Load()

	// Загрузка конфигурации
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Локально цветной консольный логгер, в окружениях json через zap
	var mainLogger out.LoggerPort
	if cfg.IsLocal() {
		mainLogger, err = logger.NewConsoleLogger(cfg.App.Timezone)
	} else {
		mainLogger, err = logger.NewZapLogger(string(cfg.App.Env))
	}
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	log := mainLogger.WithModule("Main")

	log.Info("app.starting", out.LogFields{
		"version":         cfg.App.Version,
		"env":             cfg.App.Env,
		"timezone":        cfg.App.Timezone,
		"storeDriver":     cfg.Store.Driver,
		"rabbitmqEnabled": cfg.RabbitMq.Enabled,
		"cacheEnabled":    cfg.Cache.Enabled,
	})

	// Настройка Gin в зависимости от окружения
	if cfg.IsNotLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Инициализация хранилища
	var storeAdapter out.StorePort
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		postgresAdapter, err := postgres.NewPostgresAdapter(ctx, cfg, log.WithModule("PostgresAdapter"))
		if err != nil {
			log.Error("app.postgres.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}
		defer postgresAdapter.Close()

		if cfg.Postgres.Migrate {
			migrator, err := postgres.NewMigrator(postgresAdapter.Pool())
			if err != nil {
				log.Error("app.migrations.init_failed", out.LogFields{
					"error": err.Error(),
				})
				os.Exit(1)
			}
			if err := migrator.Run(ctx); err != nil {
				log.Error("app.migrations.failed", out.LogFields{
					"error": err.Error(),
				})
				os.Exit(1)
			}
			migrator.Close()
			log.Info("app.migrations.applied", nil)
		}

		storeAdapter = postgresAdapter
	default:
		storeAdapter = supabase.NewSupabaseAdapter(cfg, log.WithModule("SupabaseAdapter"))
	}

	// Инициализация кэша
	var cacheAdapter out.CachePort
	if cfg.Cache.Enabled {
		var err error
		switch cfg.Cache.Driver {
		case config.CacheDriverRedis:
			cacheAdapter, err = cache.NewRedisCacheAdapter(cfg, log.WithModule("RedisCacheAdapter"))
		default:
			cacheAdapter, err = cache.NewCacheAdapter(cfg, log.WithModule("CacheAdapter"))
		}
		if err != nil {
			log.Error("app.cache.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}

	// Инициализация сервиса
	slotResolverService := slot_resolver_service.NewSlotResolverService(
		storeAdapter,
		cacheAdapter,
		mainLogger,
		cfg,
	)

	// Настройка HTTP сервера
	router := gin.Default()
	controller := http.NewSlotResolverController(slotResolverService, cfg)
	controller.RegisterRoutes(router)

	// Настройка RabbitMQ слушателя только если он включен
	if cfg.RabbitMq.Enabled {
		listener, err := rabbitmq.NewCacheHitListener(
			slotResolverService,
			cfg,
			log.WithModule("RabbitMQListener"),
		)
		if err != nil {
			log.Error("app.rabbitmq.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}

		if err := listener.Start(ctx); err != nil {
			log.Error("app.rabbitmq.start_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}

		defer func() {
			if err := listener.Stop(); err != nil {
				log.Error("app.rabbitmq.stop_failed", out.LogFields{
					"error": err.Error(),
				})
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("app.http.starting", out.LogFields{
			"host": cfg.HTTP.Host,
			"port": cfg.HTTP.Port,
		})

		if err := router.Run(cfg.HTTP.Host + ":" + cfg.HTTP.Port); err != nil {
			log.Error("app.http.failed", out.LogFields{
				"error": err.Error(),
			})
			sigChan <- syscall.SIGTERM
		}
	}()

	sig := <-sigChan
	log.Info("app.shutdown.initiated", out.LogFields{
		"signal": sig.String(),
	})
}
