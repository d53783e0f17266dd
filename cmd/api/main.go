package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/messaging"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// ledger backend elegido por STORE_DRIVER.
type ledger struct {
	txRunner  inventory.TxRunner
	levels    repository.StockLevelRepository
	movements repository.StockMovementRepository
	transfers repository.TransferRepository
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store := openLedger(ctx, cfg, log)
	defer store.close()

	var alertCache inventory.AlertCache = cache.NoopAlertCache{}
	if cfg.Redis.Enabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			// Sin caché el servicio sigue siendo correcto; solo más lento
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, caché de alertas deshabilitada")
		} else {
			alertCache = cache.NewRedisAlertCache(client, cfg.Redis.AlertCacheTTL)
		}
	}

	var publisher inventory.MovementPublisher = messaging.NoopPublisher{}
	if cfg.Kafka.Enabled() {
		kp := messaging.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.MovementsTopic)
		defer func() {
			if err := kp.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar productor kafka")
			}
		}()
		publisher = kp
	}

	hooks := inventory.NewCommitHooks(publisher, alertCache, log)
	movementUC := inventory.NewMovementUseCase(store.txRunner, hooks, log)
	transferUC := inventory.NewTransferUseCase(store.txRunner, movementUC, store.transfers, store.movements, hooks, log)
	kardexUC := inventory.NewKardexUseCase(store.movements, store.levels)
	alertUC := inventory.NewAlertUseCase(store.levels, alertCache, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Movements: movementUC,
		Transfers: transferUC,
		Kardex:    kardexUC,
		Alerts:    alertUC,
		Logger:    log,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openLedger(ctx context.Context, cfg *config.Config, log *logger.Logger) *ledger {
	if cfg.Store.Driver == "memory" {
		log.Warn().Msg("STORE_DRIVER=memory: los datos se pierden al reiniciar")
		s := memory.New()
		return &ledger{
			txRunner:  s,
			levels:    s.Levels(),
			movements: s.Movements(),
			transfers: s.Transfers(),
			close:     func() {},
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migración del esquema")
		}
		log.Info().Msg("esquema aplicado")
	}
	return &ledger{
		txRunner:  postgres.NewTxRunner(pool, cfg.DB.StatementTimeout),
		levels:    postgres.NewStockLevelRepository(pool),
		movements: postgres.NewStockMovementRepository(pool),
		transfers: postgres.NewTransferRepository(pool),
		close:     pool.Close,
	}
}
