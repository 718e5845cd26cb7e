package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fjod/go_cart/grocery-service/internal/catalog"
	"github.com/fjod/go_cart/grocery-service/internal/config"
	cartgrpc "github.com/fjod/go_cart/grocery-service/internal/grpc"
	h "github.com/fjod/go_cart/grocery-service/internal/http"
	"github.com/fjod/go_cart/grocery-service/internal/publisher"
	"github.com/fjod/go_cart/grocery-service/internal/service"
	"github.com/fjod/go_cart/grocery-service/internal/store"
	"github.com/fjod/go_cart/grocery-service/pkg/logger"
)

func main() {
	envFile := flag.String("env-file", ".env", "optional dotenv file loaded before the environment")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Options{Environment: logger.ParseEnvironment(cfg.Environment)})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cat, err := loadCatalog(ctx, cfg.Catalog)
	if err != nil {
		logger.Fatal().Err(err).Str("source", cfg.Catalog.Source).Msg("failed to load catalog")
	}
	logger.Info().Str("source", cfg.Catalog.Source).Int("categories", len(cat.Categories())).Msg("catalog loaded")

	cartStore, err := newCartStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("store", cfg.CartStore).Msg("failed to set up cart store")
	}
	defer cartStore.Close()
	logger.Info().Str("store", cfg.CartStore).Msg("cart store ready")

	// the publisher outlives the signal context so orders finishing during
	// shutdown still get their events written
	eventsCtx, stopEvents := context.WithCancel(context.Background())
	eventsDone := make(chan struct{})
	var orderEvents service.OrderPublisher = publisher.NopPublisher{}
	if cfg.EventsEnabled() {
		pub := publisher.NewKafkaPublisher(publisher.Config{
			Brokers:   cfg.Events.Brokers,
			Topic:     cfg.Events.Topic,
			QueueSize: cfg.Events.QueueSize,
		})
		defer pub.Close()
		go func() {
			pub.Run(eventsCtx)
			close(eventsDone)
		}()
		orderEvents = pub
		logger.Info().Strs("brokers", cfg.Events.Brokers).Str("topic", cfg.Events.Topic).Msg("order events enabled")
	} else {
		close(eventsDone)
	}

	svc := service.NewCartService(cat, cartStore,
		service.WithDeliveryDays(cfg.DeliveryDays),
		service.WithPublisher(orderEvents),
	)
	cartHandler := h.NewCartHandler(svc, cfg.RequestTimeout)
	router := h.NewRouter(cartHandler, h.RouterConfig{
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		Logger:             logger.Logger(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "grocery-service"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	healthServer := cartgrpc.NewHealthServer(cartStore)
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		logger.Fatal().Err(err).Str("port", cfg.GRPCPort).Msg("failed to listen")
	}
	go healthServer.Watch(ctx, 5*time.Second)

	go func() {
		logger.Info().Str("port", cfg.GRPCPort).Msg("gRPC health server listening")
		if err := healthServer.Serve(lis); err != nil {
			logger.Error().Err(err).Msg("gRPC server stopped")
		}
	}()

	go func() {
		logger.Info().Str("port", cfg.HTTPPort).Msg("grocery service starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()

	logger.Info().Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	healthServer.Stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	stopEvents()
	<-eventsDone

	logger.Info().Msg("server exited")
}

func loadCatalog(ctx context.Context, cfg config.CatalogConfig) (*catalog.Catalog, error) {
	switch cfg.Source {
	case config.CatalogYAML:
		return catalog.LoadYAML(cfg.File)
	case config.CatalogSQLite:
		repo, err := catalog.NewSQLiteRepository(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return loadFromRepository(ctx, repo)
	case config.CatalogPostgres:
		repo, err := catalog.NewPostgresRepository(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return loadFromRepository(ctx, repo)
	default:
		return catalog.Default(), nil
	}
}

// loadFromRepository migrates the catalog database, reads it once and closes it.
func loadFromRepository(ctx context.Context, repo *catalog.Repository) (*catalog.Catalog, error) {
	defer repo.Close()

	if err := repo.RunMigrations(); err != nil {
		return nil, err
	}
	return repo.Load(ctx)
}

func newCartStore(ctx context.Context, cfg *config.Config) (store.CartStore, error) {
	switch cfg.CartStore {
	case config.StoreRedis:
		client, err := store.NewRedisClient(ctx, store.RedisOptions{
			URL:          cfg.Redis.URL,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
			DialTimeout:  cfg.Redis.DialTimeout,
		})
		if err != nil {
			return nil, err
		}
		return store.NewRedisStore(client, cfg.Redis.CartTTL), nil
	case config.StoreMongo:
		db, err := store.ConnectMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.DBName)
		if err != nil {
			return nil, err
		}
		mongoStore := store.NewMongoStore(db)
		if err := mongoStore.CreateIndexes(ctx); err != nil {
			mongoStore.Close()
			return nil, err
		}
		return mongoStore, nil
	default:
		return store.NewMemoryStore(), nil
	}
}
