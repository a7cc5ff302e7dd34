package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_pharmacy/internal/cache"
	"github.com/fjod/go_pharmacy/internal/catalog"
	"github.com/fjod/go_pharmacy/internal/checkout"
	"github.com/fjod/go_pharmacy/internal/config"
	"github.com/fjod/go_pharmacy/internal/domain"
	"github.com/fjod/go_pharmacy/internal/events"
	grpcserver "github.com/fjod/go_pharmacy/internal/grpc"
	h "github.com/fjod/go_pharmacy/internal/http"
	"github.com/fjod/go_pharmacy/internal/logger"
	"github.com/fjod/go_pharmacy/internal/orders"
	"github.com/fjod/go_pharmacy/internal/publisher"
	"github.com/fjod/go_pharmacy/internal/session"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("storefront stopped", "error", err)
	}
	log.Info("storefront stopped")
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Catalog
	repo, err := catalog.NewRepository(cfg.CatalogDBPath)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(); err != nil {
		return fmt.Errorf("migrate catalog: %w", err)
	}
	validateCatalog(ctx, repo, log)

	catalogCache, redisClient := newCatalogCache(ctx, cfg, log)
	if redisClient != nil {
		defer redisClient.Close()
	}
	catalogService := catalog.NewService(repo, catalogCache, log)
	if _, err := catalogService.Refresh(ctx); err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	// Orders
	submitter := newSubmitter(cfg, log)
	sequencer := checkout.NewSequencer(submitter, domain.DefaultAddresses(), checkout.Config{
		SubmitTimeout: cfg.OrderSubmitTimeout,
		MaxAttempts:   cfg.OrderSubmitAttempts,
		RetryBackoff:  cfg.OrderRetryBackoff,
	}, log)

	// Events
	var sinks []events.Sink
	var pub *publisher.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		pub = publisher.NewPublisher(publisher.Config{
			Brokers:   cfg.KafkaBrokers,
			Topic:     cfg.KafkaTopic,
			QueueSize: cfg.EventQueueSize,
		}, log)
		sinks = append(sinks, pub)
		log.Info("publishing storefront events", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	store := session.NewStore(session.Config{
		TTL:             cfg.SessionTTL,
		CleanupInterval: cfg.SessionCleanupInterval,
	}, log, sinks...)
	defer store.Close()

	streamsDone := make(chan struct{})
	routerCfg := h.RouterConfig{
		Catalog:        catalogService,
		Sessions:       store,
		Checkout:       sequencer,
		Log:            log,
		RequestTimeout: cfg.RequestTimeout,
		MaxBodySize:    cfg.MaxRequestBodySize,
		StreamsDone:    streamsDone,
	}
	if cfg.ServeOrderSimulator {
		simulator := orders.NewSimulated(cfg.SimulatedLatency, orders.RandomDecider{FailurePercent: cfg.SimulatedFailurePercent})
		routerCfg.OrderService = orders.NewHandler(simulator, log)
		log.Info("serving simulated order service", "path", "/api/v1/orders")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           otelhttp.NewHandler(h.NewRouter(routerCfg), "storefront"),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		// No WriteTimeout: the event stream stays open for as long as the client listens.
		IdleTimeout: 60 * time.Second,
	}
	srv.RegisterOnShutdown(func() { close(streamsDone) })

	ops := grpcserver.NewOpsServer(log)
	grpcLis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("listen on grpc port %s: %w", cfg.GRPCPort, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info("grpc ops server starting", "port", cfg.GRPCPort)
		if err := ops.Serve(grpcLis); err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		ops.Watch(gctx, 15*time.Second, readinessChecks(catalogService)...)
		return nil
	})

	// The publisher outlives the HTTP server so events of in-flight requests are still sent.
	pubCtx, stopPublisher := context.WithCancel(context.Background())
	defer stopPublisher()
	if pub != nil {
		g.Go(func() error {
			pub.Run(pubCtx)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		stopInOrder(shutdownCtx, log, srv, ops.Stop, stopPublisher)
		return nil
	})

	err = g.Wait()

	if pub != nil {
		if cerr := pub.Close(); cerr != nil {
			log.Warn("failed to close publisher", "error", cerr)
		}
		stats := pub.Stats()
		log.Info("publisher closed", "published", stats.Published, "dropped", stats.Dropped, "failed", stats.Failed)
	}
	return err
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// stopInOrder stops the ops server, then the HTTP server (which ends open event streams and
// waits for in-flight requests), and only then lets the publisher drain.
func stopInOrder(ctx context.Context, log *logger.Logger, srv shutdowner, stopOps, stopPublisher func()) {
	defer stopPublisher()
	stopOps()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
}

// validateCatalog reports seed rows whose discount does not match their prices. The
// catalog is still served.
func validateCatalog(ctx context.Context, repo *catalog.Repository, log *logger.Logger) {
	products, err := repo.ListProducts(ctx)
	if err != nil {
		log.Warn("failed to read catalog for validation", "error", err)
		return
	}
	for _, p := range products {
		if err := p.Validate(); err != nil {
			log.Warn("inconsistent catalog entry", "product_id", p.ID, "error", err)
		}
	}
	log.Info("catalog loaded", "products", len(products))
}

func newCatalogCache(ctx context.Context, cfg *config.Config, log *logger.Logger) (cache.CatalogCache, *redis.Client) {
	if cfg.RedisAddr == "" {
		return cache.Noop{}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		// The cache is optional; reads fall through to the catalog while Redis is away.
		log.Warn("redis unreachable at startup", "addr", cfg.RedisAddr, "error", err)
	}
	return cache.NewRedisCache(client, "storefront", cfg.CatalogCacheTTL), client
}

func newSubmitter(cfg *config.Config, log *logger.Logger) orders.Submitter {
	var next orders.Submitter
	if cfg.OrdersServiceURL != "" {
		next = orders.NewHTTPClient(cfg.OrdersServiceURL, cfg.OrderSubmitTimeout)
		log.Info("using remote order service", "url", cfg.OrdersServiceURL)
	} else {
		next = orders.NewSimulated(cfg.SimulatedLatency, orders.RandomDecider{FailurePercent: cfg.SimulatedFailurePercent})
		log.Info("using simulated order service", "failure_percent", cfg.SimulatedFailurePercent)
	}
	return orders.NewBreaker(next, orders.BreakerSettings{
		ConsecutiveFailures: uint32(cfg.BreakerFailures),
		OpenTimeout:         cfg.BreakerOpenTimeout,
	}, log)
}

// readinessChecks leaves Redis out: the catalog is served without the cache.
func readinessChecks(c *catalog.Service) []grpcserver.Check {
	return []grpcserver.Check{{
		Name: "catalog",
		Fn: func(ctx context.Context) error {
			_, err := c.Products(ctx)
			return err
		},
	}}
}
