package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/events"
	httpapi "github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/http"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/logging"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/sales"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/scan"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/session"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("pos terminal stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := telemetry.Setup(cfg.TracingStdout)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	// --- Redis (cart and/or token store) ---
	var rdb *redis.Client
	if cfg.CartStore == "redis" || cfg.TokenStore == "redis" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb = redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
	}

	// --- Session ---
	httpClient := clients.NewHTTPClient(cfg.APITimeout)
	authBase := clients.NewClient("pos-api-auth", cfg.APIURL, httpClient, clients.WithLogger(logger))
	gate := session.NewGate(clients.NewAuthClient(authBase), tokenStore(cfg, rdb), logger)

	api := clients.NewClient("pos-api", cfg.APIURL, httpClient,
		clients.WithTokens(gate),
		clients.WithUnauthorizedHook(gate.Invalidate),
		clients.WithRetries(cfg.APIRetryMaxTries, nil),
		clients.WithLogger(logger),
	)
	productAPI := clients.NewProductClient(api)
	salesAPI := clients.NewSalesClient(api)

	// --- Catalog ---
	products := catalog.NewSource(productAPI, logger)
	inventory := catalog.NewInventory(productAPI, products, logger)

	// --- Cart ---
	store, closeStore, err := cartStore(ctx, cfg, rdb, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	carts := cart.NewManager(ctx, products, store, cfg.TerminalID, logger)
	gate.OnLogout(carts.Clear)

	// --- Events ---
	var publisher interface {
		checkout.EventPublisher
		io.Closer
	} = events.NoopPublisher{}
	if cfg.RabbitMQURL != "" {
		conn, err := events.DialRabbit(ctx, cfg.RabbitMQURL, logger)
		if err != nil {
			return err
		}
		defer conn.Close()
		p, err := events.NewPublisher(conn)
		if err != nil {
			return err
		}
		publisher = p
	}
	defer publisher.Close()

	submitter := checkout.NewSubmitter(salesAPI, carts, checkout.Options{
		TerminalID: cfg.TerminalID,
		Timeout:    cfg.CheckoutTimeout,
		Publisher:  publisher,
		Cashier:    gate,
	}, logger)

	// --- Startup: session, then products ---
	if err := gate.Restore(ctx); err != nil {
		logger.Info("stored session not restored", zap.Error(err))
	}
	if _, ok := gate.Current(); ok {
		if _, err := products.Load(ctx); err != nil {
			logger.Warn("initial product load failed", zap.Error(err))
		}
	}

	// --- Scanner ---
	if cfg.ScannerDevice != "" {
		src, closeSrc, err := openScanner(cfg.ScannerDevice)
		if err != nil {
			return err
		}
		defer closeSrc()
		scanner := scan.NewScanner(products, carts, gate, nil, logger)
		go func() {
			if err := scanner.Run(ctx, src); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("scanner stopped", zap.Error(err))
			}
		}()
	}

	// --- HTTP ---
	router := httpapi.NewRouter(httpapi.Deps{
		Logger:    logger,
		Cfg:       cfg,
		Session:   gate,
		Products:  products,
		Inventory: inventory,
		Cart:      carts,
		Checkout:  submitter,
		History:   sales.NewHistory(salesAPI, logger),
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           otelhttp.NewHandler(router, "pos-terminal"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("http listening", zap.String("addr", cfg.HTTPAddr), zap.String("terminal_id", cfg.TerminalID))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal", zap.String("signal", sig.String()))
	case runErr = <-errCh:
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = httpServer.Shutdown(shutdownCtx)
	cancel()

	logger.Info("shutdown complete")
	return runErr
}

func tokenStore(cfg config.Config, rdb *redis.Client) session.TokenStore {
	switch cfg.TokenStore {
	case "memory":
		return session.NewMemoryTokenStore()
	case "redis":
		return session.NewRedisTokenStore(rdb, cfg.TerminalID, cfg.TokenTTL)
	default:
		return session.NewFileTokenStore(cfg.TokenFile)
	}
}

func cartStore(ctx context.Context, cfg config.Config, rdb *redis.Client, logger *zap.Logger) (cart.Store, func(), error) {
	switch cfg.CartStore {
	case "memory":
		return cart.NewMemoryStore(), func() {}, nil
	case "redis":
		return cart.NewRedisStore(rdb, 0), func() {}, nil
	case "postgres":
		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("db connect: %w", err)
		}
		if cfg.RunMigrations {
			if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
				pool.Close()
				return nil, nil, fmt.Errorf("db migrate: %w", err)
			}
		}
		return cart.NewPostgresStore(pool), pool.Close, nil
	default:
		return cart.NewFileStore(cfg.CartFile), func() {}, nil
	}
}

// openScanner opens the scanner device; "-" reads codes from stdin.
func openScanner(device string) (scan.BarcodeSource, func(), error) {
	if device == "-" {
		return scan.NewLineSource(os.Stdin), func() {}, nil
	}
	f, err := os.Open(device)
	if err != nil {
		return nil, nil, fmt.Errorf("open scanner %s: %w", device, err)
	}
	return scan.NewLineSource(f), func() { _ = f.Close() }, nil
}
