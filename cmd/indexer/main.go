// Package main runs the multi-chain asset indexer: the ingestion core,
// its HTTP/WebSocket API and the Prometheus metrics endpoint.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zeno-studio/zeno-indexer/internal/api"
	"github.com/zeno-studio/zeno-indexer/internal/ingest"
	"github.com/zeno-studio/zeno-indexer/internal/observability"
	"github.com/zeno-studio/zeno-indexer/internal/storage"
	chstore "github.com/zeno-studio/zeno-indexer/internal/storage/clickhouse"
	"github.com/zeno-studio/zeno-indexer/internal/storage/memory"
	"github.com/zeno-studio/zeno-indexer/internal/storage/migrations"
	pgstore "github.com/zeno-studio/zeno-indexer/internal/storage/postgres"
)

// allStores holds the storage implementations the service runs on.
type allStores struct {
	chains    storage.ChainStore
	entities  storage.EntityStore
	metadata  storage.MetadataStore
	snapshots storage.MarketSnapshotStore
	rings     storage.PriceRingStore
	daily     storage.DailyPriceStore
	ledger    storage.LedgerStore
	hotSet    storage.HotSetStore

	// dailyMirror is the optional ClickHouse copy of the daily series.
	dailyMirror storage.DailyPriceStore
}

func main() {
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (optional daily-series mirror)")
	listenAddr := flag.String("listen", ":8080", "API HTTP address")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")
	ringCapacity := flag.Int("ring-capacity", ingest.DefaultRingCapacity, "Point capacity of the 15-minute price window")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	flag.Parse()

	logger := log.New(os.Stdout, "[indexer] ", log.LstdFlags|log.Lshortfile)

	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	metrics := observability.NewMetrics("")

	service := ingest.NewService(ingest.ServiceOptions{
		Chains:       stores.chains,
		Entities:     stores.entities,
		Metadata:     stores.metadata,
		Snapshots:    stores.snapshots,
		Rings:        stores.rings,
		Daily:        stores.daily,
		Ledger:       stores.ledger,
		HotSet:       stores.hotSet,
		DailyMirror:  stores.dailyMirror,
		RingCapacity: *ringCapacity,
		Metrics:      metrics,
		Logger:       logger,
	})

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	apiServer := api.NewServer(service, logger)
	httpServer := &http.Server{
		Addr:              *listenAddr,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle shutdown signals with graceful timeout
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("HTTP shutdown error: %v", err)
		}
		cancel()
	}()

	logger.Printf("Starting API server on %s", *listenAddr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("API server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores builds the storage layer, running migrations first.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool, logger *log.Logger) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			chains:    memory.NewChainStore(),
			entities:  memory.NewEntityStore(),
			metadata:  memory.NewMetadataStore(),
			snapshots: memory.NewMarketSnapshotStore(),
			rings:     memory.NewPriceRingStore(),
			daily:     memory.NewPriceDailyStore(),
			ledger:    memory.NewLedgerStore(),
			hotSet:    memory.NewHotSetStore(),
		}
		return stores, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	stores := &allStores{
		chains:    pgstore.NewChainStore(pool),
		entities:  pgstore.NewEntityStore(pool),
		metadata:  pgstore.NewMetadataStore(pool),
		snapshots: pgstore.NewMarketSnapshotStore(pool),
		rings:     pgstore.NewPriceRingStore(pool),
		daily:     pgstore.NewPriceDailyStore(pool),
		ledger:    pgstore.NewLedgerStore(pool),
		hotSet:    pgstore.NewHotSetStore(pool),
	}

	cleanup := func() { pool.Close() }

	// The ClickHouse mirror is optional; the daily series is always
	// authoritative in PostgreSQL.
	if clickhouseDSN != "" {
		chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		stores.dailyMirror = chstore.NewPriceDailyStore(chConn)
		cleanup = func() {
			chConn.Close()
			pool.Close()
		}
		logger.Println("ClickHouse daily-series mirror enabled")
	}

	return stores, cleanup, nil
}
