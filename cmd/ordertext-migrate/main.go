// Command ordertext-migrate copies orders from a file blob (plain or
// gzip-compressed) into a PostgreSQL store, applying the schema first.
package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/allforyou/ordertext/internal/storage/file"
	"github.com/allforyou/ordertext/internal/storage/postgres"
)

func main() {
	var (
		storePath   string
		databaseURL string
		workers     int
	)

	flag.StringVar(&storePath, "store", "orders.json", "order blob path (.gz accepted)")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.IntVar(&workers, "workers", 4, "concurrent upsert workers")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, storePath, databaseURL, workers); err != nil {
		slog.Error("migration failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("migration completed successfully")
}

func run(ctx context.Context, storePath, databaseURL string, workers int) error {
	store, err := openBlob(storePath)
	if err != nil {
		return err
	}

	orders, err := store.GetAll(ctx)
	if err != nil {
		return errors.Wrap(err, "read orders")
	}
	slog.Info("order blob loaded", slog.String("store", storePath), slog.Int("orders", len(orders)))

	if len(orders) == 0 {
		slog.Info("nothing to migrate")
		return nil
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	pgStore := postgres.NewStore(pool)
	total := len(orders)

	var done atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for number, o := range orders {
		g.Go(func() error {
			if err := pgStore.Save(ctx, number, o); err != nil {
				return errors.Wrapf(err, "migrate order %q", number)
			}
			if n := done.Add(1); n%100 == 0 || n == int64(total) {
				slog.Info("migration progress", slog.Int64("migrated", n), slog.Int("total", total))
			}
			return nil
		})
	}
	return g.Wait()
}

// openBlob opens the order blob, transparently decompressing a .gz archive
// into a temp file first.
func openBlob(path string) (*file.Store, error) {
	if !strings.HasSuffix(path, ".gz") {
		store, err := file.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "open order store")
		}
		return store, nil
	}

	src, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open archive")
	}
	defer func() { _ = src.Close() }()

	gz, err := pgzip.NewReader(src)
	if err != nil {
		return nil, errors.Wrap(err, "read archive")
	}
	defer func() { _ = gz.Close() }()

	tmp, err := os.CreateTemp("", "ordertext-migrate-*.json")
	if err != nil {
		return nil, errors.Wrap(err, "create temp blob")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, gz); err != nil {
		_ = tmp.Close()
		return nil, errors.Wrap(err, "decompress archive")
	}
	if err := tmp.Close(); err != nil {
		return nil, errors.Wrap(err, "close temp blob")
	}

	store, err := file.Open(tmp.Name())
	if err != nil {
		return nil, errors.Wrap(err, "open order store")
	}
	return store, nil
}
