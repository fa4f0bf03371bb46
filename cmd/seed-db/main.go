package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"

	"github.com/xenking/menukart/internal/domain/catalog"
	"github.com/xenking/menukart/internal/storage/file"
	"github.com/xenking/menukart/internal/storage/postgres"
)

func main() {
	var (
		databaseURL string
		menuFile    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&menuFile, "menu-file", "db/seed/menu.json", "path to the menu document (.json or .json.gz)")
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

	if err := run(ctx, databaseURL, menuFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, menuFile string) error {
	data, err := file.ReadDocument(ctx, menuFile)
	if err != nil {
		return errors.Wrap(err, "read menu")
	}
	c, err := catalog.Decode(data)
	if err != nil {
		return errors.Wrapf(err, "decode %s", menuFile)
	}
	slog.Info("menu decoded",
		slog.Int("categories", len(c.Categories)),
		slog.Int("products", len(c.Products)),
	)

	slog.Info("connecting to database")
	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect")
	}
	defer pool.Close()

	slog.Info("running migrations")
	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "migrations")
	}

	slog.Info("replacing catalog")
	if err := postgres.NewCatalogRepository(pool).Replace(ctx, c); err != nil {
		return errors.Wrap(err, "replace catalog")
	}
	return nil
}
