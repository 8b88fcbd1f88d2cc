package main

import (
	"context"
	"os"
	"time"

	config "github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/storefront/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront/internal/seed"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/DRSN-tech/storefront/pkg/postgres"
	"github.com/DRSN-tech/storefront/pkg/tr"
)

func main() {
	log := logger.NewSlogLogger()

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.Db)
	if err != nil {
		log.Errorf(err, "failed to connect to database")
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(log); err != nil {
		log.Errorf(err, "failed to run migrations")
		db.Close()
		os.Exit(1)
	}

	log.Infof("Creating sample data...")
	res, err := seed.Run(ctx,
		tr.NewManager(db.Pool),
		pgdb.NewCategoryRepo(db.Pool, pgdbConv.CategoryConverter{}),
		pgdb.NewProductRepo(db.Pool, pgdbConv.ProductConverter{}),
		log,
	)
	if err != nil {
		log.Errorf(err, "failed to seed catalog")
		db.Close()
		os.Exit(1)
	}

	log.Infof("Successfully created sample data: %d categories, %d products", res.Categories, res.Products)
}
