package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"geosearch-api/internal/config"
	"geosearch-api/internal/logger"
	"geosearch-api/internal/models"
	"geosearch-api/internal/repository"
	"geosearch-api/internal/retry"
	"geosearch-api/internal/seed"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/olivere/elastic/v7"
	"github.com/rs/zerolog/log"
)

const pollInterval = 2 * time.Second

func main() {
	file := flag.String("file", "", "Path to a restaurants CSV file (default: built-in sample data)")
	timeout := flag.Duration("timeout", 5*time.Minute, "How long to wait for the backend before giving up")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}
	if err := logger.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatal().Err(err).Msg("cannot set up logger")
	}

	restaurants := seed.SampleRestaurants()
	if *file != "" {
		log.Info().Str("file", *file).Msg("starting import from file")
		restaurants, err = seed.ParseCSVFile(*file)
		if err != nil {
			log.Fatal().Err(err).Msg("error parsing CSV")
		}
	}
	log.Info().Int("count", len(restaurants)).Msg("parsed records")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	if err := run(ctx, cfg, restaurants); err != nil {
		log.Fatal().Err(err).Str("backend", cfg.SearchBackend).Msg("error loading sample data")
	}
	log.Info().Int("count", len(restaurants)).Str("backend", cfg.SearchBackend).Msg("successfully imported records")
}

func run(ctx context.Context, cfg config.Config, restaurants []models.Restaurant) error {
	switch cfg.SearchBackend {
	case config.BackendSolr:
		core := repository.NewSolrRepository(cfg.SolrURL, &http.Client{Timeout: 30 * time.Second})
		store := seed.NewSolrStore(core, retry.DefaultPolicy, pollInterval, repository.IsUnavailable)
		return seed.Run(ctx, store, restaurants)

	case config.BackendElastic:
		client, err := connectElastic(ctx, cfg.ElasticURL)
		if err != nil {
			return err
		}
		defer client.Stop()
		store := seed.NewElasticStore(repository.NewElasticRepository(client, cfg.ElasticIndex), pollInterval)
		return seed.Run(ctx, store, restaurants)

	case config.BackendPostGIS:
		conn, err := pgxpool.New(ctx, cfg.DBSource)
		if err != nil {
			return fmt.Errorf("cannot connect to db: %w", err)
		}
		defer conn.Close()
		store := seed.NewPostGISStore(repository.NewRepository(conn), pollInterval)
		return seed.Run(ctx, store, restaurants)

	default:
		return fmt.Errorf("unknown search backend %q", cfg.SearchBackend)
	}
}

// connectElastic retries client creation, which fails while the node is still starting.
func connectElastic(ctx context.Context, url string) (*elastic.Client, error) {
	var client *elastic.Client
	err := retry.WaitUntil(ctx, pollInterval, func(context.Context) error {
		c, err := repository.NewElasticClient(url)
		if err != nil {
			log.Debug().Err(err).Msg("elasticsearch not online yet")
			return err
		}
		client = c
		return nil
	})
	return client, err
}
