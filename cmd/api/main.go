package main

import (
	"context"
	"fmt"
	"net/http"

	"geosearch-api/internal/config"
	"geosearch-api/internal/handler"
	"geosearch-api/internal/logger"
	"geosearch-api/internal/repository"
	"geosearch-api/internal/service"

	_ "geosearch-api/docs"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

//	@title			Restaurant Geosearch API
//	@version		1.0
//	@description	Finds restaurants within a radius of a point.
//	@BasePath		/

func main() {
	config, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	if err := logger.Setup(config.LogLevel, config.LogFormat); err != nil {
		log.Fatal().Err(err).Msg("cannot set up logger")
	}

	// Search backend
	repo, closeRepo, err := newSearchRepository(context.Background(), config)
	if err != nil {
		log.Fatal().Err(err).Str("backend", config.SearchBackend).Msg("cannot connect to search backend")
	}
	defer closeRepo()

	// Initialize layers
	searchService := service.NewSearchService(repo, config.SearchBackend, config.SearchTimeout)
	searchHandler := handler.NewSearchHandler(searchService)

	gin.SetMode(gin.ReleaseMode)
	r := handler.NewRouter(searchHandler, handler.RouterOptions{StaticDir: config.StaticDir})

	log.Info().
		Str("address", config.ServerAddress).
		Str("backend", config.SearchBackend).
		Msg("server listening")
	if err := r.Run(config.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func newSearchRepository(ctx context.Context, cfg config.Config) (service.SearchRepository, func(), error) {
	switch cfg.SearchBackend {
	case config.BackendSolr:
		client := &http.Client{Timeout: cfg.SearchTimeout}
		return repository.NewSolrRepository(cfg.SolrURL, client), func() {}, nil

	case config.BackendElastic:
		client, err := repository.NewElasticClient(cfg.ElasticURL)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewElasticRepository(client, cfg.ElasticIndex), client.Stop, nil

	case config.BackendPostGIS:
		conn, err := pgxpool.New(ctx, cfg.DBSource)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRepository(conn), conn.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown search backend %q", cfg.SearchBackend)
	}
}
