package handler

import (
	"net/http"
	"path/filepath"

	"geosearch-api/internal/metrics"
	"geosearch-api/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouterOptions configures the optional surfaces of the router.
type RouterOptions struct {
	// StaticDir, when set, is served at / for the browser front-end.
	StaticDir string
}

// NewRouter wires middleware and routes around the search handler.
func NewRouter(search *SearchHandler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		metrics.Middleware(),
		middleware.CORS(),
	)

	r.GET("/health", Health)
	r.GET("/api/search", search.Search)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if opts.StaticDir != "" {
		r.StaticFile("/", filepath.Join(opts.StaticDir, "index.html"))
		r.NoRoute(gin.WrapH(http.FileServer(http.Dir(opts.StaticDir))))
	}
	return r
}
