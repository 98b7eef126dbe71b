package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Backend names accepted by SEARCH_BACKEND.
const (
	BackendSolr    = "solr"
	BackendElastic = "elastic"
	BackendPostGIS = "postgis"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	ServerAddress string        `mapstructure:"SERVER_ADDRESS"`
	SearchBackend string        `mapstructure:"SEARCH_BACKEND"`
	SearchTimeout time.Duration `mapstructure:"SEARCH_TIMEOUT"`
	SolrURL       string        `mapstructure:"SOLR_URL"`
	ElasticURL    string        `mapstructure:"ELASTIC_URL"`
	ElasticIndex  string        `mapstructure:"ELASTIC_INDEX"`
	DBSource      string        `mapstructure:"DB_SOURCE"`
	LogLevel      string        `mapstructure:"LOG_LEVEL"`
	LogFormat     string        `mapstructure:"LOG_FORMAT"`
	StaticDir     string        `mapstructure:"STATIC_DIR"`
}

// LoadConfig reads configuration from app.env in path, then from the environment.
// A .env file in the working directory is loaded into the environment first if present.
// A missing app.env is not an error; defaults and environment variables apply.
func LoadConfig(path string) (config Config, err error) {
	if err = godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return config, fmt.Errorf("config: failed to load .env: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()

	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("config: failed to read config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("config: failed to decode config: %w", err)
	}

	if err = config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	// AutomaticEnv only resolves keys viper already knows about, so every key gets a default.
	v.SetDefault("SERVER_ADDRESS", ":3000")
	v.SetDefault("SEARCH_BACKEND", BackendSolr)
	v.SetDefault("SEARCH_TIMEOUT", time.Duration(0))
	v.SetDefault("SOLR_URL", "http://solr:8983/solr/restaurants")
	v.SetDefault("ELASTIC_URL", "http://elasticsearch:9200")
	v.SetDefault("ELASTIC_INDEX", "restaurants")
	v.SetDefault("DB_SOURCE", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("STATIC_DIR", "")
}

// Validate checks that the selected backend has what it needs to connect.
func (c Config) Validate() error {
	switch c.SearchBackend {
	case BackendSolr:
		if c.SolrURL == "" {
			return errors.New("config: SOLR_URL is required for the solr backend")
		}
	case BackendElastic:
		if c.ElasticURL == "" || c.ElasticIndex == "" {
			return errors.New("config: ELASTIC_URL and ELASTIC_INDEX are required for the elastic backend")
		}
	case BackendPostGIS:
		if c.DBSource == "" {
			return errors.New("config: DB_SOURCE is required for the postgis backend")
		}
	default:
		return fmt.Errorf("config: unknown search backend %q", c.SearchBackend)
	}
	return nil
}
