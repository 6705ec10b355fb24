// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for markloft.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, google_client_id, etc.
//   - Environment variables: MARKLOFT_MONGO_URI, MARKLOFT_GOOGLE_CLIENT_ID, etc.
//   - Command-line flags: --mongo_uri, --google_client_id, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "markloft", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Google Sign-In
	{Name: "google_client_id", Default: "", Desc: "Google client ID that issued tokens must be minted for"},

	// Favicon scraping
	{Name: "favicon_timeout", Default: "10s", Desc: "Per-request budget for favicon scraping (e.g., 10s, 30s)"},

	{Name: "base_url", Default: "http://localhost:3000", Desc: "Public base URL of this service"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// CoreConfig comes from the shared WAFFLE layer; AppConfig is specific
// to this app. Merging precedence: flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "MARKLOFT", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		GoogleClientID: appValues.String("google_client_id"),

		FaviconTimeout: appValues.Duration("favicon_timeout", 10*time.Second),

		BaseURL: appValues.String("base_url"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// The MongoDB URI is checked up front so a typo fails startup instead
// of the first query. The Google client ID is required outside dev:
// without it every bearer token would be rejected.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.GoogleClientID == "" && coreCfg.Env != "dev" {
		return fmt.Errorf("google_client_id is required outside dev")
	}

	return nil
}
