// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authfeature "github.com/dalemusser/markloft/internal/app/features/auth"
	bookmarksfeature "github.com/dalemusser/markloft/internal/app/features/bookmarks"
	groupsfeature "github.com/dalemusser/markloft/internal/app/features/groups"
	healthfeature "github.com/dalemusser/markloft/internal/app/features/health"
	bookmarkstore "github.com/dalemusser/markloft/internal/app/store/bookmarks"
	groupstore "github.com/dalemusser/markloft/internal/app/store/groups"
	userstore "github.com/dalemusser/markloft/internal/app/store/users"
	"github.com/dalemusser/markloft/internal/app/system/auth"
	"github.com/dalemusser/markloft/internal/app/system/favicon"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this
// WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and Startup have completed. The router mounts one feature subrouter
// per API area: auth, groups, bookmarks, and health.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Raw store errors only leave the process outside production.
	exposeErrors := coreCfg.Env != "prod"

	verifier := auth.NewGoogleVerifier(appCfg.GoogleClientID)
	icons := favicon.New(appCfg.FaviconTimeout, logger)

	users := userstore.New(deps.MongoDatabase)
	groups := groupstore.New(deps.MongoDatabase)
	bookmarks := bookmarkstore.New(deps.MongoDatabase, icons)

	r := chi.NewRouter()

	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	authHandler := authfeature.NewHandler(users, verifier, logger, exposeErrors)
	r.Mount("/auth", authfeature.Routes(authHandler, logger))

	groupsHandler := groupsfeature.NewHandler(groups, logger, exposeErrors)
	r.Mount("/groups", groupsfeature.Routes(groupsHandler, verifier, logger))

	bookmarksHandler := bookmarksfeature.NewHandler(bookmarks, logger, exposeErrors)
	r.Mount("/bookmarks", bookmarksfeature.Routes(bookmarksHandler, verifier, logger))

	return r, nil
}
