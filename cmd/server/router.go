package main

import (
	"net/http"

	"github.com/tianzhicdev/dogetionary-sub002/internal/api"
)

// setupRouter builds the HTTP handler from the application's services.
func (app *application) setupRouter() http.Handler {
	return api.NewRouter(api.RouterDeps{
		JWTService:     app.jwtService,
		ReviewService:  app.reviewService,
		Registry:       app.registry,
		AllowedOrigins: app.config.Server.AllowedOrigins,
		Logger:         app.logger,
	})
}
