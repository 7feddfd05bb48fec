package main

import (
	"net/http"
	"os"
	"time"

	"diabetes-care-backend/internal/adapters/auth/jwtverifier"
	"diabetes-care-backend/internal/platform/logger"
	"diabetes-care-backend/internal/ports/auth"
	"diabetes-care-backend/internal/router"
)

func main() {
	log := logger.NewFromEnv()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	// Sin AUTH_JWT_SECRET corre en modo dev (X-Debug-User-ID).
	var verifier auth.AuthVerifier
	if secret := os.Getenv("AUTH_JWT_SECRET"); secret != "" {
		verifier = jwtverifier.New(jwtverifier.Config{
			Secret: secret,
			Issuer: os.Getenv("AUTH_JWT_ISSUER"),
			Leeway: 30 * time.Second,
		})
	} else {
		log.Warn("AUTH_JWT_SECRET not set, running in dev auth mode", nil)
	}

	r := router.NewRouter(router.Options{
		AuthVerifier: verifier,
		Log:          log,
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
