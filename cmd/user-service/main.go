package main

import (
	"context"
	"os"
	"time"

	"github.com/geocoder89/learnhub/internal/auth"
	"github.com/geocoder89/learnhub/internal/config"
	"github.com/geocoder89/learnhub/internal/credentials"
	httpx "github.com/geocoder89/learnhub/internal/http"
	"github.com/geocoder89/learnhub/internal/server"
)

func main() {
	rt := server.Bootstrap(config.UserService)
	cfg := rt.Config

	if err := rt.OpenStore(context.Background()); err != nil {
		rt.Log.Error("store setup failed", "err", err)
		os.Exit(1)
	}

	verifier := credentials.NewVerifier(rt.Backend, auth.NewManager(cfg.TokenSecret))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err := verifier.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName)
	cancel()
	if err != nil {
		// the service still works without a seeded admin
		rt.Log.Warn("admin seeding failed", "err", err)
	}

	if err := rt.Serve(httpx.NewUserRouter(rt.Base(), verifier)); err != nil {
		rt.Log.Error("server failed", "err", err)
		os.Exit(1)
	}
}
