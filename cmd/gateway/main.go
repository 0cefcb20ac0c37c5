package main

import (
	"os"

	"github.com/geocoder89/learnhub/internal/config"
	"github.com/geocoder89/learnhub/internal/gateway"
	"github.com/geocoder89/learnhub/internal/health"
	httpx "github.com/geocoder89/learnhub/internal/http"
	"github.com/geocoder89/learnhub/internal/server"
)

func main() {
	rt := server.Bootstrap(config.Gateway)
	cfg := rt.Config

	registry := gateway.NewRegistry(cfg.ServiceURLs, config.ServiceNames)
	fwd := gateway.NewForwarder(registry, cfg.ForwardTimeout, rt.Prom)
	checker := health.NewAggregator(registry.Targets(), cfg.ProbeTimeout, rt.Prom)

	rt.Log.Info("gateway routes", "services", registry.Names(), "routes", len(gateway.Routes))

	if err := rt.Serve(httpx.NewGatewayRouter(rt.Base(), registry, fwd, checker)); err != nil {
		rt.Log.Error("server failed", "err", err)
		os.Exit(1)
	}
}
