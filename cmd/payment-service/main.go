package main

import (
	"context"
	"os"

	"github.com/geocoder89/learnhub/internal/config"
	"github.com/geocoder89/learnhub/internal/domain/payment"
	httpx "github.com/geocoder89/learnhub/internal/http"
	"github.com/geocoder89/learnhub/internal/idgen"
	"github.com/geocoder89/learnhub/internal/notifications"
	"github.com/geocoder89/learnhub/internal/server"
	"github.com/geocoder89/learnhub/internal/store"
)

func main() {
	rt := server.Bootstrap(config.PaymentService)
	cfg := rt.Config

	if err := rt.OpenStore(context.Background()); err != nil {
		rt.Log.Error("store setup failed", "err", err)
		os.Exit(1)
	}

	repo := store.NewTable[payment.Payment](rt.Backend, store.KindPayments, idgen.Payment)

	// breaker opens after repeated notification-service failures
	notifier := notifications.NewProtectedNotifier(
		notifications.NewHTTPNotifier(cfg.ServiceURLs[config.NotificationService], cfg.NotifyTimeout),
		notifications.ProtectedNotifierConfig{Timeout: cfg.NotifyTimeout},
	)
	dispatcher := notifications.NewDispatcher(notifier, cfg.NotifyTimeout, rt.Prom)

	if err := rt.Serve(httpx.NewPaymentRouter(rt.Base(), repo, dispatcher)); err != nil {
		rt.Log.Error("server failed", "err", err)
		os.Exit(1)
	}
}
