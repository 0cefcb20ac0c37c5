package main

import (
	"context"
	"os"

	"github.com/geocoder89/learnhub/internal/config"
	"github.com/geocoder89/learnhub/internal/domain/notification"
	httpx "github.com/geocoder89/learnhub/internal/http"
	"github.com/geocoder89/learnhub/internal/idgen"
	"github.com/geocoder89/learnhub/internal/notifications"
	"github.com/geocoder89/learnhub/internal/server"
	"github.com/geocoder89/learnhub/internal/store"
)

func main() {
	rt := server.Bootstrap(config.NotificationService)

	if err := rt.OpenStore(context.Background()); err != nil {
		rt.Log.Error("store setup failed", "err", err)
		os.Exit(1)
	}

	repo := store.NewTable[notification.Notification](rt.Backend, store.KindNotifications, idgen.Notification)
	mailer := notifications.NewLogMailerFromEnv()

	if err := rt.Serve(httpx.NewNotificationRouter(rt.Base(), repo, mailer)); err != nil {
		rt.Log.Error("server failed", "err", err)
		os.Exit(1)
	}
}
