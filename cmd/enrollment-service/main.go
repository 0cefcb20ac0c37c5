package main

import (
	"context"
	"os"

	"github.com/geocoder89/learnhub/internal/config"
	"github.com/geocoder89/learnhub/internal/domain/enrollment"
	httpx "github.com/geocoder89/learnhub/internal/http"
	"github.com/geocoder89/learnhub/internal/idgen"
	"github.com/geocoder89/learnhub/internal/server"
	"github.com/geocoder89/learnhub/internal/store"
)

func main() {
	rt := server.Bootstrap(config.EnrollmentService)

	if err := rt.OpenStore(context.Background()); err != nil {
		rt.Log.Error("store setup failed", "err", err)
		os.Exit(1)
	}

	repo := store.NewTable[enrollment.Enrollment](rt.Backend, store.KindEnrollments, idgen.Enrollment)

	if err := rt.Serve(httpx.NewEnrollmentRouter(rt.Base(), repo)); err != nil {
		rt.Log.Error("server failed", "err", err)
		os.Exit(1)
	}
}
