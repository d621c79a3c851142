package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/netmove/example/internal/arena"
	"github.com/oomph-ac/netmove/server"
	"github.com/oomph-ac/netmove/settings"
	"github.com/sirupsen/logrus"
)

// The following program runs an authoritative movement server on the arena terrain.
func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})
	log.SetLevel(logrus.DebugLevel)

	set, err := settings.LoadOrCreate("netmove.toml")
	if err != nil {
		log.Fatalf("unable to load settings: %v", err)
	}

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
			log.Fatalf("unable to initialize sentry: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	if os.Getenv("PPROF_ENABLED") != "" {
		// set configurations before calling `statsview.New()` method
		viewer.SetConfiguration(viewer.WithTheme(viewer.ThemeWesteros), viewer.WithAddr("localhost:8080"))

		mgr := statsview.New()
		go mgr.Start()
	}

	world, err := arena.New()
	if err != nil {
		log.Fatalf("unable to generate arena: %v", err)
	}
	srv, err := server.New(log, server.Config{
		Settings: set,
		Ground:   world.Ground,
		Raycast:  world.Pillars,
		Spawn:    mgl64.Vec3{0, 2, 0},
	})
	if err != nil {
		log.Fatalf("unable to create server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, server.ErrServerClosed) {
		log.Errorf("server stopped: %v", err)
	}
	log.Info("server closed")
}
