package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/AutoVinReports/VinFox/app/controllers"
	"github.com/AutoVinReports/VinFox/app/repository"
	"github.com/AutoVinReports/VinFox/internal/pkg/cache"
	"github.com/AutoVinReports/VinFox/internal/pkg/carsimulcast"
	"github.com/AutoVinReports/VinFox/internal/pkg/constants"
	"github.com/AutoVinReports/VinFox/internal/pkg/database"
	"github.com/AutoVinReports/VinFox/internal/pkg/env"
	"github.com/AutoVinReports/VinFox/internal/pkg/fulfillment"
	"github.com/AutoVinReports/VinFox/internal/pkg/mail"
	"github.com/AutoVinReports/VinFox/internal/pkg/payments"
	"github.com/AutoVinReports/VinFox/internal/pkg/report"
	"github.com/AutoVinReports/VinFox/internal/pkg/retry"
	"github.com/AutoVinReports/VinFox/internal/pkg/router"
	"github.com/AutoVinReports/VinFox/internal/pkg/s3store"
)

func main() {
	app, queue, reconciler := NewApplication()

	queue.Start()
	reconciler.Start()

	// Drain the queue before the listener goes away so in-flight
	// fulfillments finish instead of landing back on the stuck sweeper.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("[App] Shutdown signal received")
		reconciler.Stop()
		queue.Stop()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000"))
	if err := app.Listen(addr); err != nil {
		log.Fatal(err)
	}
}

// NewApplication builds the fiber app with all dependencies wired, plus the
// fulfillment queue and reconciler the caller is responsible for starting.
func NewApplication() (*fiber.App, *fulfillment.Queue, *fulfillment.Reconciler) {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	repos := repository.NewFactory(database.GetDB()).GetRepositories()

	provider := carsimulcast.NewClientFromEnv()
	gateway := payments.NewAdapterFromEnv()
	mailer := mail.NewResendMailerFromEnv()
	artifacts := newArtifactProvider(provider)

	fulfiller := &fulfillment.Fulfiller{
		Provider:  artifacts,
		Mailer:    mailer,
		Purchases: repos.Purchase,
	}
	queue := fulfillment.NewQueue(cache.GetClient(), fulfiller, 2)
	reconciler := fulfillment.NewReconciler(repos.Purchase, queue)

	server := controllers.NewServer(provider, gateway, mailer, queue, repos)

	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024,
	})
	app.Use(recover.New(), logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: env.GetEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
		AllowMethods: "GET,POST",
		AllowHeaders: "Content-Type,Stripe-Signature",
	}))
	app.Get(constants.RouteMetrics, monitor.New())

	router.InstallRouter(app, router.NewHttpRouter(server))

	return app, queue, reconciler
}

// newArtifactProvider assembles the report pipeline from the environment:
// a polling provider (converting or link passthrough) behind an artifact
// cache backed by S3 when configured, local disk otherwise.
func newArtifactProvider(api *carsimulcast.Client) report.ArtifactProvider {
	poll := retry.Fixed(5, 3*time.Second)

	var inner report.ArtifactProvider
	if env.GetEnv("REPORT_DELIVERY", "pdf") == "link" {
		inner = &report.LinkProvider{API: api, Poll: poll}
	} else {
		inner = &report.ConvertingProvider{API: api, Poll: poll}
	}

	return &report.CachingProvider{Inner: inner, Store: newArtifactStore()}
}

// newArtifactStore picks the artifact cache backend: S3 when configured and
// reachable, local disk otherwise. A misconfigured or unreachable S3 store
// degrades to disk instead of blocking startup.
func newArtifactStore() report.ArtifactStore {
	fileStore := func() report.ArtifactStore {
		return report.NewFileStore(env.GetEnv("REPORT_CACHE_DIR", "./data/reports"))
	}

	cfg, err := s3store.LoadConfig()
	if err != nil {
		log.Errorf("[App] Invalid S3 store config, falling back to local disk: %v", err)
		return fileStore()
	}
	if !cfg.Enabled {
		return fileStore()
	}

	s3, err := s3store.NewClient(cfg)
	if err != nil {
		log.Errorf("[App] S3 store unavailable, falling back to local disk: %v", err)
		return fileStore()
	}
	return s3
}
