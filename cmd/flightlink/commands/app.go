package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"flightlink-service/internal/domain/repository"
	"flightlink-service/internal/infrastructure/config"
	"flightlink-service/internal/infrastructure/oauth"
	"flightlink-service/internal/infrastructure/persistence"
	"flightlink-service/internal/interface/browser"
	repo "flightlink-service/internal/interface/repository"
	"flightlink-service/internal/interface/sheets"
	"flightlink-service/internal/usecase"
	"flightlink-service/pkg/logger"
	"flightlink-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// app holds the configuration and lazily opened backends of one command run
type app struct {
	cfg      *config.Config
	log      *logger.ZapLogger
	metrics  *metrics.Metrics
	bindings *browser.Bindings

	mongoClient *mongo.Client
	gormDB      *gorm.DB
	sqliteDB    *sql.DB
	links       repository.LinkRepository
	listings    repository.ListingRepository
	closers     []func() error
}

func newApp() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Starting flightlink", "version", cfg.AppVersion)

	bindings, err := browser.LoadBindings(cfg.BindingsFile)
	if err != nil {
		return nil, fmt.Errorf("load bindings: %w", err)
	}

	return &app{
		cfg:      cfg,
		log:      log,
		metrics:  metrics.NewMetrics("flightlink", nil),
		bindings: bindings,
	}, nil
}

// withApp runs fn with a fresh app, serving metrics alongside when configured
func withApp(ctx context.Context, fn func(ctx context.Context, a *app) error) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	if a.cfg.MetricsPort != "" {
		g.Go(func() error {
			return a.serveMetrics(gctx)
		})
	}
	g.Go(func() error {
		defer cancel()
		return fn(gctx, a)
	})
	return g.Wait()
}

func (a *app) serveMetrics(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})

	server := &http.Server{
		Addr:         ":" + a.cfg.MetricsPort,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("Starting metrics server", "port", a.cfg.MetricsPort)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		a.log.Error("Metrics server shutdown error", "error", err)
	}
	return nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Error("Close error", "error", err)
		}
	}
	a.log.Sync()
}

func (a *app) mongoDB(ctx context.Context) (*mongo.Database, error) {
	if a.mongoClient == nil {
		a.log.Info("Connecting to MongoDB")
		client, err := persistence.NewMongoClient(ctx, a.cfg.MongoURI, a.cfg.MongoUser, a.cfg.MongoPassword)
		if err != nil {
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}
		a.mongoClient = client
		a.closers = append(a.closers, func() error {
			return client.Disconnect(context.Background())
		})
	}
	return a.mongoClient.Database(a.cfg.MongoDB), nil
}

func (a *app) postgres() (*gorm.DB, error) {
	if a.gormDB == nil {
		a.log.Info("Connecting to PostgreSQL")
		db, err := persistence.NewPostgresDB(a.cfg.PostgresURI)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.gormDB = db
		if sqlDB, err := db.DB(); err == nil {
			a.closers = append(a.closers, sqlDB.Close)
		}
	}
	return a.gormDB, nil
}

func (a *app) sqlite() (*sql.DB, error) {
	if a.sqliteDB == nil {
		db, err := persistence.NewSQLiteDB(a.cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		a.sqliteDB = db
		a.closers = append(a.closers, db.Close)
	}
	return a.sqliteDB, nil
}

func (a *app) warnFresh(fresh bool) {
	if fresh && a.cfg.StoreBackend != config.BackendCSV {
		a.log.Warn("--fresh only truncates CSV stores, ignoring", "backend", a.cfg.StoreBackend)
	}
}

// linkRepository opens the link log of the configured store once. Later
// calls return the same store; fresh only applies to the first call.
func (a *app) linkRepository(ctx context.Context, fresh bool) (repository.LinkRepository, error) {
	if a.links != nil {
		return a.links, nil
	}
	links, err := a.openLinkRepository(ctx, fresh)
	if err != nil {
		return nil, err
	}
	a.links = links
	return links, nil
}

func (a *app) openLinkRepository(ctx context.Context, fresh bool) (repository.LinkRepository, error) {
	a.warnFresh(fresh)
	switch a.cfg.StoreBackend {
	case config.BackendCSV:
		r, err := repo.NewCSVLinkRepository(a.cfg.LinksFile, fresh)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, r.Close)
		return r, nil
	case config.BackendMongo:
		db, err := a.mongoDB(ctx)
		if err != nil {
			return nil, err
		}
		return repo.NewMongoLinkRepository(db, a.log), nil
	case config.BackendPostgres:
		db, err := a.postgres()
		if err != nil {
			return nil, err
		}
		return repo.NewGormLinkRepository(db)
	case config.BackendSQLite:
		db, err := a.sqlite()
		if err != nil {
			return nil, err
		}
		return repo.NewSQLiteLinkRepository(db), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", a.cfg.StoreBackend)
}

// listingRepository opens the listing store of the configured backend once
func (a *app) listingRepository(ctx context.Context, fresh bool) (repository.ListingRepository, error) {
	if a.listings != nil {
		return a.listings, nil
	}
	listings, err := a.openListingRepository(ctx, fresh)
	if err != nil {
		return nil, err
	}
	a.listings = listings
	return listings, nil
}

func (a *app) openListingRepository(ctx context.Context, fresh bool) (repository.ListingRepository, error) {
	a.warnFresh(fresh)
	switch a.cfg.StoreBackend {
	case config.BackendCSV:
		r, err := repo.NewCSVListingRepository(a.cfg.ListingsFile, fresh)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, r.Close)
		return r, nil
	case config.BackendMongo:
		db, err := a.mongoDB(ctx)
		if err != nil {
			return nil, err
		}
		return repo.NewMongoListingRepository(db, a.log), nil
	case config.BackendPostgres:
		db, err := a.postgres()
		if err != nil {
			return nil, err
		}
		return repo.NewGormListingRepository(db)
	case config.BackendSQLite:
		db, err := a.sqlite()
		if err != nil {
			return nil, err
		}
		return repo.NewSQLiteListingRepository(db), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", a.cfg.StoreBackend)
}

func (a *app) airportRepository() (repository.AirportRepository, error) {
	switch a.cfg.AirportSource {
	case config.BackendCSV:
		return repo.NewCSVAirportRepository(a.cfg.IATAFile), nil
	case config.BackendPostgres:
		db, err := a.postgres()
		if err != nil {
			return nil, err
		}
		return repo.NewGormAirportRepository(db), nil
	}
	return nil, fmt.Errorf("unknown airport source %q", a.cfg.AirportSource)
}

func (a *app) batchRepository(ctx context.Context) (repository.BatchRepository, error) {
	switch a.cfg.BatchSource {
	case config.BackendCSV:
		return repo.NewCSVBatchRepository(a.cfg.InputFile), nil
	case config.BackendSheets:
		googleOAuth := oauth.NewGoogleOAuth(
			a.cfg.GoogleClientID,
			a.cfg.GoogleClientSecret,
			a.cfg.GoogleRefreshToken,
			"",
			a.log,
		)
		tokenSource, err := googleOAuth.GetTokenSource(ctx)
		if err != nil {
			return nil, err
		}
		source, err := sheets.NewBatchSource(ctx, tokenSource, a.cfg.SheetsSpreadsheetID, a.cfg.SheetsRange, a.log)
		if err != nil {
			return nil, fmt.Errorf("open sheets batch source: %w", err)
		}
		return source, nil
	}
	return nil, fmt.Errorf("unknown batch source %q", a.cfg.BatchSource)
}

func (a *app) browserOptions() browser.Options {
	return browser.Options{
		Headless:  a.cfg.Headless,
		UserAgent: a.cfg.UserAgent,
	}
}

func (a *app) limiter() *rate.Limiter {
	if a.cfg.NavRatePerSec <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := a.cfg.NavBurst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(a.cfg.NavRatePerSec), burst)
}

func (a *app) orchestrator(
	links repository.LinkRepository,
	listings repository.ListingRepository,
	airports repository.AirportRepository,
) *usecase.Orchestrator {
	return usecase.NewOrchestrator(
		links,
		listings,
		airports,
		browser.NewChromeSessionFactory(a.browserOptions(), a.bindings, a.log),
		usecase.NewInputNormalizer(a.cfg.DefaultOrigin, a.cfg.DefaultDestination, a.log),
		usecase.NewCalendarNavigator(),
		usecase.NewLinkCapture(a.cfg.CaptureWindow, a.cfg.CaptureRejectPatterns, a.log),
		usecase.NewListingExtractor(a.bindings.Listings, a.log),
		a.limiter(),
		a.cfg.PageTimeout,
		a.metrics,
		a.log,
	)
}
