package container

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"woocommerce/migrator/internal/client"
	"woocommerce/migrator/internal/config"
	"woocommerce/migrator/internal/oauth"
	"woocommerce/migrator/internal/proxy"
	"woocommerce/migrator/internal/report"
	"woocommerce/migrator/internal/server"
	"woocommerce/migrator/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config      *config.Config
	Source      client.SourceClient
	Destination client.DestinationClient
	Reports     report.Store

	Service *service.Service

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	if err := ConfigureLogging(cfg.Log); err != nil {
		return nil, err
	}

	container := &Container{
		Config: cfg,
	}

	proxySupplier := proxy.NewProxySupplier(ctx, cfg.Source.Proxies, cfg.Source.URL+"/wp-json/", nil)

	container.Source = client.NewSourceClient(cfg.Source, proxySupplier)
	container.Destination = client.NewDestinationClient(
		cfg.Destination,
		oauth.NewSigner(cfg.Destination.ConsumerKey, cfg.Destination.ConsumerSecret),
	)

	reports, err := container.newReportStore(ctx)
	if err != nil {
		container.Close()
		return nil, err
	}
	container.Reports = reports

	container.Service = service.NewService(
		container.Source,
		container.Destination,
		reports,
		cfg.Destination.AttributeIDMap,
	)

	log.Infof("✅ Migrating from %s to %s", cfg.Source.URL, cfg.Destination.StoreURL())

	return container, nil
}

func (c *Container) newReportStore(ctx context.Context) (report.Store, error) {
	switch c.Config.Reports.Backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     c.Config.Redis.Addr(),
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.Database,
		})
		c.redis = rdb

		// Test connection
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("✅ Connected to Redis successfully")

		return report.NewRedisStore(rdb, c.Config.Redis.KeyPrefix, c.Config.Reports.Limit), nil

	case "postgres":
		db, err := pgxpool.New(ctx, c.Config.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to create database pool: %w", err)
		}
		c.db = db

		if err := db.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		log.Info("✅ Connected to database successfully")

		return report.NewPostgresStore(ctx, db)

	default:
		return report.NewMemoryStore(c.Config.Reports.Limit), nil
	}
}

// Run serves the trigger routes until ctx is cancelled, then drains in-flight
// requests within the configured shutdown timeout.
func (c *Container) Run(ctx context.Context) error {
	if log.IsLevelEnabled(log.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	httpServer := &http.Server{
		Addr:    c.Config.Server.Addr(),
		Handler: server.NewEngine(ctx, c.Service, c.Reports),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("🔗 Listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("🛑 Shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(c.Config.Server.ShutdownTimeout)*time.Second)
		defer cancel()

		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close performs cleanup when shutting down
func (c *Container) Close() {
	log.Info("Shutting down container...")

	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			log.Warnf("Failed to close Redis client: %v", err)
		}
	}

	log.Info("Container shut down successfully")
}
