package main // Entry point package

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/storefront-api/internal/config"
	"github.com/iliyamo/storefront-api/internal/database"
	"github.com/iliyamo/storefront-api/internal/handler"
	"github.com/iliyamo/storefront-api/internal/logging"
	"github.com/iliyamo/storefront-api/internal/metrics"
	"github.com/iliyamo/storefront-api/internal/middleware"
	"github.com/iliyamo/storefront-api/internal/queue"
	"github.com/iliyamo/storefront-api/internal/repository"
	"github.com/iliyamo/storefront-api/internal/repository/memory"
	"github.com/iliyamo/storefront-api/internal/repository/mongostore"
	"github.com/iliyamo/storefront-api/internal/router"
	"github.com/iliyamo/storefront-api/internal/service"
	"github.com/iliyamo/storefront-api/internal/upload"
	"github.com/iliyamo/storefront-api/internal/utils"
)

// stores groups the three store contracts served by one backend.
type stores struct {
	users    service.UserStore
	carts    service.CartStore
	products service.ProductStore
	close    func()
}

func openStores(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (stores, error) {
	switch cfg.StoreDriver {
	case config.DriverMySQL:
		db, err := database.OpenMySQL(database.MySQLDSN(cfg.MySQL.User, cfg.MySQL.Pass, cfg.MySQL.Host, cfg.MySQL.Port, cfg.MySQL.Name))
		if err != nil {
			return stores{}, fmt.Errorf("open mysql: %w", err)
		}
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return stores{}, fmt.Errorf("migrate: %w", err)
		}
		return stores{
			users:    repository.NewUserRepo(db),
			carts:    repository.NewCartRepo(db),
			products: repository.NewProductRepo(db),
			close:    func() { _ = db.Close() },
		}, nil

	case config.DriverMongo:
		client, err := database.OpenMongo(cfg.Mongo.URL)
		if err != nil {
			return stores{}, fmt.Errorf("open mongo: %w", err)
		}
		s := mongostore.New(client.Database(cfg.Mongo.Database))
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return stores{}, fmt.Errorf("ensure indexes: %w", err)
		}
		return stores{users: s, carts: s, products: s, close: func() { _ = client.Disconnect(context.Background()) }}, nil

	default:
		log.Warn("using the in-memory store; data is lost on restart")
		s := memory.New()
		return stores{users: s, carts: s, products: s, close: func() {}}, nil
	}
}

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.Env, cfg.LogLevel, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("store unavailable")
	}
	defer st.close()

	tokens, err := utils.NewTokenService(cfg.JWTSecret)
	if err != nil {
		log.WithError(err).Fatal("token service")
	}

	var events service.EventPublisher = queue.Discard{}
	if cfg.Events.Enabled {
		events = queue.NewPublisher(cfg.Events.URL, log)
		consumer := queue.NewConsumer(cfg.Events.URL, cfg.Events.LogDir, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("events consumer stopped")
			}
		}()
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.WithField("addr", cfg.Redis.Addr).Warn("redis unavailable: response cache off, rate limiting in process")
	} else {
		defer rdb.Close()
	}

	var objects upload.ObjectPutter
	if cfg.Upload.S3.Enabled() {
		client, err := upload.NewS3Client(ctx, cfg.Upload.S3)
		if err != nil {
			log.WithError(err).Fatal("s3 client")
		}
		objects = client
	}
	images, err := upload.New(cfg.Upload, objects, log)
	if err != nil {
		log.WithError(err).Fatal("upload service")
	}

	if cfg.CatalogAdminKey == "" {
		log.Warn("CATALOG_ADMIN_KEY is not set: /addproduct and /removeproduct are open to anyone")
	}

	accounts := service.NewAccounts(st.users, tokens, events, log, service.AccountsConfig{
		BcryptCost:   cfg.BcryptCost,
		CartSlots:    cfg.CartSlots,
		StoreTimeout: cfg.StoreTimeout,
	})
	carts := service.NewCartEngine(st.carts, cfg.StoreTimeout, log)
	catalog := service.NewCatalog(st.products, events, cfg.StoreTimeout, log)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORS())
	e.Use(logging.RequestLogger(log))
	e.Use(metrics.Middleware())
	e.Use(middleware.NewTokenBucket(cfg.RateLimit, rdb, log))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(accounts))
	router.RegisterCart(e, handler.NewCartHandler(carts), tokens)
	router.RegisterCatalog(e, handler.NewProductHandler(catalog), middleware.NewResponseCache(cfg.Cache, rdb, log), cfg.CatalogAdminKey)
	router.RegisterUploads(e, handler.NewUploadHandler(images), images.Dir())

	addr := ":" + cfg.Port
	go func() {
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "store": cfg.StoreDriver}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
