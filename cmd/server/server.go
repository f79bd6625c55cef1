package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/ardanlabs/conf/v3"
	"github.com/go-redis/redis/v8"
	"github.com/irsalhamdi/cart-admin/api"
	"github.com/irsalhamdi/cart-admin/config"
	"github.com/irsalhamdi/cart-admin/core/auth"
	"github.com/irsalhamdi/cart-admin/core/cart"
	"github.com/irsalhamdi/cart-admin/core/catalog"
	"github.com/irsalhamdi/cart-admin/rate"
	"github.com/irsalhamdi/cart-admin/telemetry"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if err := Run(log); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func Run(logger *logrus.Logger) error {
	logger.Infof("starting server")
	defer logger.Info("shutdown complete")

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	const prefix = "CARTADMIN"
	var cfg config.Config
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	if out, err := conf.String(&cfg); err == nil {
		logger.Infof("config:\n%s", out)
	}

	lw := logger.Writer()
	defer lw.Close()
	errLog := log.New(lw, "", 0)

	if cfg.Trace.Enabled {
		stop, err := telemetry.Start(cfg.Trace.ServiceName, os.Stdout)
		if err != nil {
			return fmt.Errorf("starting tracing: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := stop(ctx); err != nil {
				logger.WithField("message", err).Warn("flushing traces")
			}
		}()
	}

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.Session.Lifetime
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode

	switch cfg.Session.Store {
	case "memory":
		sessionManager.Store = memstore.New()
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Session.RedisAddress,
			Password: cfg.Session.RedisPassword,
			DB:       cfg.Session.RedisDB,
		})
		defer rdb.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect to redis at %s: %w", cfg.Session.RedisAddress, err)
		}
		sessionManager.Store = auth.NewRedisStore(rdb)
	default:
		return fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}

	httpClient := telemetry.Client(&http.Client{Timeout: cfg.Catalog.Timeout})
	cat, err := catalog.New(cfg.Catalog.URL, httpClient)
	if err != nil {
		return fmt.Errorf("failed to build the catalog client: %w", err)
	}

	op, err := auth.NewOperator(cfg.Auth.Username, cfg.Auth.Password, cfg.Auth.MinPasswordLength)
	if err != nil {
		return fmt.Errorf("configuring operator: %w", err)
	}

	tokens, err := auth.NewTokens(cfg.Auth.TokenSecret, cfg.Auth.TokenLifetime)
	if err != nil {
		return fmt.Errorf("configuring tokens: %w", err)
	}

	limiter := rate.NewLimiter(cfg.Rate.Burst, time.Duration(cfg.Rate.Expiry)*time.Minute, cfg.Rate.RPS)
	defer limiter.Stop()

	mux := api.APIMux(api.APIConfig{
		Log:          logger,
		Session:      sessionManager,
		Products:     cat,
		Remote:       cat,
		Carts:        cart.NewService(cat, logger, cart.WithFanOut(cfg.Catalog.FanOut)),
		Operator:     op,
		Tokens:       tokens,
		Limiter:      limiter,
		AuthRequired: cfg.Auth.Required,
		UserID:       cfg.Catalog.UserID,
	})

	crs := cors.New(cors.Options{
		AllowedOrigins:   cfg.Cors.Origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "X-Total-Count"},
		AllowCredentials: true,
	})

	var handler http.Handler = crs.Handler(mux)
	if cfg.Trace.Enabled {
		handler = telemetry.Handler(handler, cfg.Trace.ServiceName)
	}

	api := http.Server{
		Handler:      handler,
		Addr:         cfg.Web.Address,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     errLog,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Infof("starting api router at %s", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Infof("shutting down: signal %s", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}
	return nil
}
