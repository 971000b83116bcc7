package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/dskvich/study-bot-api/pkg/api"
	"github.com/dskvich/study-bot-api/pkg/apidocs"
	"github.com/dskvich/study-bot-api/pkg/database"
	"github.com/dskvich/study-bot-api/pkg/logger"
	"github.com/dskvich/study-bot-api/pkg/repository"
	"github.com/dskvich/study-bot-api/pkg/services"
)

const startupCheckTimeout = 10 * time.Second

type Config struct {
	Port     int    `env:"PORT" envDefault:"3000"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	BunDebug int    `env:"BUNDEBUG" envDefault:"0"`
	DB       database.Config
}

func main() {
	slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, logger.DefaultOptions)))

	if err := runMain(); err != nil {
		slog.Error("shutting down due to error", logger.Err(err))
		os.Exit(1)
	}
	slog.Info("shutdown complete")
}

func runMain() error {
	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	cfg, err := parseConfig()
	if err != nil {
		return err
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, &logger.Options{Level: level})))

	svcGroup, err := setupServices(ctx, cfg)
	if err != nil {
		return err
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		select {
		case s := <-sigCh:
			slog.Info("shutting down due to signal", "signal", s.String())
			cancelFn()
		case <-ctx.Done():
		}
	}()

	return svcGroup.Start(ctx)
}

func parseConfig() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing env config: %w", err)
	}
	return cfg, nil
}

func setupServices(ctx context.Context, cfg Config) (services.Group, error) {
	var svcGroup services.Group

	db, err := database.NewDB(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}

	// An unreachable database is not fatal: the server starts and requests
	// fail with 500 until it comes back.
	checkCtx, cancel := context.WithTimeout(ctx, startupCheckTimeout)
	defer cancel()

	if err := database.Ping(checkCtx, db); err != nil {
		slog.Error("unable to connect to the database", logger.Err(err))
	} else if n, err := database.Migrate(db); err != nil {
		slog.Error("unable to synchronize schema", logger.Err(err))
	} else {
		slog.Info("schema synchronized", "applied_migrations", n)
	}

	questionRepository := repository.NewQuestionRepository(db)

	addr := net.JoinHostPort("", strconv.Itoa(cfg.Port))

	docs, err := apidocs.New(fmt.Sprintf("http://localhost:%d", cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("building api docs: %w", err)
	}

	router := api.NewRouter(questionRepository, api.PingFunc(db.PingContext), docs)

	if svc, err := services.NewHTTPServer(addr, router); err == nil {
		svcGroup = append(svcGroup, svc)
	} else {
		return nil, err
	}

	slog.Info("server is running", "url", fmt.Sprintf("http://localhost:%d", cfg.Port), "docs", fmt.Sprintf("http://localhost:%d%s", cfg.Port, apidocs.BasePath))

	return svcGroup, nil
}
