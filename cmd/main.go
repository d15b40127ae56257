package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/KotFed0t/stock_risk_client/config"
	"github.com/KotFed0t/stock_risk_client/data"
	"github.com/KotFed0t/stock_risk_client/data/cache"
	"github.com/KotFed0t/stock_risk_client/data/session"
	"github.com/KotFed0t/stock_risk_client/internal/converter/cliConverter"
	"github.com/KotFed0t/stock_risk_client/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/KotFed0t/stock_risk_client/internal/externalApi/stockApi"
	"github.com/KotFed0t/stock_risk_client/internal/reportGenerator/xslsxGenerator"
	"github.com/KotFed0t/stock_risk_client/internal/scheduler"
	"github.com/KotFed0t/stock_risk_client/internal/service/analysisWorkflow"
	"github.com/KotFed0t/stock_risk_client/internal/service/authService"
	"github.com/KotFed0t/stock_risk_client/internal/service/profileWorkflow"
	"github.com/KotFed0t/stock_risk_client/internal/service/searchService"
	"github.com/KotFed0t/stock_risk_client/internal/service/sessionStore"
	"github.com/KotFed0t/stock_risk_client/internal/tokenDecoder"
	"github.com/KotFed0t/stock_risk_client/internal/transport/cli"
	"github.com/KotFed0t/stock_risk_client/utils"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var (
		storage     sessionStore.Storage = session.NewFileStorage(cfg.Session.File)
		searchCache searchService.Cache  = cache.NopCache{}
	)

	if cfg.Redis.Enabled {
		redisClient, err := data.NewRedisClient(ctx, cfg)
		if err != nil {
			slog.Warn("redis unavailable, falling back to file session and no search cache", slog.String("err", err.Error()))
		} else {
			defer redisClient.Close()
			searchCache = cache.NewRedisCache(redisClient, cfg)
			if cfg.Session.Storage == "redis" {
				storage = session.NewRedisStorage(redisClient, cfg)
			}
		}
	}

	api := stockApi.New(cfg)

	store := sessionStore.New(storage, tokenDecoder.New(), api)
	api.SetTokenSource(store.Token)
	if err := store.Load(utils.CreateCtxWithRqID(ctx)); err != nil {
		slog.Error("can't load persisted session", slog.String("err", err.Error()))
	}

	analysis := analysisWorkflow.New(api)
	defer analysis.Close()

	profile := profileWorkflow.New(api, store)
	store.Subscribe(profile.OnSessionChange)

	deps := cli.Deps{
		Session:   store,
		Auth:      authService.New(api, store),
		Search:    searchService.New(api, searchCache),
		Analysis:  analysis,
		Profile:   profile,
		Report:    xslsxGenerator.New(),
		Scheduler: scheduler.New(),
	}

	drive, err := googleDriveApi.New(ctx, cfg)
	switch {
	case err == nil:
		deps.Storage = drive
	case !errors.Is(err, googleDriveApi.ErrNotConfigured):
		slog.Warn("report upload disabled", slog.String("err", err.Error()))
	}

	rootCmd := cli.NewRootCmd(cli.NewController(cfg, deps))
	if err = rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, cliConverter.ErrorResponse(err))
		return 1
	}

	return 0
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	// stdout is reserved for command output
	var w io.Writer = os.Stderr
	if cfg.LogFile != "" {
		w = &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     14,
			Compress:   true,
		}
	}

	log := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
