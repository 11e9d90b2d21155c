package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
	"golang.org/x/sync/errgroup"

	"anveshan/cmd/buildCFG"
	"anveshan/internal/api/api"
	"anveshan/internal/consumerWorker"
	"anveshan/internal/mailer"
	"anveshan/internal/metrics"
	"anveshan/internal/notify"
	"anveshan/internal/rabbit"
	"anveshan/internal/ratelimit"
	"anveshan/internal/repo"
	"anveshan/internal/rules"
	"anveshan/internal/service"
)

var flagConfig = &cli.StringFlag{
	Name:    "config",
	Value:   "config.yaml",
	Usage:   "Path to the YAML configuration file",
	EnvVars: []string{"ANVESHAN_CONFIG"},
}

func main() {
	zlog.Init()
	log := zlog.Logger

	app := &cli.App{
		Name:           "anveshan",
		Usage:          "Pharma Anveshan 2026 registration API",
		Flags:          []cli.Flag{flagConfig},
		DefaultCommand: "serve",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "apply pending migrations and start the HTTP server",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "manage the database schema",
				Subcommands: []*cli.Command{
					{
						Name:   "up",
						Usage:  "apply all migrations",
						Action: func(cCtx *cli.Context) error { return migrate(cCtx, true) },
					},
					{
						Name:   "down",
						Usage:  "roll back all migrations, dropping stored registrations",
						Action: func(cCtx *cli.Context) error { return migrate(cCtx, false) },
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("anveshan exited with error")
	}
}

func loadConfig(cCtx *cli.Context) (buildCFG.Source, error) {
	cfg := config.New()
	if err := cfg.Load(cCtx.String(flagConfig.Name), "", ""); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func connectDB(ctx context.Context, cfg buildCFG.Source, log *zerolog.Logger) (*dbpg.DB, repo.Repository, error) {
	masterDSN, slaveDSNs, poolOptions, err := buildCFG.BuildDBConfig(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	db, err := dbpg.New(masterDSN, slaveDSNs, poolOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	if err := db.Master.PingContext(ctx); err != nil {
		_ = db.Master.Close()
		return nil, nil, fmt.Errorf("DB ping failed: %w", err)
	}
	log.Info().Msg("Database connected successfully")

	repository, err := repo.NewRepository(db, log)
	if err != nil {
		_ = db.Master.Close()
		return nil, nil, fmt.Errorf("failed to initialize repository: %w", err)
	}
	return db, repository, nil
}

func migrate(cCtx *cli.Context, up bool) error {
	log := zlog.Logger
	cfg, err := loadConfig(cCtx)
	if err != nil {
		return err
	}
	serverCfg := buildCFG.BuildServerConfig(cfg, &log)

	db, repository, err := connectDB(cCtx.Context, cfg, &log)
	if err != nil {
		return err
	}
	defer db.Master.Close()

	if up {
		if err := repository.MigrateUp(serverCfg.MigrationsDir); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		log.Info().Msg("Migrations applied successfully")
		return nil
	}

	log.Warn().Msg("Rolling back migrations...")
	if err := repository.MigrateDown(serverCfg.MigrationsDir); err != nil {
		return fmt.Errorf("failed to rollback migrations: %w", err)
	}
	log.Info().Msg("Migrations rolled back successfully")
	return nil
}

func newLimiter(ctx context.Context, cfg buildCFG.Source, log *zerolog.Logger) (ratelimit.Limiter, func()) {
	rlCfg := buildCFG.BuildRateLimitConfig(cfg, log)

	client, err := ratelimit.NewRedisClient(ctx, rlCfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, using in-memory rate limiter")
	}
	if client == nil {
		return ratelimit.NewMemoryLimiter(rlCfg.Config), func() {}
	}

	log.Info().Int("limit", rlCfg.Limit).Dur("window", rlCfg.Window).Msg("Redis rate limiter enabled")
	return ratelimit.NewRedisLimiter(client, rlCfg.Config), func() { _ = client.Close() }
}

func serve(cCtx *cli.Context) error {
	log := zlog.Logger
	cfg, err := loadConfig(cCtx)
	if err != nil {
		return err
	}
	serverCfg := buildCFG.BuildServerConfig(cfg, &log)

	ctx, stop := signal.NotifyContext(cCtx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, repository, err := connectDB(ctx, cfg, &log)
	if err != nil {
		return err
	}
	defer db.Master.Close()

	if err := repository.MigrateUp(serverCfg.MigrationsDir); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	log.Info().Msg("Migrations applied successfully")

	m := metrics.New(prometheus.DefaultRegisterer)
	mailCfg := buildCFG.BuildMailConfig(cfg, &log)
	rabbitCfg, err := buildCFG.BuildRabbitConfig(cfg, &log)
	if err != nil {
		return fmt.Errorf("failed to load RabbitMQ config: %w", err)
	}

	var (
		notifier     notify.Notifier
		drainNotify  = func(context.Context) error { return nil }
		rabbitReader *consumerWorker.Reader
	)
	switch {
	case !mailCfg.Enabled():
		notifier = notify.NewNoop(&log, m)
	case rabbitCfg.Enabled():
		rmq, err := rabbit.NewRabbit(rabbit.Config{
			URL:      rabbitCfg.Url,
			Exchange: rabbitCfg.Exchange,
			Queue:    rabbitCfg.Queue,
			Prefetch: rabbitCfg.Prefetch,
		}, &log)
		if err != nil {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		defer rmq.Close()

		queued := notify.NewQueued(rmq, &log, m)
		notifier, drainNotify = queued, queued.Shutdown

		rabbitReader = consumerWorker.NewReader(rmq, repository, mailer.New(mailCfg, &log), m, &log)
		if err := rabbitReader.Start(ctx); err != nil {
			return err
		}
	default:
		async := notify.NewAsync(mailer.New(mailCfg, &log), &log, m)
		notifier, drainNotify = async, async.Shutdown
	}

	limiter, closeLimiter := newLimiter(ctx, cfg, &log)
	defer closeLimiter()

	adminToken := buildCFG.BuildAdminToken(cfg, &log)

	svc := service.NewService(repository, rules.Default(), notifier, m, &log, serverCfg.ServiceName)
	router := api.NewRouters(&api.Routers{
		Service:    svc,
		Limiter:    limiter,
		Metrics:    m,
		Gatherer:   prometheus.DefaultGatherer,
		AdminToken: adminToken,
		StaticDir:  serverCfg.StaticDir,
		Log:        &log,
	})

	srv := &http.Server{
		Addr:              ":" + serverCfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Msgf("Starting server on %s", serverCfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Initiating shutdown...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down server: %w", err)
		}
		return nil
	})

	err = g.Wait()

	drainCtx, cancelDrain := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
	defer cancelDrain()
	if derr := drainNotify(drainCtx); derr != nil {
		log.Warn().Err(derr).Msg("notifications still in flight at shutdown, abandoning them")
	}
	if rabbitReader != nil {
		rabbitReader.Stop()
	}

	if err != nil {
		return err
	}
	log.Info().Msg("Shutdown complete")
	return nil
}
