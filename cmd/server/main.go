package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/sirupsen/logrus"

	httpadapter "tilebot/internal/adapter/http"
	metricsinmem "tilebot/internal/adapter/metrics/inmemory"
	gormrepo "tilebot/internal/adapter/repo/gorm"
	"tilebot/internal/adapter/repo/memory"
	"tilebot/internal/adapter/transport/ws"
	"tilebot/internal/app/ports"
	"tilebot/internal/app/scheduler"
	"tilebot/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to JSON config file")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if os.Getenv("TILEBOT_DEBUG") != "" {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cache := mustBuildMapStore(ctx, cfg, log)
	recorder := metricsinmem.NewRecorder()
	sched := scheduler.New(cfg.PollInterval(), log)

	var sink ports.ActionSink
	var client *ws.Client
	if cfg.GameServerURL != "" {
		client, err = ws.Dial(ctx, cfg.GameServerURL, log)
		if err != nil {
			log.WithError(err).Fatal("dial game server")
		}
		defer client.Close()
		client.SetHydrateRadius(cfg.ViewRadius)
		if cfg.UpdatesLogPath != "" {
			if err := client.LogUpdatesTo(cfg.UpdatesLogPath); err != nil {
				log.WithError(err).Fatal("open updates log")
			}
		}
		sink = client
	} else {
		log.Warn("no game server configured, actions go to the in-memory log")
		sink = memory.NewActionLog()
	}

	newSession := func() *scheduler.Session {
		return scheduler.NewSession(scheduler.SessionConfig{
			Costs:       cfg.CostModel(),
			Sink:        sink,
			Metrics:     recorder,
			Log:         log,
			ReportEvery: cfg.ReportEvery,
		})
	}

	if client != nil {
		s := newSession()
		sched.Add(s)
		go func() {
			if err := client.ReadUpdates(ctx, s, cache); err != nil && ctx.Err() == nil {
				log.WithError(err).Error("game connection lost")
			}
			stop()
		}()
	}

	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			log.WithError(err).Error("scheduler stopped")
		}
	}()

	h := httpadapter.Handler{
		Scheduler:  sched,
		NewSession: newSession,
		PathCfg:    cfg.PathFinderTaskConfig(),
		DrinkCfg:   cfg.DrinkerTaskConfig(),
		KPI:        recorder,
	}

	srv := server.Default(server.WithHostPorts(cfg.ListenAddr))
	h.RegisterRoutes(srv)

	go func() {
		<-ctx.Done()
		sched.Shutdown(context.Background())
		_ = srv.Shutdown(context.Background())
	}()

	log.WithField("addr", cfg.ListenAddr).Info("tilebot listening")
	srv.Spin()
}

func mustBuildMapStore(ctx context.Context, cfg config.Config, log *logrus.Logger) ports.MapStore {
	switch {
	case cfg.PostgresDSN != "":
		db, err := gormrepo.OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			log.WithError(err).Fatal("open postgres map cache")
		}
		repo := gormrepo.NewMapRepo(db, cfg.MapCacheTTL())
		if err := repo.Migrate(ctx); err != nil {
			log.WithError(err).Fatal("migrate map cache")
		}
		return repo
	case cfg.MapCachePath != "":
		db, err := gormrepo.OpenSQLite(cfg.MapCachePath)
		if err != nil {
			log.WithError(err).Fatal("open sqlite map cache")
		}
		repo := gormrepo.NewMapRepo(db, cfg.MapCacheTTL())
		if err := repo.Migrate(ctx); err != nil {
			log.WithError(err).Fatal("migrate map cache")
		}
		return repo
	default:
		log.Info("map cache runs in memory")
		return memory.NewMapStore()
	}
}
