package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/rushteam/newsrec/config"
	"github.com/rushteam/newsrec/dataset"
	"github.com/rushteam/newsrec/filter"
	"github.com/rushteam/newsrec/model"
	"github.com/rushteam/newsrec/policy"
	"github.com/rushteam/newsrec/pool"
	"github.com/rushteam/newsrec/recall"
	"github.com/rushteam/newsrec/server"
	"github.com/rushteam/newsrec/store"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.Postgres.DSN)
	if err != nil {
		logger.Fatal("open postgres", zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		cancel()
		logger.Fatal("ping postgres", zap.Error(err))
	}
	cancel()

	builder := &model.Builder{
		Loader:    &dataset.PostgresLoader{DB: db, Log: logger},
		NeighborK: cfg.Recommend.NeighborK,
		Workers:   cfg.Recommend.Workers,
		Log:       logger,
	}

	// 首次构建失败直接退出：此时没有任何可用的旧快照
	snap, err := builder.Build(ctx)
	if err != nil {
		logger.Fatal("initial model build", zap.Error(err))
	}
	handle := model.NewHandle(snap)

	// 周期性全量重建；失败时继续用旧快照提供服务
	rebuildStop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Recommend.RebuildInterval))
		defer ticker.Stop()
		for {
			select {
			case <-rebuildStop:
				return
			case <-ticker.C:
				next, err := builder.Build(ctx)
				if err != nil {
					logger.Error("model rebuild failed, serving previous snapshot", zap.Error(err))
					continue
				}
				handle.Swap(next)
			}
		}
	}()

	kv, err := store.NewRedisStore(cfg.Redis.Addr, cfg.Redis.DB)
	if err != nil {
		logger.Fatal("connect redis", zap.Error(err))
	}
	defer kv.Close()

	day := 24 * time.Hour
	filters := []filter.Filter{&filter.ExclusionFilter{}}
	if cfg.Recommend.Rule != "" {
		rule, err := filter.NewRuleFilter(cfg.Recommend.Rule)
		if err != nil {
			logger.Fatal("compile candidate rule", zap.Error(err))
		}
		filters = append(filters, rule)
	}

	gen := &pool.Generator{
		Model: handle,
		Tiers: []recall.Source{
			&recall.ItemCF{
				SeedWindow: time.Duration(cfg.Recommend.SeedWindowDays) * day,
				Window:     time.Duration(cfg.Recommend.PersonalizedWindowDays) * day,
				TopK:       cfg.Recommend.NeighborK,
			},
			&recall.Hot{
				Window: time.Duration(cfg.Recommend.HotWindowDays) * day,
			},
			&recall.Latest{},
			&recall.RandomNews{
				Window: time.Duration(cfg.Recommend.RandomWindowDays) * day,
			},
		},
		Filters: filters,
		Log:     logger,
	}

	sess := &pool.Session{
		Store: kv,
		Pools: gen,
		Random: &recall.RandomNews{
			Window: time.Duration(cfg.Recommend.DirectRandomWindowDays) * day,
		},
		PageSize: cfg.Recommend.PageSize,
		PoolSize: cfg.Recommend.PoolSize,
		Log:      logger,
	}

	srv := &server.Server{
		Session: sess,
		Model:   handle,
		Policy:  &policy.Store{DB: db},
		Log:     logger,
	}

	httpSrv := &http.Server{
		Addr:    cfg.Listen,
		Handler: srv.Router(),
	}
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Listen))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	close(rebuildStop)

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	logger.Info("stopped")
}
