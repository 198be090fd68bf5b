package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"pricebet/internal/clock"
	"pricebet/internal/config"
	cronrunner "pricebet/internal/cron"
	"pricebet/internal/db"
	"pricebet/internal/events"
	"pricebet/internal/handler"
	"pricebet/internal/logger"
	"pricebet/internal/market"
	"pricebet/internal/num"
	"pricebet/internal/service"
	"pricebet/internal/store/gormstore"
	"pricebet/internal/store/memstore"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("PB_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}
	envOnly := false
	if envOnlyRaw := os.Getenv("PB_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	var store market.KV
	var dbConn *db.DB
	if cfg.DB.Enabled {
		dbConn, err = db.Open(cfg.DB)
		if err != nil {
			log.Fatal("db open failed", zap.Error(err))
		}
		defer db.Close(dbConn)
		if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
			log.Warn("failed to set timezone", zap.Error(err))
		}
		if err := db.AutoMigrate(dbConn); err != nil {
			log.Fatal("auto-migrate failed", zap.Error(err))
		}
		store = gormstore.New(dbConn.Gorm)
		log.Info("engine state on postgres")
	} else {
		store = memstore.New()
		log.Info("engine state in memory")
	}

	grant, err := num.ParseInt128(cfg.Market.InitialGrant)
	if err != nil {
		log.Fatal("invalid market.initial_grant", zap.Error(err))
	}
	seq := clock.NewSystem(cfg.Clock.SlotDuration)
	hub := events.NewHub(log)
	eng := market.NewEngine(market.Options{
		Store:        store,
		Seq:          seq,
		Events:       hub,
		Logger:       log,
		InitialGrant: grant,
		DefaultWindows: market.WindowConfig{
			BetWindow: cfg.Market.DefaultBetWindow,
			RunWindow: cfg.Market.DefaultRunWindow,
		},
	})

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(handler.RequirePrincipal())

	healthHandler := &handler.HealthHandler{}
	if dbConn != nil {
		healthHandler.DB = dbConn.Gorm
	}
	healthHandler.Register(router)
	handler.RegisterDocs(router)
	(&handler.AdminHandler{Engine: eng}).Register(router)
	(&handler.BetHandler{Engine: eng}).Register(router)
	(&handler.OracleHandler{Engine: eng}).Register(router)
	(&handler.UserHandler{Engine: eng}).Register(router)
	(&handler.EventsHandler{Hub: hub}).Register(router)
	pprof.Register(router)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := service.NewRoundScheduler(eng, seq, log, cfg.Scheduler)
	cronRunner := cronrunner.New(log, ctx)
	if cfg.Cron.Enabled {
		if _, err := cronRunner.Add("round-watchdog", cfg.Scheduler.WatchdogSpec, sched.Watchdog); err != nil {
			log.Warn("cron register watchdog failed", zap.Error(err))
		}
		if cfg.Scheduler.AutoRoundEnabled {
			if _, err := cronRunner.Add("auto-round", cfg.Scheduler.AutoRoundSpec, sched.AutoOpenRound); err != nil {
				log.Warn("cron register auto round failed", zap.Error(err))
			}
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		log.Error("http server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,"+handler.PrincipalHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
