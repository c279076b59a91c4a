package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/auth"
	"github.com/BruksfildServices01/salon-scheduler/internal/billing"
	"github.com/BruksfildServices01/salon-scheduler/internal/cache"
	"github.com/BruksfildServices01/salon-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/salon-scheduler/internal/db"
	infraRepo "github.com/BruksfildServices01/salon-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/salon-scheduler/internal/jobs"
	"github.com/BruksfildServices01/salon-scheduler/internal/logger"
	"github.com/BruksfildServices01/salon-scheduler/internal/notify"
	"github.com/BruksfildServices01/salon-scheduler/internal/routes"
	"github.com/BruksfildServices01/salon-scheduler/internal/storage"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/salon-scheduler/internal/usecase/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/usecase/report"
	"github.com/BruksfildServices01/salon-scheduler/internal/usecase/salon"
	"github.com/BruksfildServices01/salon-scheduler/internal/validators"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	log := logger.New(cfg.LogLevel, cfg.Debug)
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := validators.Register(); err != nil {
		return err
	}

	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		return err
	}

	clock := timezone.NewSystemClock(cfg.Timezone)

	// ======================================================
	// INFRA
	// ======================================================
	var kv cache.Cache = cache.NewMemory()
	if cfg.CacheEnabled {
		rc, err := cache.NewRedis(cfg.RedisURL, "salon:")
		if err != nil {
			return err
		}
		defer rc.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rc.Ping(pingCtx); err != nil {
			log.Warn("redis unreachable, cache calls will fall back to the database", zap.Error(err))
		}
		cancel()
		kv = rc
	}

	auditDispatcher := audit.NewDispatcher(audit.New(db), log.Named("audit"))
	defer auditDispatcher.Close()

	appointmentRepo := infraRepo.NewAppointmentGormRepository(db)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	blacklist := auth.NewBlacklist(db, kv)
	authSvc := auth.NewService(db, tokens, blacklist)

	salons := salon.NewService(db, kv, clock, log.Named("salon"))
	salons.CheckEmailDomain = cfg.CheckEmailDomain
	salons.ShareBaseURL = cfg.AppBaseURL

	if created, err := salons.BootstrapAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Error("admin bootstrap failed", zap.Error(err))
	} else if created {
		log.Info("bootstrap admin ready")
	}

	var gateway billing.Gateway
	if cfg.MP.AccessToken != "" {
		mp, err := billing.NewMercadoPago(cfg.MP.AccessToken)
		if err != nil {
			return err
		}
		gateway = mp
	}
	billingSvc := billing.NewService(
		gateway,
		salons,
		cfg.MP.SubscriptionPrice,
		cfg.MP.BackURL,
		cfg.MP.NotificationURL,
		log.Named("billing"),
	)

	// ======================================================
	// JOBS
	// ======================================================
	scheduler := jobs.NewScheduler(clock.Location(), log.Named("jobs"))
	if err := jobs.Register(scheduler, jobs.Deps{
		Blacklist: blacklist,
		Salons:    salons,
		NoShows:   ucAppointment.NewMarkNoShows(appointmentRepo, clock),
		Reminders: ucAppointment.NewSendReminders(
			appointmentRepo,
			notify.New(cfg.Twilio, log.Named("notify")),
			clock,
			log.Named("reminders"),
		),
	}); err != nil {
		return err
	}
	scheduler.Start()

	// ======================================================
	// HTTP
	// ======================================================
	r := gin.New()

	routes.RegisterRoutes(r, routes.Deps{
		DB:           db,
		Config:       cfg,
		Log:          log,
		Clock:        clock,
		Auth:         authSvc,
		Salons:       salons,
		Reports:      report.NewReports(infraRepo.NewReportGormRepository(db), clock),
		Appointments: appointmentRepo,
		Audit:        auditDispatcher,
		Images:       storage.NewImages(storage.New(cfg.S3)),
		Billing:      billingSvc,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server running", zap.String("addr", cfg.Addr()), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	scheduler.Stop(ctx)
	return srv.Shutdown(ctx)
}
