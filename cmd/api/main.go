package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"academia/internal/activity"
	"academia/internal/attendance"
	"academia/internal/auth"
	"academia/internal/config"
	"academia/internal/directory"
	"academia/internal/enrollment"
	"academia/internal/httpapi"
	"academia/internal/httpmiddleware"
	"academia/internal/logging"
	"academia/internal/mailer"
	"academia/internal/metrics"
	"academia/internal/queue"
	"academia/internal/reports"
	"academia/internal/store"
	"academia/internal/timetable"
	"academia/internal/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, log); err != nil {
		log.Fatal("http server failed", zap.Error(err))
	}
}

func runHTTP(cfg config.App, log *zap.Logger) error {
	if err := validation.Setup(); err != nil {
		return err
	}
	if cfg.IsProduction() && cfg.JWTSigningKey == "dev-signing-secret-change" {
		return fmt.Errorf("JWT_SIGNING_KEY must be set in production")
	}

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		if db == nil {
			return err
		}
		log.Warn("database not reachable", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	if cfg.AutoMigrate {
		if err := store.Migrate(db.Client, "up"); err != nil {
			return err
		}
		log.Info("migrations applied")
	}

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer func() { _ = redisClient.Close() }()

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, queue.DefaultKey)
	}

	var revoker auth.Revoker
	if cfg.RevocationBackend == "memory" {
		revoker = auth.NewMemoryRevoker()
	} else {
		revoker = auth.NewRedisRevoker(redisClient.Client, "")
	}

	ctx := context.Background()
	var reportRepo reports.Repository
	var mongoStore *store.Mongo
	if cfg.ReportStore == "memory" {
		reportRepo = reports.NewMemoryRepository()
	} else {
		mongoStore, err = store.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return err
		}
		defer func() { _ = mongoStore.Close(context.Background()) }()
		repo := reports.NewMongoRepository(mongoStore.Database)
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Warn("report indexes not created", zap.Error(err))
		}
		reportRepo = repo
	}

	dirRepo := directory.NewRepository(db.Client)
	enrRepo := enrollment.NewRepository(db.Client)
	ttRepo := timetable.NewRepository(db.Client)
	attRepo := attendance.NewRepository(db.Client)
	actRepo := activity.NewRepository(db.Client)

	dirSvc := directory.NewService(dirRepo)
	enrSvc := enrollment.NewService(enrRepo, dirRepo)
	guard := timetable.NewSlotGuard(timetable.ParseMode(cfg.SlotConflictMode))
	ttSvc := timetable.NewService(ttRepo, dirRepo, enrRepo, guard, log)
	attSvc := attendance.NewService(attRepo, ttRepo, enrRepo, dirRepo)
	actSvc := activity.NewService(actRepo, q, cfg.RejectedRetention, log)
	repSvc := reports.NewService(reportRepo)
	authSvc := auth.NewService(dirRepo, revoker, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL)
	log.Info("slot conflict mode", zap.String("mode", string(guard.Mode())))

	bgCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()
	if cfg.QueueBackend == "memory" {
		// single-process mode: no worker can see an in-process queue
		notifier := activity.NewNotifier(actRepo, dirRepo, mailer.New(cfg.SendgridAPIKey, "Academia", cfg.MailFrom, log), log)
		go func() {
			if err := notifier.Run(bgCtx, q); err != nil {
				log.Error("in-process notifier stopped", zap.Error(err))
			}
		}()
		go activity.NewSweeper(actRepo, log).Run(bgCtx, cfg.SweepInterval)
	}

	limiter := httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
	loginLimiter := httpmiddleware.NewSimpleTokenBucket(cfg.LoginLimitPerMin, cfg.LoginLimitPerMin)
	go sweepLimiters(bgCtx, limiter, loginLimiter)

	r := gin.New()
	r.Use(httpmiddleware.Recovery(log))
	r.Use(httpmiddleware.RequestID())
	r.Use(httpmiddleware.AccessLog(log, "/healthz", "/metrics"))
	r.Use(metrics.GinMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", httpmiddleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Disposition", httpmiddleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(httpmiddleware.SecurityHeaders())
	r.Use(limiter.GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	checks := map[string]httpapi.Check{
		"db":    db.Healthy,
		"redis": redisClient.Healthy,
	}
	if mongoStore != nil {
		checks["reports"] = mongoStore.Healthy
	} else {
		checks["reports"] = func(context.Context) bool { return true }
	}
	r.GET("/healthz", httpapi.Health(checks))

	httpapi.Register(r, httpapi.Deps{
		Auth:       authSvc,
		Directory:  dirSvc,
		Enrollment: enrSvc,
		Timetable:  ttSvc,
		Attendance: attSvc,
		Activity:   actSvc,
		Reports:    repSvc,
		Sessions:   auth.NewMiddleware(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.SessionCookie, revoker),
		LoginLimit: loginLimiter.GinMiddleware(),
		Cookie:     httpapi.Cookie{Name: cfg.SessionCookie, Secure: cfg.CookieSecure},
		Log:        log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return err
	}
	log.Info("shutting down server")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server forced shutdown", zap.Error(err))
	}
	log.Info("server exited")
	return nil
}

// sweepLimiters drops idle rate-limit buckets so the maps do not grow with
// every client address ever seen.
func sweepLimiters(ctx context.Context, limiters ...*httpmiddleware.SimpleTokenBucket) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, l := range limiters {
				l.Sweep()
			}
		}
	}
}
