package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"mediconnect/internal/auth"
	"mediconnect/internal/config"
	"mediconnect/internal/events"
	"mediconnect/internal/grpcweb"
	"mediconnect/internal/handler"
	"mediconnect/internal/logger"
	"mediconnect/internal/middleware"
	"mediconnect/internal/notify"
	"mediconnect/internal/rpc"
	"mediconnect/internal/service"
	"mediconnect/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()

	// database
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	log.Info("connected to postgres")

	st := store.New(pool)
	if cfg.RunMigrations {
		if err := st.Migrate(ctx, log); err != nil {
			return err
		}
	}

	// tokens, optionally backed by a redis verification cache
	tokenOpts := []auth.Option{auth.WithTTL(cfg.JWTTTL)}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, verifying tokens without cache", zap.Error(err))
		} else {
			tokenOpts = append(tokenOpts, auth.WithCache(auth.NewRedisCache(rdb, log), cfg.TokenCacheTTL))
		}
	}
	tokens, err := auth.NewTokenService(cfg.JWTSecret, tokenOpts...)
	if err != nil {
		return err
	}

	// domain events
	var pub events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers)
		defer kp.Close()
		pub = kp
		log.Info("publishing events to kafka", zap.Strings("brokers", cfg.KafkaBrokers))
	}
	emitter := events.NewEmitter(pub, log, events.WithPublishTimeout(cfg.PublishTimeout))

	// availability notifications
	var mailer notify.Mailer = notify.NewLogMailer(log)
	if cfg.SMTPHost != "" {
		mailer = notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		}, log)
	}
	var notifyOpts []notify.Option
	if !cfg.NotifyAsync {
		notifyOpts = append(notifyOpts, notify.Sync())
	}
	notifier := notify.New(mailer, st, st, log, notifyOpts...)

	svc := service.Services{
		Auth:         service.NewAuthService(st, tokens, log),
		Profiles:     service.NewProfileService(st),
		Doctors:      service.NewDoctorService(st, log, emitter, notifier),
		Appointments: service.NewAppointmentService(st, st, st, emitter, log),
		Analytics:    service.NewAnalyticsService(st),
	}

	proxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return err
	}
	rl := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer rl.Stop()

	// grpc server
	grpcSrv, healthSrv := rpc.NewGRPCServer(rpc.New(svc, log), tokens, rl)
	grpcAddr := ":" + strconv.Itoa(cfg.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	errc := make(chan error, 2)
	go func() {
		log.Info("grpc listening", zap.String("addr", grpcAddr))
		if err := grpcSrv.Serve(lis); err != nil {
			errc <- fmt.Errorf("grpc: %w", err)
		}
	}()

	// grpc-web bridge forwards browser calls to the grpc listener
	bridge, err := grpcweb.New("localhost:"+strconv.Itoa(cfg.GRPCPort), log)
	if err != nil {
		return err
	}
	defer bridge.Close()

	router := handler.New(svc, log).Router(handler.Options{
		Tokens:         tokens,
		Limiter:        rl,
		CORSOrigins:    cfg.CORSAllowedOrigins,
		StaticDir:      cfg.StaticDir,
		Ready:          pool,
		TrustedProxies: proxies,
		GRPCWeb:        bridge.Handler(),
		GRPCWebPrefix:  "/" + rpc.ServiceName,
	})
	httpSrv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		log.Info("http listening", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("http: %w", err)
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		log.Info("shutting down", zap.String("signal", s.String()))
	case err := <-errc:
		log.Error("server failed, shutting down", zap.Error(err))
	}

	healthSrv.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	grpcSrv.GracefulStop()
	notifier.Wait()
	log.Info("stopped")
	return nil
}
