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

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"online-library/internal/core/auth"
	"online-library/internal/core/config"
	"online-library/internal/core/database"
	"online-library/internal/core/events"
	"online-library/internal/core/logger"
	"online-library/internal/core/server"
	"online-library/internal/domain"
	"online-library/internal/repo"
	"online-library/internal/service"
	"online-library/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))
	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.Lifetime(),
		Leeway: time.Duration(cfg.JWT.LeewaySec) * time.Second,
	}

	sender := events.NewSender(mustTransport(cfg, log), events.Options{
		Topic:       cfg.Events.Topic,
		Partitions:  cfg.Events.Partitions,
		QueueSize:   cfg.Events.QueueSize,
		SendTimeout: time.Duration(cfg.Events.SendTimeoutMs) * time.Millisecond,
	}, log)

	users := service.NewUserService(repo.NewUserRepo(db), jwter, log)
	authors := service.NewAuthorService(repo.NewAuthorRepo(db), repo.NewBookRepo(db), log)
	books := service.NewBookService(repo.NewBookRepo(db), authors, sender, log)
	purchases := service.NewPurchaseService(books, repo.NewPurchaseRepo(db), log)

	seed(users, cfg.Seed, log)

	r := router.NewAPIEngine(router.Deps{
		Log:       log,
		Tokens:    jwter,
		Users:     users,
		Authors:   authors,
		Books:     books,
		Purchases: purchases,
		Limits: router.Limits{
			RPS:           cfg.Limits.RPS,
			Burst:         cfg.Limits.Burst,
			MaxConcurrent: cfg.Limits.MaxConcurrent,
			MaxBodyBytes:  cfg.Limits.MaxBodyBytes,
			Timeout:       time.Duration(cfg.Limits.TimeoutSec) * time.Second,
		},
	})

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("library api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("events", cfg.Events.Driver),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("library api start FAILED", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	// handlers are done; flush whatever events they queued
	if err := sender.Close(); err != nil {
		log.Warn("event sender close", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("library api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}

func mustTransport(cfg *config.Config, l *zap.Logger) events.Transport {
	switch cfg.Events.Driver {
	case "kafka":
		return events.NewKafkaTransport(cfg.Events.Brokers)
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		rdb, err := events.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			l.Fatal("redis connect", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		return events.NewRedisTransport(rdb, cfg.Events.StreamMaxLen)
	default:
		return events.NewLogTransport(l)
	}
}

func seed(users *service.UserService, s config.Seed, l *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, u := range s.Users {
		role, err := domain.ParseRole(u.Role)
		if err != nil {
			l.Fatal("seed user", zap.String("login", u.Login), zap.Error(err))
		}
		created, err := users.Seed(ctx, u.Login, u.Password, role)
		if err != nil {
			l.Fatal("seed user", zap.String("login", u.Login), zap.Error(err))
		}
		if created {
			l.Info("seeded user", zap.String("login", u.Login), zap.String("role", string(role)))
		}
	}
}
