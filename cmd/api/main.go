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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"item-catalog/internal/core/auth"
	"item-catalog/internal/core/config"
	"item-catalog/internal/core/database"
	"item-catalog/internal/core/logger"
	"item-catalog/internal/core/server"
	"item-catalog/internal/core/session"
	"item-catalog/internal/identity"
	"item-catalog/internal/service"
	"item-catalog/internal/transport/http/handler"
	mdw "item-catalog/internal/transport/http/middleware"
	"item-catalog/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.Build(logger.Options{
		Level:       cfg.Log.Level,
		JSON:        cfg.Log.JSON,
		AddCaller:   true,
		Development: !cfg.Log.JSON,
		Rotate:      logger.FileRotate(cfg.Log.File),
	})
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 数据库（失败会直接 Fatal）
	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))
	if cfg.DB.AutoMigrate {
		if err := database.InitSchema(db); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	ttl := time.Duration(cfg.Session.TTLMin) * time.Minute
	store, closeStore := mustSessionStore(cfg, ttl, log)
	defer closeStore()

	signer := &auth.JWTer{
		Secret: []byte(cfg.Session.Secret),
		Issuer: cfg.Session.Issuer,
		TTL:    ttl,
	}

	providers, login := buildProviders(cfg, log)

	r := router.NewWebEngine(router.Deps{
		Log:            log,
		Catalog:        service.NewCatalogService(db, log),
		Auth:           service.NewAuthService(db, providers, log),
		Sessions:       store,
		Signer:         signer,
		Cookie:         mdw.CookieOpts{Name: cfg.Session.CookieName, Secure: cfg.Session.Secure, MaxAge: ttl},
		Login:          login,
		RequestTimeout: time.Duration(cfg.App.HTTP.RequestTimeoutSec) * time.Second,
		MaxConcurrent:  cfg.App.HTTP.MaxConcurrent,
	})

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	// 启动日志
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("item catalog starting",
		zap.String("addr", addr),
		zap.String("open", baseURL+"/catalog/"),
		zap.String("health", baseURL+"/health"),
		zap.String("json", baseURL+"/catalog/JSON"),
	)

	// 异步启动
	go func() {
		if err := server.StartHTTP(srv, log); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("item catalog start FAILED", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("item catalog stopped gracefully")
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

func mustSessionStore(cfg *config.Config, ttl time.Duration, l *zap.Logger) (session.Store, func()) {
	if cfg.Session.Store != "redis" {
		l.Info("session store", zap.String("kind", "memory"))
		return session.NewMemoryStore(ttl), func() {}
	}
	rs := session.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, ttl)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rs.Ping(ctx); err != nil {
		l.Fatal("redis ping", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}
	l.Info("session store", zap.String("kind", "redis"), zap.String("addr", cfg.Redis.Addr))
	return rs, func() { _ = rs.Close() }
}

// buildProviders 读不到密钥的 provider 不启用，登录页也不显示对应按钮
func buildProviders(cfg *config.Config, l *zap.Logger) (identity.Registry, handler.LoginOpts) {
	client := identity.NewHTTPClient(time.Duration(cfg.OAuth.TimeoutSec) * time.Second)
	var (
		ps    []identity.Provider
		login handler.LoginOpts
	)
	if id, secret, err := cfg.OAuth.Google.Secrets("client_id", "client_secret"); err != nil || id == "" {
		l.Warn("google login disabled", zap.Error(err))
	} else {
		ps = append(ps, identity.NewGoogle(id, secret, cfg.OAuth.Google.BaseURL, client))
		login.GoogleClientID = id
	}
	if id, secret, err := cfg.OAuth.Facebook.Secrets("app_id", "app_secret"); err != nil || id == "" {
		l.Warn("facebook login disabled", zap.Error(err))
	} else {
		ps = append(ps, identity.NewFacebook(id, secret, cfg.OAuth.Facebook.BaseURL, client))
		login.FacebookAppID = id
	}
	return identity.NewRegistry(ps...), login
}
