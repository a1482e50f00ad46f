package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"lendingdesk/docs"
	"lendingdesk/internal/lending"
	"lendingdesk/internal/lending/memstore"
	"lendingdesk/internal/lending/mysqlstore"
	"lendingdesk/internal/platform/db"
	"lendingdesk/internal/platform/logger"
	"lendingdesk/internal/platform/metrics"
)

const serviceName = "lending-desk"

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config")
	flag.Parse()

	cfg, err := db.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.NewLogger(serviceName, cfg.LogLevel)
	defer func() { _ = log.Sync() }()
	log.Info("starting", zap.String("mode", cfg.Mode), zap.String("store", cfg.Store), zap.String("version", cfg.Version))

	policy, err := lending.PolicyFromConfig(cfg.Policy)
	if err != nil {
		log.Fatal("invalid policy", zap.Error(err))
	}

	store, closeStore, err := openStore(cfg, log)
	if err != nil {
		log.Fatal("open store", zap.Error(err))
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc := lending.NewService(store,
		lending.WithLogger(log.Named("lending")),
		lending.WithMetrics(metrics.New(reg)),
		lending.WithPolicy(policy),
	)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(logger.Middleware(log.Named("http")), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if cfg.Mode == "dev" {
		// CORS is only needed for the local frontend
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", logger.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", "Location", "Retry-After", logger.RequestIDHeader},
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))

		docs.SwaggerInfo.Host = "localhost" + cfg.Server.Addr
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := svc.Ping(ctx); err != nil {
			c.String(http.StatusServiceUnavailable, "store unavailable")
			return
		}
		c.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	api := r.Group("/api/v1")
	lending.RegisterRoutes(api, svc, []byte(cfg.Auth.JWTSecret))

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	certFile := fmt.Sprintf("config/tls/%s/%s", cfg.Mode, cfg.Certificate.Cert)
	keyFile := fmt.Sprintf("config/tls/%s/%s", cfg.Mode, cfg.Certificate.Key)

	go func() {
		log.Info("listening", zap.String("addr", "https://0.0.0.0"+cfg.Server.Addr))
		if err := srv.ListenAndServeTLS(certFile, keyFile); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("serve", zap.Error(err))
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}

// openStore picks the backend from config. The memory store keeps nothing
// across restarts and is meant for local development.
func openStore(cfg *db.Config, log *zap.Logger) (lending.Store, func(), error) {
	if cfg.Store == "memory" {
		log.Warn("using in-memory store, data is lost on restart")
		return memstore.New(), func() {}, nil
	}

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	store := mysqlstore.New(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := store.EnsureSchema(ctx); err != nil {
		conn.Close()
		return nil, nil, err
	}
	log.Info("connected to database", zap.String("host", cfg.DB.Host), zap.String("dbname", cfg.DB.DBName))
	return store, func() { conn.Close() }, nil
}
