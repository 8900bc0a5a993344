// HTTP and gRPC server
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/CASH-ECOMM/payment-service/internal/cache"
	"github.com/CASH-ECOMM/payment-service/internal/config"
	"github.com/CASH-ECOMM/payment-service/internal/events"
	"github.com/CASH-ECOMM/payment-service/internal/grpcserver"
	"github.com/CASH-ECOMM/payment-service/internal/handler"
	"github.com/CASH-ECOMM/payment-service/internal/metrics"
	"github.com/CASH-ECOMM/payment-service/internal/models"
	"github.com/CASH-ECOMM/payment-service/internal/repository"
	"github.com/CASH-ECOMM/payment-service/internal/service"
	"github.com/CASH-ECOMM/payment-service/pkg/database"
	"github.com/CASH-ECOMM/payment-service/pkg/logger"
	"github.com/CASH-ECOMM/payment-service/pkg/middleware"
	"github.com/CASH-ECOMM/payment-service/pkg/redis"
)

const serviceName = "payment-service"

// readinessCheck reports whether a backing dependency is reachable.
type readinessCheck func(ctx context.Context) error

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.ForEnvironment(serviceName, cfg.Environment)
	defer log.Sync()

	ctx := context.Background()
	checks := map[string]readinessCheck{}
	var opts []service.Option

	// Initialize repositories
	var (
		payments service.PaymentStore
		receipts service.ReceiptStore
	)
	if cfg.DatabaseURL != "" {
		db, err := database.NewPostgresDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := db.Migrate(ctx, models.PaymentSchema, models.ReceiptSchema); err != nil {
			log.Fatal("failed to migrate database", zap.Error(err))
		}
		payments = repository.NewPaymentRepository(db.DB)
		receipts = repository.NewReceiptRepository(db.DB)
		checks["postgres"] = db.PingContext
	} else {
		log.Warn("DATABASE_URL not set, using in-memory storage")
		payments = repository.NewMemoryPaymentRepository()
		receipts = repository.NewMemoryReceiptRepository()
	}

	// Initialize Redis
	if cfg.RedisURL != "" {
		redisClient := redis.NewRedisClient(cfg.RedisURL)
		defer redisClient.Close()

		if err := redisClient.Ping(ctx); err != nil {
			log.Warn("redis unreachable, duplicate checks will fall back to storage", zap.Error(err))
		}
		opts = append(opts, service.WithCache(cache.NewCompletedPaymentCache(redisClient, cfg.CacheTTL)))
		checks["redis"] = redisClient.Ping
	}

	// Initialize event store
	if cfg.MongoURI != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		publisher, err := events.NewMongoPublisher(connectCtx, cfg.MongoURI, cfg.MongoDatabase)
		cancel()
		if err != nil {
			log.Fatal("failed to connect to mongo", zap.Error(err))
		}
		defer publisher.Close(context.Background())
		opts = append(opts, service.WithPublisher(publisher))
	}

	opts = append(opts, service.WithMetrics(metrics.New(prometheus.DefaultRegisterer)))

	// Initialize services
	settler := service.NewSimulatedSettler(cfg.SettlementDelay, cfg.SettlementSucceed)
	paymentService, err := service.NewPaymentService(payments, receipts, settler, service.Config{
		Money: service.MoneyConfig{
			TaxRate:            cfg.TaxRate,
			ExpeditedSurcharge: cfg.ExpeditedSurcharge,
		},
		RegularShippingDays:   cfg.RegularShippingDays,
		ExpeditedShippingDays: cfg.ExpeditedShippingDays,
		SettlementTimeout:     cfg.SettlementTimeout,
	}, log, opts...)
	if err != nil {
		log.Fatal("failed to create payment service", zap.Error(err))
	}

	// Initialize handlers
	paymentHandler := handler.NewPaymentHandler(paymentService, log)

	// Setup router
	router := setupRouter(paymentHandler, checks, log, cfg.IsProduction())

	// Start servers
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15*time.Second + cfg.SettlementTimeout,
		IdleTimeout:  60 * time.Second,
	}

	var grpcSrv *grpc.Server
	if cfg.GRPCEnabled() {
		grpcSrv = grpcserver.New(paymentService, log)
		lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
		if err != nil {
			log.Fatal("failed to listen for grpc", zap.Error(err))
		}

		go func() {
			log.Info("starting grpc server", zap.String("port", cfg.GRPCPort))
			if err := grpcSrv.Serve(lis); err != nil {
				log.Fatal("failed to start grpc server", zap.Error(err))
			}
		}()
	} else {
		log.Info("grpc server disabled")
	}

	// Graceful shutdown
	go func() {
		log.Info("starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}

func setupRouter(h *handler.PaymentHandler, checks map[string]readinessCheck, log *zap.Logger, production bool) *gin.Engine {
	if production {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS())

	// Health checks
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		failed := gin.H{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				failed[name] = err.Error()
			}
		}
		if len(failed) > 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "failed": failed})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	h.Register(router.Group("/api/v1"))

	return router
}
