// Package main runs the squad manager HTTP server with WebSocket roster
// updates and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ysrc26/footbal-squad-manager/config"
	"github.com/ysrc26/footbal-squad-manager/internal/auth"
	"github.com/ysrc26/footbal-squad-manager/internal/checkin"
	"github.com/ysrc26/footbal-squad-manager/internal/games"
	"github.com/ysrc26/footbal-squad-manager/internal/middleware"
	"github.com/ysrc26/footbal-squad-manager/internal/notify"
	"github.com/ysrc26/footbal-squad-manager/internal/realtime"
	"github.com/ysrc26/footbal-squad-manager/internal/registrations"
	"github.com/ysrc26/footbal-squad-manager/internal/settings"
	"github.com/ysrc26/footbal-squad-manager/pkg/database"
	"github.com/ysrc26/footbal-squad-manager/pkg/queue"
	"github.com/ysrc26/footbal-squad-manager/pkg/redis"
	"github.com/ysrc26/footbal-squad-manager/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	pubsub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, pubsub, pubsub)

	jobQueue := queue.NewQueue(rdb.Client, logger)
	dispatcher := notify.NewDispatcher(jobQueue, logger)
	notifyHandler := notify.NewHandler(dispatcher)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Games
	gameRepo := games.NewRepository(pool)
	gameHandler := games.NewHandler(gameRepo, dispatcher, cfg.Game, logger)

	// App settings (venue coordinates, QR secret, rules)
	settingsRepo := settings.NewRepository(pool)
	settingsHandler := settings.NewHandler(settingsRepo, logger)

	// Registration state machine
	ledger := registrations.NewPGLedger(pool)
	regService := registrations.NewService(ledger, dispatcher, hub, logger)
	regHandler := registrations.NewHandler(regService, logger)

	// Check-in verifier
	verifier := checkin.NewVerifier(ledger, settingsRepo, hub, cfg.CheckIn, cfg.Game.Timezone, logger)
	checkinHandler := checkin.NewHandler(verifier, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.GET("/games/current", gameHandler.Current)
		api.GET("/games/:id", gameHandler.Get)
		api.GET("/games/:id/roster", regHandler.Roster)
		api.POST("/games/:id/register", regHandler.Register)
		api.POST("/games/:id/cancel", regHandler.Cancel)
		api.POST("/games/:id/eta", regHandler.ReportETA)
		api.POST("/games/:id/checkin", checkinHandler.CheckIn)
		api.GET("/settings/rules", settingsHandler.Rules)

		// Admin
		api.GET("/users", middleware.RequireRole("admin"), authHandler.List)
		api.PATCH("/users/:id/resident", middleware.RequireRole("admin"), authHandler.SetResident)
		api.POST("/games", middleware.RequireRole("admin"), gameHandler.Create)
		api.DELETE("/games/:id", middleware.RequireRole("admin"), gameHandler.Delete)
		api.PATCH("/games/:id/status", middleware.RequireRole("admin"), gameHandler.UpdateStatus)
		api.POST("/games/:id/late-swaps", middleware.RequireRole("admin"), regHandler.ProcessLateSwaps)
		api.GET("/settings", middleware.RequireRole("admin"), settingsHandler.Get)
		api.PUT("/settings", middleware.RequireRole("admin"), settingsHandler.Update)
		api.POST("/notifications/broadcast", middleware.RequireRole("admin"), notifyHandler.Broadcast)
	}

	// WebSocket roster stream (public, read-only)
	router.GET("/ws", realtime.ServeWs(hub, logger))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
