package server

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Digital-Creators-Team/prize-wheel-module/auth"
	"github.com/Digital-Creators-Team/prize-wheel-module/claim"
	"github.com/Digital-Creators-Team/prize-wheel-module/config"
	"github.com/Digital-Creators-Team/prize-wheel-module/events/kafka"
	"github.com/Digital-Creators-Team/prize-wheel-module/middleware"
	"github.com/Digital-Creators-Team/prize-wheel-module/pkg/fund"
	"github.com/Digital-Creators-Team/prize-wheel-module/pkg/providers"
	"github.com/Digital-Creators-Team/prize-wheel-module/prize"
	"github.com/Digital-Creators-Team/prize-wheel-module/roulette"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// App represents the prize wheel service application
type App struct {
	engine     *gin.Engine
	config     *config.Config
	logger     zerolog.Logger
	httpServer *http.Server
	onShutdown []func()

	registry    *prize.Registry
	claims      *claim.Store
	fundService *fund.Service
	spinService SpinService

	walletProvider providers.WalletProvider
	spinProvider   providers.SpinProvider
	logProvider    providers.LogProvider
	kafkaProducer  *kafka.Producer

	spinHandler  *SpinHandler
	claimHandler *ClaimHandler
	adminHandler *AdminHandler

	spinFeedCancel context.CancelFunc
}

// Options holds server configuration options
type Options struct {
	Config *config.Config
	Logger zerolog.Logger
}

// New creates a new prize wheel application
func New(opts Options) *App {
	if opts.Config.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	app := &App{
		engine:   engine,
		config:   opts.Config,
		logger:   opts.Logger,
		registry: prize.NewRegistry(),
		claims:   claim.NewStore(),
	}

	app.fundService = fund.NewService(fund.ServiceConfig{
		BroadcastInterval: 2 * time.Second,
		DefaultRate:       decimal.NewFromFloat(opts.Config.Fund.DefaultRate),
		Logger:            opts.Logger,
	})
	for _, club := range opts.Config.Fund.Clubs {
		app.fundService.RegisterClub(fund.ClubConfig{
			ClubID: club.ClubID,
			Init:   decimal.NewFromInt(club.InitialBalance),
			Rate:   decimal.NewFromFloat(club.Rate),
		})
	}

	app.spinHandler = NewSpinHandler(app)
	app.claimHandler = NewClaimHandler(app)
	app.adminHandler = NewAdminHandler(app)

	return app
}

// SetWalletProvider sets the points ledger provider
func (a *App) SetWalletProvider(provider providers.WalletProvider) {
	a.walletProvider = provider
}

// SetSpinProvider sets the latest-spin storage provider
func (a *App) SetSpinProvider(provider providers.SpinProvider) {
	a.spinProvider = provider
}

// SetLogProvider sets the audit log provider
func (a *App) SetLogProvider(provider providers.LogProvider) {
	a.logProvider = provider
}

// SetKafkaProducer sets the spin event producer
func (a *App) SetKafkaProducer(producer *kafka.Producer) {
	a.kafkaProducer = producer
}

// BuildSpinService wires the spin service from the configured providers.
// Call after all providers are set and before registering routes.
func (a *App) BuildSpinService() {
	selector := roulette.NewSelector(rand.New(rand.NewSource(time.Now().UnixNano())))
	a.spinService = NewSpinService(
		a.config,
		a.registry,
		a.claims,
		selector,
		a.walletProvider,
		a.spinProvider,
		a.logProvider,
		a.fundService,
		a.kafkaProducer,
		a.logger,
	)
}

// SetSpinService injects a custom spin service (used by tests)
func (a *App) SetSpinService(svc SpinService) {
	a.spinService = svc
}

// AttachSpinFeed attaches a stream of spin events from the Kafka
// consumer. Events are re-saved to latest-spin storage so every
// instance serves a warm poll result; the consumer has already
// de-duplicated by spin id. Pass nil to detach.
func (a *App) AttachSpinFeed(feed <-chan kafka.SpinEvent) {
	if a.spinFeedCancel != nil {
		a.spinFeedCancel()
		a.spinFeedCancel = nil
	}
	if feed == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.spinFeedCancel = cancel
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-feed:
				if !ok {
					return
				}
				if a.spinProvider == nil {
					continue
				}
				outcome := &roulette.SpinOutcome{
					ID:        event.SpinID,
					PlayerID:  event.PlayerID,
					ClubID:    event.ClubID,
					PrizeID:   event.PrizeID,
					PrizeName: event.PrizeName,
					Cost:      event.Cost,
					CreatedAt: event.Timestamp,
				}
				if err := a.spinProvider.SaveLatestSpin(ctx, outcome); err != nil {
					a.logger.Error().
						Err(err).
						Str("spin_id", event.SpinID).
						Msg("Failed to mirror spin event to latest-spin storage")
				}
			}
		}
	}()
}

// UseCommonMiddlewares adds the standard middleware chain
func (a *App) UseCommonMiddlewares() {
	a.engine.Use(middleware.Recovery(a.logger))
	a.engine.Use(middleware.TraceID())
	a.engine.Use(middleware.Logging(a.logger))

	if a.config.Server.EnableCORS {
		a.engine.Use(middleware.CORS())
	}
}

// UseMiddleware adds a custom middleware
func (a *App) UseMiddleware(m gin.HandlerFunc) {
	a.engine.Use(m)
}

// RegisterHealthCheck adds health check endpoints
func (a *App) RegisterHealthCheck() {
	a.engine.GET("/health", a.healthCheck)
	a.engine.GET("/api/health", a.healthCheck)
}

func (a *App) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"service":   a.config.Environment,
	})
}

// RegisterRoutes registers the roulette, claim, and admin route groups.
//
// Flow: HTTP request -> handler -> SpinService / claim.Store / prize.Registry
//
// Routes:
//   - POST /api/clubs/{club_id}/spin         (player)
//   - GET  /api/clubs/{club_id}/roulette     (any authenticated actor)
//   - GET  /api/clubs/{club_id}/spin/latest  (any authenticated actor)
//   - GET  /api/spins/history                (player)
//   - POST /api/claims/{claim_id}/confirm    (club)
//   - POST /api/claims/{claim_id}/activate-time (club)
//   - GET  /api/claims, /api/claims/{claim_id}
//   - CRUD /api/admin/prizes                 (admin)
func (a *App) RegisterRoutes() {
	if a.spinService == nil {
		a.logger.Fatal().Msg("Spin service not built. Call BuildSpinService() first.")
		return
	}

	api := a.engine.Group("/api")
	api.Use(middleware.Timeout(15 * time.Second))
	api.Use(auth.JWTMiddleware(a.config.JWT.Secret, a.logger))
	{
		clubs := api.Group("/clubs/:club_id")
		{
			clubs.POST("/spin", auth.RequireRole(auth.RolePlayer), a.spinHandler.Spin)
			clubs.GET("/roulette", a.spinHandler.GetRoulette)
			clubs.GET("/spin/latest", a.spinHandler.GetLatestSpin)
		}

		api.GET("/spins/history", auth.RequireRole(auth.RolePlayer), a.spinHandler.GetSpinHistory)

		claims := api.Group("/claims")
		{
			claims.GET("", a.claimHandler.List)
			claims.GET("/:claim_id", a.claimHandler.Get)
			claims.POST("/:claim_id/confirm", auth.RequireRole(auth.RoleClub, auth.RoleAdmin), a.claimHandler.Confirm)
			claims.POST("/:claim_id/activate-time", auth.RequireRole(auth.RoleClub, auth.RoleAdmin), a.claimHandler.ActivateTime)
		}

		admin := api.Group("/admin", auth.RequireRole(auth.RoleAdmin))
		{
			admin.POST("/prizes", a.adminHandler.CreatePrize)
			admin.POST("/prizes/import", a.adminHandler.ImportPrizes)
			admin.GET("/prizes", a.adminHandler.ListPrizes)
			admin.GET("/prizes/:prize_id", a.adminHandler.GetPrize)
			admin.PATCH("/prizes/:prize_id", a.adminHandler.UpdatePrize)
			admin.POST("/prizes/:prize_id/active", a.adminHandler.SetPrizeActive)
		}
	}

	a.logger.Info().Msg("Roulette routes registered under /api")
}

// Router returns the Gin engine for custom route registration
func (a *App) Router() *gin.Engine {
	return a.engine
}

// Registry returns the prize registry
func (a *App) Registry() *prize.Registry {
	return a.registry
}

// Claims returns the claim store
func (a *App) Claims() *claim.Store {
	return a.claims
}

// FundService returns the club fund service
func (a *App) FundService() *fund.Service {
	return a.fundService
}

// Config returns the application configuration
func (a *App) Config() *config.Config {
	return a.config
}

// Logger returns the application logger
func (a *App) Logger() zerolog.Logger {
	return a.logger
}

// OnShutdown registers a function to be called on shutdown
func (a *App) OnShutdown(fn func()) {
	a.onShutdown = append(a.onShutdown, fn)
}

// Run starts the HTTP server and blocks until an interrupt signal
func (a *App) Run() error {
	addr := fmt.Sprintf(":%d", a.config.Server.Port)

	a.httpServer = &http.Server{
		Addr:         addr,
		Handler:      a.engine,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
		IdleTimeout:  a.config.Server.IdleTimeout,
	}

	go func() {
		a.logger.Info().
			Int("port", a.config.Server.Port).
			Str("environment", a.config.Environment).
			Msg("Starting HTTP server")

		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	return a.waitForShutdown()
}

// RunWithContext starts the HTTP server and shuts down when ctx ends
func (a *App) RunWithContext(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", a.config.Server.Port)

	a.httpServer = &http.Server{
		Addr:         addr,
		Handler:      a.engine,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
		IdleTimeout:  a.config.Server.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		a.logger.Info().
			Int("port", a.config.Server.Port).
			Str("environment", a.config.Environment).
			Msg("Starting HTTP server")

		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		return a.shutdown()
	case err := <-errChan:
		return err
	}
}

func (a *App) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return a.shutdown()
}

func (a *App) shutdown() error {
	a.logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, fn := range a.onShutdown {
		fn()
	}

	if a.spinFeedCancel != nil {
		a.spinFeedCancel()
	}
	if a.fundService != nil {
		a.fundService.Stop()
	}

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error().Err(err).Msg("Error during server shutdown")
		return err
	}

	a.logger.Info().Msg("Server shutdown complete")
	return nil
}
