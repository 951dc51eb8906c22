// Package routes wires middlewares, services and handlers onto the Fiber app.
package routes

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/kittie-pay/kittie/internal/auth"
	"github.com/kittie-pay/kittie/internal/checkout"
	"github.com/kittie-pay/kittie/internal/config"
	"github.com/kittie-pay/kittie/internal/deposits"
	"github.com/kittie-pay/kittie/internal/identity"
	"github.com/kittie-pay/kittie/internal/ledger"
	"github.com/kittie-pay/kittie/internal/middleware"
	"github.com/kittie-pay/kittie/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	scripts, err := ledger.LoadScripts(d.Cfg.LedgerScriptsDir)
	if err != nil {
		return err
	}
	ledgerBackend := ledger.NewClient(d.Cfg.LedgerURL, d.Cfg.LedgerName, scripts, d.Cfg.LedgerTimeout)

	RegisterHealthRoutes(app, d, ledgerBackend.Ping)

	var provider checkout.Provider
	if d.Cfg.StripeSecretKey != "" {
		provider = checkout.NewStripeClient(d.Cfg.StripeSecretKey, d.Cfg.StripeWebhookSecret, d.Cfg.LedgerTimeout)
	} else {
		provider = checkout.StaticProvider{}
	}

	var identityRepo identity.Repository
	if d.DB != nil {
		identityRepo = identity.NewPostgresRepository(d.DB)
	} else {
		identityRepo = identity.NewMemoryRepository()
	}

	tokens := auth.NewIssuer(d.Cfg.JWTSecret, d.Cfg.SessionTTL)
	identitySvc := identity.NewService(identityRepo, identity.NewStaticVerifier())
	identityHandler := identity.NewHandler(identitySvc, tokens)

	walletSvc := wallet.NewService(ledgerBackend, provider)
	walletHandler := wallet.NewHandler(walletSvc)

	depositSvc := deposits.NewService(ledgerBackend, d.Logger)
	webhookHandler := deposits.NewHandler(provider, depositSvc, d.Logger)

	RegisterHookRoutes(app, webhookHandler)

	api := app.Group("/api")
	RegisterAuthRoutes(api, identityHandler, middleware.OTPRateLimit(d.Cache, d.Cfg.OTPMaxPerMin))

	protected := api.Group("", middleware.JWTAuth(tokens))
	if d.Cache != nil {
		protected = protected.Group("", middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	RegisterWalletRoutes(protected, walletHandler)

	return nil
}
