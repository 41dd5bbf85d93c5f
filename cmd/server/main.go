package main

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopdesk-be/internal/checkout"
	"shopdesk-be/internal/config"
	"shopdesk-be/internal/contact"
	"shopdesk-be/internal/db"
	"shopdesk-be/internal/handler"
	"shopdesk-be/internal/inventory"
	"shopdesk-be/internal/logger"
	"shopdesk-be/internal/metrics"
	"shopdesk-be/internal/middleware"
	"shopdesk-be/internal/notification"
	"shopdesk-be/internal/order"
	"shopdesk-be/internal/payment"
	"shopdesk-be/internal/pricing"
	"shopdesk-be/internal/product"

	"go.uber.org/zap"
)

const (
	shutdownTimeout  = 10 * time.Second
	limiterSweepTick = time.Minute
)

var (
	initDBFunc      = db.InitDB
	startServerFunc = listenAndServe
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv, cfg.LogLevel)
	defer logger.Sync()

	database := initDBFunc(cfg)
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newServer(cfg, database)
	defer app.close()

	go app.limiter.Cleanup(ctx, limiterSweepTick)

	addr := ":" + cfg.AppPort
	logger.L().Info("HTTP server running", zap.String("addr", addr))
	return startServerFunc(ctx, addr, app.handler)
}

type server struct {
	handler  http.Handler
	limiter  *middleware.RateLimiter
	notifier notification.Sender
}

func (s *server) close() {
	if c, ok := s.notifier.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logger.L().Warn("failed to close notifier", zap.Error(err))
		}
	}
}

func newServer(cfg *config.Config, database *sql.DB) *server {
	m := metrics.New("shopdesk")

	productRepo := product.NewRepository(database)
	contactRepo := contact.NewRepository(database)
	orderRepo := order.NewRepository(database)
	txManager := db.NewTxManager(database)
	ledger := inventory.NewLedger(productRepo, m)

	calculator := pricing.NewCalculator(pricing.Options{
		TaxRate:               cfg.TaxRate,
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		FlatShippingFee:       cfg.FlatShippingFee,
	}, pricing.NewStaticPromoTable(cfg.PromoCodes))

	dispatcher := payment.NewDispatcher(cfg.PaymentTimeout, m,
		payment.NewCODGateway(),
		payment.NewStripeGateway(payment.StripeConfig{
			SecretKey:  cfg.StripeSecretKey,
			SuccessURL: cfg.StripeSuccessURL,
			CancelURL:  cfg.StripeCancelURL,
			Timeout:    cfg.PaymentTimeout,
		}),
		payment.NewRazorpayGateway(payment.RazorpayConfig{
			KeyID:     cfg.RazorpayKeyID,
			KeySecret: cfg.RazorpayKeySecret,
			Timeout:   cfg.PaymentTimeout,
		}),
		payment.NewWhatsAppPayGateway(),
	)

	notifier, err := notification.NewSender(cfg)
	if err != nil {
		logger.L().Warn("notification driver unavailable, falling back to log",
			zap.String("driver", cfg.NotifyDriver),
			zap.Error(err),
		)
		notifier = notification.NewLogSender()
	}

	checkoutSvc := checkout.NewService(checkout.Deps{
		Products:   productRepo,
		Ledger:     ledger,
		Calculator: calculator,
		Contacts:   contact.NewResolver(contactRepo),
		Orders:     orderRepo,
		Tx:         txManager,
		Payments:   dispatcher,
		Notifier:   notifier,
		Metrics:    m,
		Currency:   cfg.Currency,
	})
	orderSvc := order.NewService(orderRepo, txManager, ledger)

	limiter := middleware.NewRateLimiter()
	router := &handler.Router{
		Checkout:  handler.NewCheckoutHandler(checkoutSvc),
		Orders:    handler.NewOrderHandler(orderSvc),
		Products:  handler.NewProductHandler(ledger),
		Metrics:   m,
		Limiter:   limiter,
		JWTSecret: []byte(cfg.JWTSecret),
		Health: func(r *http.Request) error {
			return database.PingContext(r.Context())
		},
	}

	return &server{handler: router.Handler(), limiter: limiter, notifier: notifier}
}

// listenAndServe blocks until ctx is cancelled, then drains in-flight requests.
func listenAndServe(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.L().Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
