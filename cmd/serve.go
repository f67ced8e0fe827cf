package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/junaidrashid-git/canteen-api/auth"
	"github.com/junaidrashid-git/canteen-api/cart"
	"github.com/junaidrashid-git/canteen-api/config"
	"github.com/junaidrashid-git/canteen-api/database"
	"github.com/junaidrashid-git/canteen-api/messaging"
	"github.com/junaidrashid-git/canteen-api/order"
	"github.com/junaidrashid-git/canteen-api/qr"
	"github.com/junaidrashid-git/canteen-api/routes"
	"github.com/junaidrashid-git/canteen-api/store"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, log)
	},
}

func serve(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	log.Info("✅ starting canteen api", zap.String("port", cfg.Port))

	db, err := database.Open(ctx, cfg.DSN(), log)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	menu := store.NewMenuStore(db)
	carts := cart.New(store.NewCartStore(db), menu, log.Named("cart"))

	var pub order.Publisher
	var mq *messaging.Client
	if cfg.RabbitMQURL != "" {
		mq, err = messaging.Dial(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer mq.Close()
		if err := mq.DeclareFanout(cfg.OrdersExchange); err != nil {
			return err
		}
		pub = messaging.NewEventPublisher(mq, cfg.OrdersExchange)
	} else {
		log.Info("RABBITMQ_URL not set, order events stay local")
	}

	orders := order.NewService(store.NewOrderRepository(db), carts, menu, pub, log.Named("order"), order.Config{
		TaxRateBps:        cfg.TaxRateBps,
		RequestTimeout:    cfg.RequestTimeout,
		CartClearAttempts: cfg.CartClearAttempts,
	})

	if mq != nil {
		ch, err := mq.NewChannel()
		if err != nil {
			return err
		}
		consumer := messaging.NewPaymentConsumer(ch, cfg.PaymentsQueue, cfg.RabbitPrefetch, orders, log.Named("payments"))
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("payment consumer stopped", zap.Error(err))
			}
		}()
	}

	// Back up uploaded images at 2 AM daily
	go qr.Backup{
		Src:       cfg.UploadDir,
		Dest:      cfg.BackupDir,
		Retention: cfg.BackupRetention,
		Hour:      cfg.BackupHour,
		Log:       log.Named("backup"),
	}.Run(ctx)

	router := routes.NewRouter(routes.Deps{
		Config: cfg,
		Log:    log,
		Tokens: auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL),
		Carts:  carts,
		Orders: orders,
		Menu:   menu,
		Users:  store.NewUserStore(db),
		Tables: store.NewQRStore(db),
		QRGen:  qr.NewGenerator(cfg.UploadDir, cfg.PublicBaseURL, cfg.FrontendBaseURL),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("🚀 server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}
