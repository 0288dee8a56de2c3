package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"community-app/config"
	"community-app/database"
	adminapi "community-app/internal/api/admin"
	authapi "community-app/internal/api/auth"
	channelsapi "community-app/internal/api/channels"
	coursesapi "community-app/internal/api/courses"
	groupsapi "community-app/internal/api/groups"
	notificationsapi "community-app/internal/api/notifications"
	paymentsapi "community-app/internal/api/payments"
	plansapi "community-app/internal/api/plans"
	subscriptionsapi "community-app/internal/api/subscriptions"
	usersapi "community-app/internal/api/users"
	routes "community-app/internal/app/http"
	"community-app/internal/app/http/middleware"
	"community-app/internal/infra/mail"
	"community-app/internal/infra/razorpay"
	ws "community-app/internal/websocket"
	"community-app/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	production := os.Getenv("GIN_MODE") == "release"
	log, err := logger.New(os.Getenv("LOG_LEVEL"), production)
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := database.Open(cfg.DBURL)
	if err != nil {
		return err
	}
	defer database.Close(db)

	gateway := razorpay.NewClient(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)

	var mailer mail.Mailer
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPMailer(cfg.SMTP)
	} else {
		log.Warn("SMTP not configured, emails are logged only")
		mailer = &mail.LogMailer{Log: log}
	}

	hub := ws.NewHub(log)
	go hub.Run()

	book := &subscriptionsapi.Bookkeeper{
		DB:        db,
		Gateway:   gateway,
		PlanID:    cfg.Razorpay.PlatformPlanID,
		TrialDays: cfg.TrialDays,
	}

	if production {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(log), gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.Register(r, cfg.JWTSecret, routes.Handlers{
		Auth:          authapi.NewHandler(db, cfg, mailer, log),
		Users:         usersapi.NewHandler(db, log),
		Groups:        groupsapi.NewHandler(db, book, log),
		Plans:         plansapi.NewHandler(db, log),
		Payments:      paymentsapi.NewHandler(db, gateway, cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, log),
		Subscriptions: subscriptionsapi.NewHandler(db, book, log),
		Courses:       coursesapi.NewHandler(db, log),
		Channels:      channelsapi.NewHandler(db, hub, log),
		Notifications: notificationsapi.NewHandler(db, log),
		Admin:         adminapi.NewHandler(db, mailer, log),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
