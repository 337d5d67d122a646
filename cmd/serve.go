package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	config "github.com/shahpalash10/chore-Mate/internal/configs"
	httpapi "github.com/shahpalash10/chore-Mate/internal/http"
	"github.com/shahpalash10/chore-Mate/internal/identity"
	"github.com/shahpalash10/chore-Mate/internal/notify"
	"github.com/shahpalash10/chore-Mate/internal/remote"
	repository "github.com/shahpalash10/chore-Mate/internal/repositories"
	"github.com/shahpalash10/chore-Mate/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chore tracker",
	Long:  "Starts the HTTP surface, the session manager, and the task synchronizer",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Println(".env file not found, using environment variables")
		}

		cfg := config.Load()
		database := config.New(cfg.DatabaseDSN)

		var notifier remote.Notifier
		if cfg.UseRedisNotifier {
			redisClient := config.NewRedisClient(cfg.RedisAddr)
			defer redisClient.Close()
			notifier = notify.NewRedis(redisClient)
		} else {
			notifier = notify.NewLocal()
		}

		taskRepo := repository.NewTaskRepository(database, notifier)
		userRepo := repository.NewUserRepository(database, notifier)

		ids := identity.NewService(
			database,
			cfg.JWTSecret,
			time.Duration(cfg.SessionTTLHours)*time.Hour,
			cfg.SessionFile,
		)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sessionService := services.NewSessionService(
			ids, userRepo,
			time.Duration(cfg.InitTimeoutSeconds)*time.Second,
		)
		syncService := services.NewSyncService(
			taskRepo, userRepo, notifier, sessionService,
			time.Duration(cfg.ToastSeconds)*time.Second,
		)

		// The synchronizer runs only while a session is ready, mirroring the
		// data-sync lifecycle of the client shell.
		sessionService.OnState(func(state services.SessionState) {
			switch state {
			case services.StateReady:
				if err := syncService.Start(ctx); err != nil {
					log.Printf("failed to start task sync: %v", err)
				}
			case services.StateAnonymous:
				syncService.Stop()
			}
		})

		sessionService.Init(ctx)

		e := echo.New()
		handler := httpapi.NewHandler(sessionService, syncService)
		httpapi.Register(e, handler, cfg.RateLimit)

		go func() {
			log.Printf("HTTP server listening on %s", cfg.AppURL)
			if err := e.Start(cfg.AppURL); err != nil {
				log.Printf("server stopped: %v", err)
			}
		}()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second,
		)
		defer cancel()

		_ = e.Shutdown(shutdownCtx)
		syncService.Stop()
		sessionService.Stop()

		log.Println("shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
