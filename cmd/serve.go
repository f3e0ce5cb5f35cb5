package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	svix "github.com/svix/svix-webhooks/go"

	httpapi "nextlevel.com/nextlevel/internal/http"
	middleware "nextlevel.com/nextlevel/internal/http/middlewares"
	"nextlevel.com/nextlevel/internal/services"
	"nextlevel.com/nextlevel/internal/suggestions"
)

// sweepTimeout caps a single scheduled sweep.
const sweepTimeout = 2 * time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Starts the NextLevel HTTP API and, when SWEEP_SCHEDULE is set, the in-process recurrence sweep",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		cfg := a.cfg
		logger := a.logger
		loc := cfg.Location()

		rewardService := services.NewRewardService(a.locker, a.publisher, logger, cfg.UserLockTTL, cfg.UserLockWait)
		taskService := services.NewTaskService(a.store, rewardService, logger, time.Now, loc)
		projectService := services.NewProjectService(a.store, rewardService, logger, time.Now)
		userService := services.NewUserService(a.store, logger)
		recurrenceService := services.NewRecurrenceService(a.store, a.locker, logger, time.Now, loc)

		var generator services.SubtaskGenerator
		if cfg.LLMAPIKey != "" {
			generator = suggestions.NewClient(cfg.LLMAPIKey, cfg.LLMModel)
		} else {
			logger.Info("LLM_API_KEY not set, subtask suggestions are disabled")
		}
		suggestionService := services.NewSuggestionService(generator, logger)

		var webhook *svix.Webhook
		if cfg.WebhookSecret != "" {
			webhook, err = svix.NewWebhook(cfg.WebhookSecret)
			if err != nil {
				return err
			}
		} else {
			logger.Warn("WEBHOOK_SECRET not set, identity webhooks are disabled")
		}
		if cfg.JWTSecret == "" {
			logger.Warn("AUTH_JWT_SECRET not set, every authenticated route will reject requests")
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var scheduler *services.SchedulerService
		if cfg.SweepSchedule != "" {
			scheduler = services.NewSchedulerService(loc, logger)
			_, err := scheduler.Schedule("recurrence-sweep", cfg.SweepSchedule, sweepTimeout, func(ctx context.Context) error {
				_, err := recurrenceService.Sweep(ctx)
				return err
			})
			if err != nil {
				return err
			}
			scheduler.Start()
			logger.Info("recurrence sweep scheduled",
				slog.String("schedule", cfg.SweepSchedule),
				slog.String("timezone", loc.String()),
			)
		}

		handler := httpapi.NewHandler(taskService, projectService, userService, recurrenceService, suggestionService, webhook, a.store)

		e := echo.New()
		e.HideBanner = true
		e.HidePort = true
		e.HTTPErrorHandler = httpapi.ErrorHandler(logger)
		e.Use(echomw.RequestID())
		e.Use(middleware.RequestLogger(logger))
		e.Use(echomw.Recover())
		httpapi.Register(e, handler, httpapi.RouteConfig{
			RateLimitPerMinute: cfg.RateLimit,
			JWTSecret:          cfg.JWTSecret,
			JWTIssuer:          cfg.JWTIssuer,
			CronSecret:         cfg.CronSecret,
		})

		go func() {
			logger.Info("HTTP server listening", slog.String("addr", cfg.AppURL()))
			if err := e.Start(cfg.AppURL()); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("server stopped", slog.Any("error", err))
				stop()
			}
		}()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown", slog.Any("error", err))
		}

		if scheduler != nil {
			scheduler.Stop()
		}

		logger.Info("HTTP server and scheduler shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
