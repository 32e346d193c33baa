package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"agenda/internal/config"
	"agenda/internal/database"
	applogger "agenda/internal/logger"
	"agenda/internal/models"
	"agenda/internal/repositories"
	"agenda/internal/server"
	"agenda/internal/services"
	"agenda/pkg/rabbitmq"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app carries what every command needs once the root command has run.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:          "agenda",
		Short:        "Agenda - contact book for institutional e-mail users",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, err := applogger.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDatabase()
			if err != nil {
				return err
			}
			defer database.Close(db)
			fmt.Fprintln(cmd.OutOrStdout(), "database migrated")
			return nil
		},
	}

	var username, email, password string
	createUserCmd := &cobra.Command{
		Use:   "createuser",
		Short: "Create an account that can log in to the agenda",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDatabase()
			if err != nil {
				return err
			}
			defer database.Close(db)

			authService := services.NewAuthService(repositories.NewGORMUserRepository(db), a.cfg.SessionSecret, a.cfg.SessionTTL)
			user := &models.User{Username: username, Email: email, Password: password}
			if err := authService.RegisterUser(cmd.Context(), user); err != nil {
				return err
			}

			a.logger.Info("user created", zap.String("user_id", user.ID), zap.String("username", user.Username))
			fmt.Fprintf(cmd.OutOrStdout(), "user %s created\n", user.Username)
			return nil
		},
	}
	createUserCmd.Flags().StringVar(&username, "username", "", "login name")
	createUserCmd.Flags().StringVar(&email, "email", "", "e-mail address used to log in")
	createUserCmd.Flags().StringVar(&password, "password", "", "password (at least 6 characters)")
	_ = createUserCmd.MarkFlagRequired("username")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(serveCmd, migrateCmd, createUserCmd)
	return rootCmd
}

func (a *app) openDatabase() (*gorm.DB, error) {
	db, err := database.Open(a.cfg.DatabaseDriver, a.cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, err
	}
	return db, nil
}

func (a *app) serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := a.openDatabase()
	if err != nil {
		return err
	}
	defer database.Close(db)

	var opts []server.Option
	if a.cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: a.cfg.RabbitMQURL, Logger: a.logger})
		if err != nil {
			return err
		}
		defer mqClient.Close()

		if err := mqClient.ConsumeContactEvents(a.logContactEvent); err != nil {
			a.logger.Warn("contact event consumer not started", zap.Error(err))
		}
		opts = append(opts, server.WithEvents(mqClient))
	} else {
		a.logger.Info("RABBITMQ_URL not set, contact events disabled")
	}

	fiberApp := server.New(a.cfg, db, a.logger, opts...)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listenErr := make(chan error, 1)
	go func() {
		a.logger.Info("starting server", zap.String("addr", a.cfg.AppPort))
		listenErr <- fiberApp.Listen(a.cfg.AppPort)
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server")
	if err := fiberApp.Shutdown(); err != nil {
		return fmt.Errorf("error during shutdown: %w", err)
	}
	if err := <-listenErr; err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Warn("listener stopped with error", zap.Error(err))
	}
	a.logger.Info("server gracefully stopped")
	return nil
}

func (a *app) logContactEvent(event models.ContactEvent) error {
	a.logger.Info("contact event received",
		zap.String("type", event.Type),
		zap.Uint("contact_id", event.ContactID),
		zap.Time("occurred_at", event.OccurredAt),
	)
	return nil
}
