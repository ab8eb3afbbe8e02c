package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/cmd/cli/commands"
	"github.com/jakechorley/volunteer-hub/internal/config"
	"github.com/jakechorley/volunteer-hub/pkg/clients/gmailclient"
	"github.com/jakechorley/volunteer-hub/pkg/core/progression"
	"github.com/jakechorley/volunteer-hub/pkg/core/reminders"
	"github.com/jakechorley/volunteer-hub/pkg/core/services"
	"github.com/jakechorley/volunteer-hub/pkg/identity"
	"github.com/jakechorley/volunteer-hub/pkg/mongostore"
	"github.com/jakechorley/volunteer-hub/pkg/postgres"
	"github.com/jakechorley/volunteer-hub/pkg/utils"
	"github.com/jakechorley/volunteer-hub/pkg/utils/logging"
)

var (
	asEmail      string
	sessionToken string
	app          = &commands.AppContext{}
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cli",
		Short: "Volunteer Hub CLI - Track volunteering and manage events",
		Long:  `A CLI tool for volunteers to join events and follow their progress, and for organizations to publish events and decide on join requests.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Database != nil {
				app.Database.Close()
			}
			if app.Logger != nil {
				app.Logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&app.Env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")
	rootCmd.PersistentFlags().StringVar(&asEmail, "as", "", "Act as this email address (trusted local use)")
	rootCmd.PersistentFlags().StringVar(&sessionToken, "session", os.Getenv("VH_SESSION"), "Session token from the login command")

	rootCmd.AddCommand(commands.MigrateCmd(app))
	rootCmd.AddCommand(commands.LoginCmd(app))
	rootCmd.AddCommand(commands.ProfileCmd(app))
	rootCmd.AddCommand(commands.CreateEventCmd(app))
	rootCmd.AddCommand(commands.UpdateEventCmd(app))
	rootCmd.AddCommand(commands.DeleteEventCmd(app))
	rootCmd.AddCommand(commands.EventsCmd(app))
	rootCmd.AddCommand(commands.JoinCmd(app))
	rootCmd.AddCommand(commands.PendingCmd(app))
	rootCmd.AddCommand(commands.DecideCmd(app))
	rootCmd.AddCommand(commands.DashboardCmd(app))
	rootCmd.AddCommand(commands.CalendarCmd(app))
	rootCmd.AddCommand(commands.GoalsCmd(app))
	rootCmd.AddCommand(commands.SetGoalCmd(app))
	rootCmd.AddCommand(commands.WatchCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up config, logger, policy, store, identity and notifier
func initApp() error {
	var err error
	app.Ctx = context.Background()

	// Configuration comes first since it carries the log settings
	app.Cfg, err = config.LoadWithEnv(app.Env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	app.Logger, err = logging.InitLogger(app.Env, logging.Options{
		Dir:          app.Cfg.Logging.Dir,
		ConsoleLevel: app.Cfg.Logging.ConsoleLevel,
		FileLevel:    app.Cfg.Logging.FileLevel,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", app.Env))
	app.Logger.Debug("Configuration loaded successfully", zap.String("backend", app.Cfg.Store.Backend))

	// Load progression policy
	app.Logger.Info("Loading progression policy")
	app.Policy = progression.Default()
	if app.Cfg.PolicyPath != "" {
		app.Policy, err = progression.LoadFromPath(app.Cfg.PolicyPath)
		if err != nil {
			return fmt.Errorf("failed to load progression policy: %w", err)
		}
	}

	app.Schedule, err = reminders.NewSchedule(app.Cfg.Reminders.RRule)
	if err != nil {
		return fmt.Errorf("failed to create reminder schedule: %w", err)
	}

	if err := initStore(); err != nil {
		return err
	}

	if err := initIdentity(); err != nil {
		return err
	}

	return initNotifier()
}

func initStore() error {
	ctx, cancel := context.WithTimeout(app.Ctx, app.Cfg.Store.Timeout)
	defer cancel()

	switch app.Cfg.Store.Backend {
	case config.BackendMongo:
		app.Logger.Info("Connecting to mongo", zap.String("database", app.Cfg.Store.MongoDatabase))
		store, err := mongostore.NewDB(ctx, app.Cfg.Store.MongoURI, app.Cfg.Store.MongoDatabase, app.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		app.Database = store
		app.Migrate = store.EnsureIndexes
	default:
		app.Logger.Info("Connecting to postgres", zap.Int32("max_conns", app.Cfg.Store.MaxConns))
		store, err := postgres.NewDB(ctx, app.Cfg.Store.PostgresDSN, postgres.PoolOptions{MaxConns: app.Cfg.Store.MaxConns}, app.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		app.Database = store
		app.Migrate = store.RunMigrations
	}

	app.Logger.Info("Database initialized successfully")
	return nil
}

func initIdentity() error {
	if app.Cfg.Session.Secret != "" {
		app.Sessions = identity.NewSessionManager(app.Cfg.Session.Secret, app.Cfg.Session.Issuer)
	}

	switch {
	case sessionToken != "":
		if app.Sessions == nil {
			return fmt.Errorf("--session given but session.secret is not configured")
		}
		app.Identity = identity.NewSession(app.Sessions, sessionToken)
	default:
		app.Identity = identity.Static{Email: asEmail}
	}

	if email, ok := app.Identity.CurrentUserEmail(); ok {
		app.Logger.Debug("Signed in", zap.String("email", email))
	}
	return nil
}

func initNotifier() error {
	if !app.Cfg.Email.Enabled {
		app.Logger.Debug("Email disabled, notifications will be logged")
		app.Notifier = services.LogNotifier{Logger: app.Logger}
		return nil
	}

	// Load OAuth client configuration
	app.Logger.Info("Loading OAuth client configuration")
	oauthCfg, err := config.LoadOAuthClient(app.Cfg.Email, app.Env)
	if err != nil {
		return fmt.Errorf("failed to load OAuth client config: %w", err)
	}

	oauthConfig, err := utils.GetOAuthConfig(oauthCfg)
	if err != nil {
		return err
	}

	tokens, err := utils.DefaultTokenStore()
	if err != nil {
		return err
	}

	token, err := utils.GetTokenWithFlow(app.Ctx, oauthConfig, tokens, app.Env, app.Logger)
	if err != nil {
		return fmt.Errorf("failed to get OAuth token: %w", err)
	}

	// Initialize gmail client
	app.Logger.Info("Initializing gmail client")
	client, err := gmailclient.NewClient(app.Ctx, oauthCfg, token, app.Cfg.Email.Sender)
	if err != nil {
		return fmt.Errorf("failed to create gmail client: %w", err)
	}
	app.Notifier = gmailclient.NewNotifier(client)
	app.Logger.Debug("Gmail client initialized successfully")

	return nil
}
