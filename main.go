package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tracker-hooks/internal"
	"tracker-hooks/internal/domain"
	"tracker-hooks/internal/githubapi"
	"tracker-hooks/internal/shotgrid"
	"tracker-hooks/internal/ticket"
	"tracker-hooks/internal/tracker"
	"tracker-hooks/internal/web"
	"tracker-hooks/internal/web/routes"
)

func initializeShotgridClient(ctx context.Context, config internal.Configuration, logger *zap.Logger) *shotgrid.Client {
	client := shotgrid.NewClient(ctx, shotgrid.Config{
		BaseURL:    config.ShotgridURL,
		ScriptName: config.ShotgridScriptName,
		APIKey:     config.ShotgridAPIKey,
		Timeout:    config.BackendTimeout,
	}, logger)

	logger.Info("ShotGrid client initialized",
		zap.String("url", config.ShotgridURL),
		zap.String("script", config.ShotgridScriptName),
	)
	return client
}

// initializeProfileSource returns nil when neither a GitHub token nor an API
// URL is configured. Users are then resolved from webhook data alone.
func initializeProfileSource(config internal.Configuration, logger *zap.Logger) tracker.ProfileSource {
	if config.GithubToken == "" && config.GithubAPIURL == "" {
		logger.Info("GitHub profile lookups disabled")
		return nil
	}

	client, err := githubapi.NewProfileClient(config.GithubToken, config.GithubAPIURL, logger)
	if err != nil {
		logger.Fatal("failed to create GitHub client", zap.Error(err))
	}
	logger.Info("GitHub profile lookups enabled", zap.String("api", config.GithubAPIURL))
	return client
}

func initializeSentry(config internal.Configuration, logger *zap.Logger) bool {
	if config.SentryDSN == "" {
		return false
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         config.SentryDSN,
		Environment: config.Environment,
	})
	if err != nil {
		logger.Fatal("failed to initialize sentry", zap.Error(err))
	}
	logger.Info("Sentry error reporting enabled", zap.String("environment", config.Environment))
	return true
}

func serve(cmd *cobra.Command, args []string) error {
	config, err := internal.LoadConfiguration()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := internal.NewLogger(config.Debug, config.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()
	logger.Info("starting server")

	if initializeSentry(config, logger) {
		defer sentry.Flush(2 * time.Second)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mapper := tracker.NewMapper(
		initializeShotgridClient(ctx, config, logger),
		initializeProfileSource(config, logger),
		tracker.Settings{
			Project:             domain.EntityRef{Type: domain.EntityProject, ID: config.ShotgridProjectID},
			ComponentEntityType: config.ComponentEntityType,
			BareBranchRepos:     config.BareBranchRepos,
		},
		logger,
	)

	if config.GithubWebhookSecret == "" {
		logger.Warn("GITHUB_WEBHOOK_SECRET is not set, webhook signatures are not verified")
	}

	e := web.NewEcho(logger, config.RequestTimeout)
	routes.CreateRoutes(e, &routes.WebhookController{
		Mapper:     mapper,
		Secret:     []byte(config.GithubWebhookSecret),
		Deliveries: routes.NewDeliveryLog(config.DeduplicationWindow),
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.RequestTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shut down server", zap.Error(err))
		}
	}()

	logger.Info("server started", zap.String("addr", config.ListenAddr))
	err = e.Start(config.ListenAddr)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("failed to start server", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

var rootCmd = &cobra.Command{
	Use:   "tracker-hooks",
	Short: "Mirror GitHub activity onto ShotGrid tickets",
	Long: `tracker-hooks receives GitHub webhooks and records them in ShotGrid:
code review assignments and results on tickets, revisions for pushed
commits, releases for tags and components for repositories.

Without a subcommand it runs the webhook server.`,
	SilenceUsage: true,
	RunE:         serve,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook server",
	Args:  cobra.NoArgs,
	RunE:  serve,
}

var parseCmd = &cobra.Command{
	Use:   "parse <text>",
	Short: "Print the ticket id referenced by a title, branch or commit message",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if id, ok := ticket.ParseReference(strings.Join(args, " ")); ok {
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), "no ticket id")
	},
	Example: `  tracker-hooks parse "For #12345 fix crash"
  tracker-hooks parse 12345_fix_crash`,
}

func init() {
	rootCmd.AddCommand(serveCmd, parseCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
