package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/0genblik/discord-bot/internal/audit"
	"github.com/0genblik/discord-bot/internal/config"
	"github.com/0genblik/discord-bot/internal/db"
	"github.com/0genblik/discord-bot/internal/discord"
	"github.com/0genblik/discord-bot/internal/dispatch"
	"github.com/0genblik/discord-bot/internal/executor"
	"github.com/0genblik/discord-bot/internal/logging"
	"github.com/0genblik/discord-bot/internal/router"
	"github.com/0genblik/discord-bot/internal/server"
	"github.com/0genblik/discord-bot/internal/trivia"
	"github.com/0genblik/discord-bot/internal/weather"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the interactions webhook server",
	Long:  `Starts the HTTP server that receives Discord interaction webhooks, verifies their signatures, and dispatches commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logger := logging.New(cfg.LogLevel)

		provider, err := newSecretsProvider(cfg)
		if err != nil {
			return err
		}

		// Fetch secrets eagerly so a misconfigured deployment fails at
		// startup, not on the first interaction. The weather API key is
		// needed here anyway to build the weather client.
		sec, err := provider.Fetch(cmd.Context())
		if err != nil {
			return fmt.Errorf("fetching secrets: %w", err)
		}

		database, err := db.Open(filepath.Join(cfg.DataDir, "discord-bot.db"))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()
		auditStore := audit.NewStore(database)

		exec := executor.New(
			provider,
			discord.NewClient(cfg.DiscordAPIURL),
			weather.NewClient(cfg.WeatherAPIURL, sec.WeatherAPIKey),
			trivia.NewClient(cfg.TriviaAPIURL),
			logger,
		)

		pool := dispatch.NewPool(cfg.DispatchWorkers, cfg.DispatchQueue, exec.HandleJob, logger)

		rt := router.New(provider, pool, auditStore, logger)

		srv := server.New(server.Config{Port: cfg.Port}, logger)
		router.RegisterRoutes(srv.Router(), rt)
		audit.RegisterRoutes(srv.Router(), auditStore)

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		select {
		case err := <-errCh:
			return fmt.Errorf("server stopped: %w", err)
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: server shutdown: %v\n", err)
		}
		if err := pool.Stop(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: dispatcher drain: %v\n", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
