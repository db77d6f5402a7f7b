package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0genblik/discord-bot/internal/config"
	"github.com/0genblik/discord-bot/internal/secrets"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "discord-bot",
	Short: "Discord interactions bot with deferred command execution",
	Long: `A webhook-based Discord bot that authenticates interactions with
Ed25519, acknowledges slash commands within the platform's 3-second
deadline, and executes slow commands (weather, trivia) asynchronously
with a deferred followup response.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "discord-bot.yml", "config file path")
}

// newSecretsProvider builds the secrets provider selected by the config,
// wrapped in a process-lifetime cache.
func newSecretsProvider(cfg *config.Config) (secrets.Provider, error) {
	switch cfg.SecretsBackend {
	case config.SecretsAWS:
		p, err := secrets.NewAWSProvider(cfg.AWSRegion, cfg.AWSSecretID)
		if err != nil {
			return nil, fmt.Errorf("creating aws secrets provider: %w", err)
		}
		return secrets.NewCached(p), nil
	case config.SecretsEnv:
		return secrets.NewCached(secrets.EnvProvider{}), nil
	default:
		return nil, fmt.Errorf("unknown secrets backend %q", cfg.SecretsBackend)
	}
}
