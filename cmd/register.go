package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0genblik/discord-bot/internal/config"
	"github.com/0genblik/discord-bot/internal/discord"
)

// botCommands are the slash commands this bot registers with Discord.
var botCommands = []discord.ApplicationCommand{
	{
		Name:        "ping",
		Description: "Check if the bot is online.",
	},
	{
		Name:        "weather",
		Description: "Get the weather for a specific location.",
		Options: []discord.CommandOptionSpec{
			{
				Type:        discord.OptionString,
				Name:        "location",
				Description: "Enter the location.",
				Required:    true,
			},
		},
	},
	{
		Name:        "trivia",
		Description: "Get a random trivia question.",
		Options: []discord.CommandOptionSpec{
			{
				Type:        discord.OptionInteger,
				Name:        "category",
				Description: "Open Trivia DB category id.",
			},
		},
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register the bot's slash commands with Discord",
	Long:  `Registers the ping, weather and trivia slash commands globally for the application. Run once after deploying or changing commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		provider, err := newSecretsProvider(cfg)
		if err != nil {
			return err
		}
		sec, err := provider.Fetch(cmd.Context())
		if err != nil {
			return fmt.Errorf("fetching secrets: %w", err)
		}

		client := discord.NewClient(cfg.DiscordAPIURL)
		for _, c := range botCommands {
			if err := client.RegisterCommand(cmd.Context(), sec.ApplicationID, sec.BotToken, c); err != nil {
				return err
			}
			fmt.Printf("Command %q registered successfully\n", c.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
}
