package config

// DefaultConfig returns the configuration used when no file or environment
// overrides are present.
func DefaultConfig() *Config {
	return &Config{
		Port:            8080,
		LogLevel:        "info",
		DataDir:         "data",
		SecretsBackend:  SecretsEnv,
		AWSRegion:       "eu-west-2",
		AWSSecretID:     "discord_keys",
		DiscordAPIURL:   "https://discord.com/api/v10",
		WeatherAPIURL:   "https://api.openweathermap.org",
		TriviaAPIURL:    "https://opentdb.com",
		DispatchWorkers: 4,
		DispatchQueue:   64,
	}
}
