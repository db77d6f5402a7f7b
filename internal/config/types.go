package config

// SecretsBackend selects where bot credentials are fetched from.
type SecretsBackend string

const (
	SecretsEnv SecretsBackend = "env"
	SecretsAWS SecretsBackend = "aws"
)

// Config holds all service configuration.
type Config struct {
	// Port is the HTTP listen port for the interactions endpoint.
	Port int `koanf:"port"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DataDir is the directory holding the SQLite audit database.
	DataDir string `koanf:"data_dir"`

	// SecretsBackend is "env" or "aws".
	SecretsBackend SecretsBackend `koanf:"secrets_backend"`

	// AWSRegion and AWSSecretID locate the Secrets Manager secret when the
	// aws backend is selected.
	AWSRegion   string `koanf:"aws_region"`
	AWSSecretID string `koanf:"aws_secret_id"`

	// API base URLs, overridable for testing.
	DiscordAPIURL string `koanf:"discord_api_url"`
	WeatherAPIURL string `koanf:"weather_api_url"`
	TriviaAPIURL  string `koanf:"trivia_api_url"`

	// Dispatcher sizing for the deferred-command worker pool.
	DispatchWorkers int `koanf:"dispatch_workers"`
	DispatchQueue   int `koanf:"dispatch_queue"`
}
