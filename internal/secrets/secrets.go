package secrets

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// Secrets holds the credentials the bot needs at runtime. The core treats
// them as immutable for the lifetime of the process.
type Secrets struct {
	BotToken      string
	ApplicationID string
	PublicKey     string
	WeatherAPIKey string
}

// Validate checks that every credential is present.
func (s Secrets) Validate() error {
	if s.BotToken == "" {
		return fmt.Errorf("bot token is missing")
	}
	if s.ApplicationID == "" {
		return fmt.Errorf("application id is missing")
	}
	if s.PublicKey == "" {
		return fmt.Errorf("public key is missing")
	}
	if s.WeatherAPIKey == "" {
		return fmt.Errorf("weather api key is missing")
	}
	return nil
}

// Provider fetches the bot's credentials.
type Provider interface {
	Fetch(ctx context.Context) (Secrets, error)
}

// Environment variable names read by EnvProvider.
const (
	EnvBotToken      = "DISCORD_BOT_TOKEN"
	EnvApplicationID = "DISCORD_APPLICATION_ID"
	EnvPublicKey     = "DISCORD_PUBLIC_KEY"
	EnvWeatherAPIKey = "OPENWEATHER_API_KEY"
)

// EnvProvider reads secrets from the process environment.
type EnvProvider struct{}

// Fetch reads and validates all credentials from the environment.
func (EnvProvider) Fetch(_ context.Context) (Secrets, error) {
	s := Secrets{
		BotToken:      os.Getenv(EnvBotToken),
		ApplicationID: os.Getenv(EnvApplicationID),
		PublicKey:     os.Getenv(EnvPublicKey),
		WeatherAPIKey: os.Getenv(EnvWeatherAPIKey),
	}
	if err := s.Validate(); err != nil {
		return Secrets{}, fmt.Errorf("environment secrets: %w", err)
	}
	return s, nil
}

// Cached decorates a Provider so the underlying fetch happens once per
// process. Secrets are immutable for the process lifetime, so caching has no
// correctness impact; it only removes repeat round-trips on warm instances.
type Cached struct {
	inner Provider

	mu     sync.Mutex
	loaded bool
	cached Secrets
}

// NewCached wraps the given provider with a process-lifetime cache.
func NewCached(inner Provider) *Cached {
	return &Cached{inner: inner}
}

// Fetch returns the cached secrets, fetching them on first use. A failed
// fetch is not cached, so the next request retries.
func (c *Cached) Fetch(ctx context.Context) (Secrets, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.cached, nil
	}

	s, err := c.inner.Fetch(ctx)
	if err != nil {
		return Secrets{}, err
	}

	c.cached = s
	c.loaded = true
	return s, nil
}
