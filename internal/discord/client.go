package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultAPIBaseURL is the production Discord REST API endpoint.
const DefaultAPIBaseURL = "https://discord.com/api/v10"

// Client talks to the Discord REST API for followup delivery and
// slash-command registration.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a Client against the given API base URL. An empty
// baseURL selects the production endpoint.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// EditOriginalResponse replaces the deferred "thinking" placeholder with the
// real answer. The interaction token, not the bot token, authorizes the edit.
func (c *Client) EditOriginalResponse(ctx context.Context, applicationID, interactionToken string, data *ResponseData) error {
	url := fmt.Sprintf("%s/webhooks/%s/%s/messages/@original", c.baseURL, applicationID, interactionToken)

	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshalling followup body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating followup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending followup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("followup returned status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}
	return nil
}

// ApplicationCommand describes a slash command for registration.
type ApplicationCommand struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Options     []CommandOptionSpec `json:"options,omitempty"`
}

// CommandOptionSpec describes one option of a slash command.
type CommandOptionSpec struct {
	Type        int    `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required,omitempty"`
}

// Command option type codes.
const (
	OptionString  = 3
	OptionInteger = 4
)

// RegisterCommand creates or updates a global slash command for the
// application. Registration is authorized with the bot token.
func (c *Client) RegisterCommand(ctx context.Context, applicationID, botToken string, cmd ApplicationCommand) error {
	url := fmt.Sprintf("%s/applications/%s/commands", c.baseURL, applicationID)

	body, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshalling command %q: %w", cmd.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating registration request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bot "+botToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("registering command %q: %w", cmd.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("registering command %q: status %d: %s", cmd.Name, resp.StatusCode, readErrorBody(resp.Body))
	}
	return nil
}

// readErrorBody returns a truncated response body for error messages.
func readErrorBody(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil {
		return ""
	}
	return string(b)
}
