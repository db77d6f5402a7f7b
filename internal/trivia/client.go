// Package trivia fetches questions from the Open Trivia Database and
// implements the stateless answer round: everything a later button click
// needs to be judged is carried in the button's custom_id, so no round state
// is ever stored server-side.
package trivia

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"time"
)

// Question is a single decoded trivia question.
type Question struct {
	Category         string
	Difficulty       string
	Text             string
	CorrectAnswer    string
	IncorrectAnswers []string
}

// Client calls the Open Trivia Database API.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a Client for the given API base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// apiResponse mirrors the upstream payload. Fields arrive base64-encoded
// (requested via encode=base64) to sidestep HTML-entity and charset issues.
type apiResponse struct {
	ResponseCode int `json:"response_code"`
	Results      []struct {
		Category         string   `json:"category"`
		Difficulty       string   `json:"difficulty"`
		Question         string   `json:"question"`
		CorrectAnswer    string   `json:"correct_answer"`
		IncorrectAnswers []string `json:"incorrect_answers"`
	} `json:"results"`
}

// FetchQuestion retrieves one question, optionally restricted to a category.
// A category of 0 means any category.
func (c *Client) FetchQuestion(ctx context.Context, category int) (*Question, error) {
	url := c.baseURL + "/api.php?amount=1&encode=base64"
	if category > 0 {
		url = fmt.Sprintf("%s&category=%d", url, category)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching question: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var api apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if api.ResponseCode != 0 {
		return nil, fmt.Errorf("trivia API response code %d", api.ResponseCode)
	}
	if len(api.Results) == 0 {
		return nil, fmt.Errorf("trivia API returned no results")
	}

	raw := api.Results[0]
	q := &Question{}

	fields := []struct {
		dst *string
		src string
	}{
		{&q.Category, raw.Category},
		{&q.Difficulty, raw.Difficulty},
		{&q.Text, raw.Question},
		{&q.CorrectAnswer, raw.CorrectAnswer},
	}
	for _, f := range fields {
		decoded, err := decodeField(f.src)
		if err != nil {
			return nil, err
		}
		*f.dst = decoded
	}

	for _, enc := range raw.IncorrectAnswers {
		decoded, err := decodeField(enc)
		if err != nil {
			return nil, err
		}
		q.IncorrectAnswers = append(q.IncorrectAnswers, decoded)
	}

	return q, nil
}

func decodeField(enc string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", fmt.Errorf("decoding base64 field: %w", err)
	}
	return html.UnescapeString(string(b)), nil
}
