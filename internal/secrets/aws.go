package secrets

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
)

// secretsManagerAPI is the slice of the Secrets Manager client used by
// AWSProvider, kept narrow so tests can stub it.
type secretsManagerAPI interface {
	GetSecretValueWithContext(ctx aws.Context, input *secretsmanager.GetSecretValueInput, opts ...request.Option) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSProvider fetches secrets from a single AWS Secrets Manager secret whose
// value is a JSON object with BOT_TOKEN, APPLICATION_ID, DISCORD_PUBLIC_KEY
// and WEATHER_API_KEY keys.
type AWSProvider struct {
	svc      secretsManagerAPI
	secretID string
}

// NewAWSProvider creates a provider reading the named secret in the given
// region.
func NewAWSProvider(region, secretID string) (*AWSProvider, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("creating aws session: %w", err)
	}
	return &AWSProvider{
		svc:      secretsmanager.New(sess),
		secretID: secretID,
	}, nil
}

// secretDocument mirrors the JSON layout of the stored secret value.
type secretDocument struct {
	BotToken      string `json:"BOT_TOKEN"`
	ApplicationID string `json:"APPLICATION_ID"`
	PublicKey     string `json:"DISCORD_PUBLIC_KEY"`
	WeatherAPIKey string `json:"WEATHER_API_KEY"`
}

// Fetch retrieves and validates the secret document.
func (p *AWSProvider) Fetch(ctx context.Context) (Secrets, error) {
	out, err := p.svc.GetSecretValueWithContext(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(p.secretID),
	})
	if err != nil {
		return Secrets{}, fmt.Errorf("fetching secret %q: %w", p.secretID, err)
	}
	if out.SecretString == nil {
		return Secrets{}, fmt.Errorf("secret %q has no string value", p.secretID)
	}

	var doc secretDocument
	if err := json.Unmarshal([]byte(*out.SecretString), &doc); err != nil {
		return Secrets{}, fmt.Errorf("parsing secret %q: %w", p.secretID, err)
	}

	s := Secrets{
		BotToken:      doc.BotToken,
		ApplicationID: doc.ApplicationID,
		PublicKey:     doc.PublicKey,
		WeatherAPIKey: doc.WeatherAPIKey,
	}
	if err := s.Validate(); err != nil {
		return Secrets{}, fmt.Errorf("secret %q: %w", p.secretID, err)
	}
	return s, nil
}
