// Package executor runs deferred slash commands and delivers their results
// as the single followup edit of the "thinking" placeholder. It is invoked
// from the dispatcher's workers, never from the request path.
package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/0genblik/discord-bot/internal/discord"
	"github.com/0genblik/discord-bot/internal/dispatch"
	"github.com/0genblik/discord-bot/internal/secrets"
	"github.com/0genblik/discord-bot/internal/trivia"
	"github.com/0genblik/discord-bot/internal/weather"
)

// WeatherService resolves a location to its current conditions.
type WeatherService interface {
	Current(ctx context.Context, location string) (*weather.Report, error)
}

// TriviaService fetches one trivia question.
type TriviaService interface {
	FetchQuestion(ctx context.Context, category int) (*trivia.Question, error)
}

// FollowupSender delivers the followup edit for a deferred interaction.
type FollowupSender interface {
	EditOriginalResponse(ctx context.Context, applicationID, interactionToken string, data *discord.ResponseData) error
}

// Executor dispatches deferred commands to their handlers.
type Executor struct {
	secrets  secrets.Provider
	followup FollowupSender
	weather  WeatherService
	trivia   TriviaService
	logger   *slog.Logger
}

// New creates an Executor.
func New(provider secrets.Provider, followup FollowupSender, weatherSvc WeatherService, triviaSvc TriviaService, logger *slog.Logger) *Executor {
	return &Executor{
		secrets:  provider,
		followup: followup,
		weather:  weatherSvc,
		trivia:   triviaSvc,
		logger:   logger,
	}
}

// HandleJob adapts Execute to the dispatcher's job handler signature. The
// payload is the raw interaction JSON the router received.
func (e *Executor) HandleJob(ctx context.Context, job dispatch.Job) {
	var interaction discord.Interaction
	if err := json.Unmarshal(job.Payload, &interaction); err != nil {
		e.logger.Error("unparseable job payload", "job", job.Name, "error", err)
		return
	}
	e.Execute(ctx, interaction)
}

// Execute runs the command carried by the interaction and sends exactly one
// followup. Handler failures degrade to user-facing error text; a failed
// followup delivery is logged and not retried.
func (e *Executor) Execute(ctx context.Context, interaction discord.Interaction) {
	if interaction.Data == nil || interaction.Data.Name == "" {
		e.logger.Error("interaction has no command data", "interaction_id", interaction.ID)
		return
	}
	name := interaction.Data.Name

	sec, err := e.secrets.Fetch(ctx)
	if err != nil {
		e.logger.Error("fetching secrets", "command", name, "error", err)
		return
	}

	var data *discord.ResponseData
	switch name {
	case "ping":
		data = &discord.ResponseData{Content: "Pong!"}
	case "weather":
		data = e.handleWeather(ctx, interaction.Data)
	case "trivia":
		data = e.handleTrivia(ctx, interaction.Data)
	default:
		e.logger.Warn("unknown command", "command", name)
		data = &discord.ResponseData{Content: fmt.Sprintf("Unknown command: %s", name)}
	}

	appID := interaction.ApplicationID
	if appID == "" {
		appID = sec.ApplicationID
	}

	if err := e.followup.EditOriginalResponse(ctx, appID, interaction.Token, data); err != nil {
		e.logger.Error("sending followup", "command", name, "interaction_id", interaction.ID, "error", err)
	}
}

func (e *Executor) handleWeather(ctx context.Context, data *discord.InteractionData) *discord.ResponseData {
	location, ok := data.StringOption("location")
	if !ok || location == "" {
		return &discord.ResponseData{Content: "Please provide a location!"}
	}

	report, err := e.weather.Current(ctx, location)
	switch {
	case errors.Is(err, weather.ErrLocationNotFound):
		return &discord.ResponseData{
			Content: fmt.Sprintf("❌ I couldn't find the location: %s\nPlease check the spelling and try again!", location),
		}
	case err != nil:
		e.logger.Error("weather lookup failed", "location", location, "error", err)
		return &discord.ResponseData{
			Content: "❌ Sorry, I couldn't fetch the weather information at this time. Please try again later!",
		}
	}

	return &discord.ResponseData{Content: formatWeather(report)}
}

func formatWeather(r *weather.Report) string {
	return fmt.Sprintf(
		"🌍 Weather in %s, %s:\n"+
			"🌡️ Temperature: %d°C (Feels like %d°C)\n"+
			"☁️ Conditions: %s\n"+
			"💧 Humidity: %d%%\n"+
			"💨 Wind Speed: %d km/h",
		r.Location, r.Country, r.Temp, r.FeelsLike, r.Conditions, r.Humidity, r.WindKMH,
	)
}

func (e *Executor) handleTrivia(ctx context.Context, data *discord.InteractionData) *discord.ResponseData {
	category, _ := data.IntOption("category")

	question, err := e.trivia.FetchQuestion(ctx, category)
	if err != nil {
		e.logger.Error("trivia fetch failed", "category", category, "error", err)
		return &discord.ResponseData{
			Content: "Sorry, I couldn't fetch a trivia question. Please try again!",
		}
	}

	round := trivia.NewRound(question)

	buttons := make([]discord.Component, 0, len(round.Answers))
	for i, answer := range round.Answers {
		buttons = append(buttons, discord.Component{
			Type:     discord.ComponentButton,
			Style:    discord.ButtonPrimary,
			Label:    buttonLabel(answer),
			CustomID: trivia.EncodeAnswer(i, i == round.CorrectIndex, round.Correct()),
		})
	}

	content := fmt.Sprintf("🎯 **%s** (%s)\n\n**Question:** %s\n\n**Choose your answer:**",
		round.Category, round.Difficulty, round.Question)

	return &discord.ResponseData{
		Content: content,
		Components: []discord.Component{{
			Type:       discord.ComponentActionRow,
			Components: buttons,
		}},
	}
}

// buttonLabel truncates answer text to Discord's label limit.
func buttonLabel(answer string) string {
	runes := []rune(answer)
	if len(runes) <= discord.MaxButtonLabelLen {
		return answer
	}
	return strings.TrimSpace(string(runes[:discord.MaxButtonLabelLen-1])) + "…"
}
