// Package router is the inbound side of the interaction protocol: it
// authenticates each webhook call, classifies the payload, and either
// answers in-process (ping, trivia button clicks) or acknowledges with a
// deferred response and hands the command to the async dispatcher.
package router

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/0genblik/discord-bot/internal/audit"
	"github.com/0genblik/discord-bot/internal/discord"
	"github.com/0genblik/discord-bot/internal/dispatch"
	"github.com/0genblik/discord-bot/internal/secrets"
	"github.com/0genblik/discord-bot/internal/trivia"
)

// genericErrorText is returned for malformed payloads and dispatch failures.
// The platform expects HTTP 200 even for user-facing errors; a missing
// acknowledgment is worse than an error message.
const genericErrorText = "Sorry, something went wrong handling that. Please try again!"

// answerErrorText is returned when a button click cannot be judged.
const answerErrorText = "Sorry, there was an error processing your answer."

// Router handles inbound interaction webhooks.
type Router struct {
	secrets    secrets.Provider
	dispatcher dispatch.Dispatcher
	audit      *audit.Store // nil disables audit logging
	logger     *slog.Logger
}

// New creates a Router. The audit store may be nil.
func New(provider secrets.Provider, dispatcher dispatch.Dispatcher, auditStore *audit.Store, logger *slog.Logger) *Router {
	return &Router{
		secrets:    provider,
		dispatcher: dispatcher,
		audit:      auditStore,
		logger:     logger,
	}
}

// HandleInteraction processes one interaction request. Each request is
// terminal after a single response; there are no retries at any stage.
func (rt *Router) HandleInteraction(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	sec, err := rt.secrets.Fetch(r.Context())
	if err != nil {
		rt.logger.Error("fetching secrets", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// Authenticate against the exact bytes received, before any parsing.
	timestamp := r.Header.Get(discord.HeaderTimestamp)
	signature := r.Header.Get(discord.HeaderSignature)
	if !discord.VerifySignature(sec.PublicKey, timestamp, body, signature) {
		rt.logger.Warn("rejected interaction with invalid signature")
		rt.record(r, audit.Entry{Outcome: audit.OutcomeRejectedSignature})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid request signature"})
		return
	}

	var probe discord.TypeProbe
	if err := json.Unmarshal(body, &probe); err != nil {
		rt.logger.Error("malformed interaction payload", "error", err)
		rt.record(r, audit.Entry{Outcome: audit.OutcomeMalformed, Detail: err.Error()})
		writeResponse(w, discord.MessageResponse(genericErrorText))
		return
	}

	switch probe.Type {
	case discord.InteractionPing:
		rt.record(r, audit.Entry{InteractionType: int(probe.Type), Outcome: audit.OutcomePonged})
		writeResponse(w, discord.Pong())

	case discord.InteractionApplicationCommand:
		rt.handleCommand(w, r, body)

	case discord.InteractionMessageComponent:
		rt.handleComponent(w, r, body)

	default:
		rt.logger.Warn("unknown interaction type", "type", int(probe.Type))
		rt.record(r, audit.Entry{InteractionType: int(probe.Type), Outcome: audit.OutcomeMalformed, Detail: "unknown interaction type"})
		writeResponse(w, discord.MessageResponse(genericErrorText))
	}
}

// handleCommand acknowledges a slash command with a deferred response and
// hands the full payload, interaction token included, to the dispatcher. The
// hand-off never blocks: Submit fails fast rather than delaying the
// acknowledgment past the platform's deadline.
func (rt *Router) handleCommand(w http.ResponseWriter, r *http.Request, body []byte) {
	var interaction discord.Interaction
	if err := json.Unmarshal(body, &interaction); err != nil || interaction.Data == nil {
		rt.logger.Error("malformed command payload", "error", err)
		rt.record(r, audit.Entry{
			InteractionType: int(discord.InteractionApplicationCommand),
			Outcome:         audit.OutcomeMalformed,
			Detail:          "command payload missing data",
		})
		writeResponse(w, discord.MessageResponse(genericErrorText))
		return
	}

	job := dispatch.Job{Name: interaction.Data.Name, Payload: body}
	if err := rt.dispatcher.Submit(job); err != nil {
		rt.logger.Error("dispatching command", "command", job.Name, "error", err)
		rt.record(r, audit.Entry{
			InteractionType: int(discord.InteractionApplicationCommand),
			Command:         job.Name,
			Outcome:         audit.OutcomeDispatchFailed,
			Detail:          err.Error(),
		})
		writeResponse(w, discord.MessageResponse(genericErrorText))
		return
	}

	rt.record(r, audit.Entry{
		InteractionType: int(discord.InteractionApplicationCommand),
		Command:         job.Name,
		Outcome:         audit.OutcomeDeferred,
	})
	writeResponse(w, discord.Deferred())
}

// handleComponent judges a trivia button click synchronously. Answer
// judgment is cheap and local, so there is no async hand-off: the original
// message is updated in the immediate response.
func (rt *Router) handleComponent(w http.ResponseWriter, r *http.Request, body []byte) {
	var interaction discord.Interaction
	if err := json.Unmarshal(body, &interaction); err != nil || interaction.Data == nil {
		rt.logger.Error("malformed component payload", "error", err)
		rt.record(r, audit.Entry{
			InteractionType: int(discord.InteractionMessageComponent),
			Outcome:         audit.OutcomeMalformed,
			Detail:          "component payload missing data",
		})
		writeResponse(w, discord.EphemeralMessage(answerErrorText))
		return
	}

	customID := interaction.Data.CustomID
	if !trivia.IsAnswerID(customID) {
		rt.logger.Warn("component click with unrecognized custom_id", "custom_id", customID)
		rt.record(r, audit.Entry{
			InteractionType: int(discord.InteractionMessageComponent),
			Outcome:         audit.OutcomeMalformed,
			Detail:          "unrecognized component",
		})
		writeResponse(w, discord.EphemeralMessage(answerErrorText))
		return
	}

	correct, correctAnswer, err := trivia.DecodeAnswer(customID)
	if err != nil {
		// custom_ids round-trip through the client, so invalid shapes are
		// expected input, not a server fault.
		rt.logger.Warn("undecodable component custom_id", "custom_id", customID, "error", err)
		rt.record(r, audit.Entry{
			InteractionType: int(discord.InteractionMessageComponent),
			Outcome:         audit.OutcomeMalformed,
			Detail:          err.Error(),
		})
		writeResponse(w, discord.EphemeralMessage(answerErrorText))
		return
	}

	content, components := renderResult(interaction, correct, correctAnswer, customID)

	rt.record(r, audit.Entry{
		InteractionType: int(discord.InteractionMessageComponent),
		Command:         "trivia_answer",
		Outcome:         audit.OutcomeAnsweredInline,
		Detail:          fmt.Sprintf("correct=%t", correct),
	})
	writeResponse(w, discord.UpdateMessage(content, components))
}

// renderResult builds the updated question message: the verdict appended to
// the original content, with every button disabled and restyled so the
// correct answer and a wrong choice are both visible.
func renderResult(interaction discord.Interaction, correct bool, correctAnswer, clickedID string) (string, []discord.Component) {
	var originalContent string
	var originalComponents []discord.Component
	if interaction.Message != nil {
		originalContent = interaction.Message.Content
		originalComponents = interaction.Message.Components
	}

	chosen := findLabel(originalComponents, clickedID)

	var verdict string
	if correct {
		verdict = fmt.Sprintf("✅ Correct! The answer was: **%s**", correctAnswer)
	} else if chosen != "" {
		verdict = fmt.Sprintf("❌ **%s** is not right. The correct answer was: **%s**", chosen, correctAnswer)
	} else {
		verdict = fmt.Sprintf("❌ Sorry, that's incorrect. The correct answer was: **%s**", correctAnswer)
	}

	content := verdict
	if originalContent != "" {
		content = originalContent + "\n\n" + verdict
	}

	return content, disableButtons(originalComponents, clickedID)
}

// findLabel returns the label of the button with the given custom_id.
func findLabel(components []discord.Component, customID string) string {
	for _, c := range components {
		if c.Type == discord.ComponentButton && c.CustomID == customID {
			return c.Label
		}
		if label := findLabel(c.Components, customID); label != "" {
			return label
		}
	}
	return ""
}

// disableButtons returns a copy of the component tree with all buttons
// disabled: the correct answer marked success, a wrongly clicked button
// marked danger, everything else secondary.
func disableButtons(components []discord.Component, clickedID string) []discord.Component {
	out := make([]discord.Component, len(components))
	for i, c := range components {
		c.Components = disableButtons(c.Components, clickedID)
		if c.Type == discord.ComponentButton {
			c.Disabled = true
			buttonCorrect, _, err := trivia.DecodeAnswer(c.CustomID)
			switch {
			case err == nil && buttonCorrect:
				c.Style = discord.ButtonSuccess
			case c.CustomID == clickedID:
				c.Style = discord.ButtonDanger
			default:
				c.Style = discord.ButtonSecondary
			}
		}
		out[i] = c
	}
	return out
}

// record writes an audit entry, best effort.
func (rt *Router) record(r *http.Request, entry audit.Entry) {
	if rt.audit == nil {
		return
	}
	if err := rt.audit.Log(r.Context(), entry); err != nil {
		rt.logger.Error("writing audit entry", "error", err)
	}
}

func writeResponse(w http.ResponseWriter, resp discord.InteractionResponse) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
