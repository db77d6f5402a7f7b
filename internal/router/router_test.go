package router

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/0genblik/discord-bot/internal/audit"
	"github.com/0genblik/discord-bot/internal/db"
	"github.com/0genblik/discord-bot/internal/discord"
	"github.com/0genblik/discord-bot/internal/dispatch"
	"github.com/0genblik/discord-bot/internal/secrets"
	"github.com/0genblik/discord-bot/internal/trivia"
)

// fixedSecrets implements secrets.Provider with static values.
type fixedSecrets struct {
	s   secrets.Secrets
	err error
}

func (f fixedSecrets) Fetch(_ context.Context) (secrets.Secrets, error) {
	return f.s, f.err
}

// recordingDispatcher captures submitted jobs.
type recordingDispatcher struct {
	jobs []dispatch.Job
	err  error
}

func (d *recordingDispatcher) Submit(job dispatch.Job) error {
	if d.err != nil {
		return d.err
	}
	d.jobs = append(d.jobs, job)
	return nil
}

type fixture struct {
	router     *Router
	dispatcher *recordingDispatcher
	priv       ed25519.PrivateKey
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}

	dispatcher := &recordingDispatcher{}
	provider := fixedSecrets{s: secrets.Secrets{
		BotToken:      "bot",
		ApplicationID: "app",
		PublicKey:     hex.EncodeToString(pub),
		WeatherAPIKey: "weather",
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &fixture{
		router:     New(provider, dispatcher, nil, logger),
		dispatcher: dispatcher,
		priv:       priv,
	}
}

// signedRequest builds a POST with valid signature headers over body.
func (f *fixture) signedRequest(body []byte) *http.Request {
	const timestamp = "1700000000"
	sig := ed25519.Sign(f.priv, append([]byte(timestamp), body...))

	req := httptest.NewRequest(http.MethodPost, "/api/interactions", bytes.NewReader(body))
	req.Header.Set(discord.HeaderTimestamp, timestamp)
	req.Header.Set(discord.HeaderSignature, hex.EncodeToString(sig))
	return req
}

func (f *fixture) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, discord.InteractionResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	f.router.HandleInteraction(rec, req)

	var resp discord.InteractionResponse
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, resp
}

func TestRejectsInvalidSignature(t *testing.T) {
	f := newFixture(t)
	body := []byte(`{"type":1}`)

	req := f.signedRequest(body)
	req.Header.Set(discord.HeaderSignature, strings.Repeat("ab", 64)) // wrong signature

	rec, _ := f.do(t, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if len(f.dispatcher.jobs) != 0 {
		t.Error("rejected request must not reach the dispatcher")
	}
}

func TestRejectsMissingSignatureHeaders(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/api/interactions", strings.NewReader(`{"type":1}`))

	rec, _ := f.do(t, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestPingYieldsPong(t *testing.T) {
	f := newFixture(t)

	rec, resp := f.do(t, f.signedRequest([]byte(`{"type":1}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp.Type != discord.ResponsePong {
		t.Errorf("type = %d, want %d", resp.Type, discord.ResponsePong)
	}
	if len(f.dispatcher.jobs) != 0 {
		t.Error("ping must not invoke the async trigger")
	}
}

func TestCommandIsDeferredAndDispatchedOnce(t *testing.T) {
	f := newFixture(t)
	body := []byte(`{
		"type": 2, "id": "i1", "token": "tok", "application_id": "app",
		"data": {"name": "weather", "options": [{"name": "location", "value": "London"}]}
	}`)

	rec, resp := f.do(t, f.signedRequest(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp.Type != discord.ResponseDeferredChannelMessageWithSource {
		t.Errorf("type = %d, want deferred (%d)", resp.Type, discord.ResponseDeferredChannelMessageWithSource)
	}
	if len(f.dispatcher.jobs) != 1 {
		t.Fatalf("submits = %d, want exactly 1", len(f.dispatcher.jobs))
	}

	job := f.dispatcher.jobs[0]
	if job.Name != "weather" {
		t.Errorf("job name = %q", job.Name)
	}
	// The executor needs the full original payload, followup token included.
	if !bytes.Equal(job.Payload, body) {
		t.Error("job payload must be the original interaction body")
	}
}

func TestCommandDispatchFailure(t *testing.T) {
	f := newFixture(t)
	f.dispatcher.err = dispatch.ErrQueueFull
	body := []byte(`{"type": 2, "token": "tok", "data": {"name": "ping"}}`)

	rec, resp := f.do(t, f.signedRequest(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even on dispatch failure", rec.Code)
	}
	if resp.Type != discord.ResponseChannelMessageWithSource {
		t.Errorf("type = %d, want message response", resp.Type)
	}
	if resp.Data == nil || resp.Data.Content == "" {
		t.Error("expected a user-facing error message")
	}
}

// triviaClickBody builds a component interaction for a rendered round where
// the user clicks the button at clickIndex.
func triviaClickBody(t *testing.T, answers []string, correctIndex, clickIndex int) []byte {
	t.Helper()
	correct := answers[correctIndex]

	buttons := make([]discord.Component, 0, len(answers))
	for i, a := range answers {
		buttons = append(buttons, discord.Component{
			Type:     discord.ComponentButton,
			Style:    discord.ButtonPrimary,
			Label:    a,
			CustomID: trivia.EncodeAnswer(i, i == correctIndex, correct),
		})
	}

	interaction := discord.Interaction{
		Type:  discord.InteractionMessageComponent,
		ID:    "i2",
		Token: "tok",
		Data:  &discord.InteractionData{CustomID: buttons[clickIndex].CustomID},
		Message: &discord.Message{
			ID:      "m1",
			Content: "**Question:** What is H2O?",
			Components: []discord.Component{{
				Type:       discord.ComponentActionRow,
				Components: buttons,
			}},
		},
	}

	body, err := json.Marshal(interaction)
	if err != nil {
		t.Fatal(err)
	}
	return body
}

func TestCorrectAnswerClick(t *testing.T) {
	f := newFixture(t)
	answers := []string{"Gold", "Water", "Air"}
	body := triviaClickBody(t, answers, 1, 1)

	rec, resp := f.do(t, f.signedRequest(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp.Type != discord.ResponseUpdateMessage {
		t.Fatalf("type = %d, want update message (%d)", resp.Type, discord.ResponseUpdateMessage)
	}
	if !strings.Contains(resp.Data.Content, "Correct!") || !strings.Contains(resp.Data.Content, "Water") {
		t.Errorf("content = %q", resp.Data.Content)
	}
	// The original question stays visible above the verdict.
	if !strings.Contains(resp.Data.Content, "What is H2O?") {
		t.Errorf("content lost the question: %q", resp.Data.Content)
	}

	assertButtonsDisabled(t, resp.Data.Components)
	if len(f.dispatcher.jobs) != 0 {
		t.Error("answer judgment must happen inline, not via the dispatcher")
	}
}

func TestWrongAnswerClickRevealsCorrect(t *testing.T) {
	f := newFixture(t)
	answers := []string{"Gold", "Water", "Air"}
	body := triviaClickBody(t, answers, 1, 0)

	rec, resp := f.do(t, f.signedRequest(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp.Type != discord.ResponseUpdateMessage {
		t.Fatalf("type = %d", resp.Type)
	}
	// The chosen answer is named wrong and the embedded correct answer revealed.
	if !strings.Contains(resp.Data.Content, "Gold") {
		t.Errorf("content %q does not name the chosen answer", resp.Data.Content)
	}
	if !strings.Contains(resp.Data.Content, "Water") {
		t.Errorf("content %q does not reveal the correct answer", resp.Data.Content)
	}

	assertButtonsDisabled(t, resp.Data.Components)

	styles := buttonStyles(resp.Data.Components)
	if styles["Water"] != discord.ButtonSuccess {
		t.Errorf("correct button style = %d, want success", styles["Water"])
	}
	if styles["Gold"] != discord.ButtonDanger {
		t.Errorf("clicked wrong button style = %d, want danger", styles["Gold"])
	}
	if styles["Air"] != discord.ButtonSecondary {
		t.Errorf("other button style = %d, want secondary", styles["Air"])
	}
}

func TestForgedCustomIDRejected(t *testing.T) {
	f := newFixture(t)
	interaction := discord.Interaction{
		Type:  discord.InteractionMessageComponent,
		Token: "tok",
		Data:  &discord.InteractionData{CustomID: "trivia:v9:?:zz:!!"},
	}
	body, _ := json.Marshal(interaction)

	rec, resp := f.do(t, f.signedRequest(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp.Type != discord.ResponseChannelMessageWithSource {
		t.Errorf("type = %d, want plain message", resp.Type)
	}
	if resp.Data.Flags&discord.FlagEphemeral == 0 {
		t.Error("error reply should be ephemeral")
	}
}

func TestMalformedPayload(t *testing.T) {
	f := newFixture(t)

	rec, resp := f.do(t, f.signedRequest([]byte(`{not json`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for malformed payload", rec.Code)
	}
	if resp.Type != discord.ResponseChannelMessageWithSource || resp.Data == nil || resp.Data.Content == "" {
		t.Error("expected generic user-facing error message")
	}
}

func TestUnknownInteractionType(t *testing.T) {
	f := newFixture(t)

	rec, resp := f.do(t, f.signedRequest([]byte(`{"type":99}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp.Data == nil || resp.Data.Content == "" {
		t.Error("expected generic user-facing error message")
	}
}

func TestSecretsUnavailable(t *testing.T) {
	f := newFixture(t)
	f.router.secrets = fixedSecrets{err: errors.New("secrets service down")}

	rec, _ := f.do(t, f.signedRequest([]byte(`{"type":1}`)))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestInteractionsAreAudited(t *testing.T) {
	f := newFixture(t)
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()
	store := audit.NewStore(database)
	f.router.audit = store

	f.do(t, f.signedRequest([]byte(`{"type":1}`)))
	f.do(t, f.signedRequest([]byte(`{"type":2,"token":"tok","data":{"name":"ping"}}`)))

	entries, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("audit entries = %d, want 2", len(entries))
	}
	outcomes := map[audit.Outcome]bool{}
	for _, e := range entries {
		outcomes[e.Outcome] = true
	}
	if !outcomes[audit.OutcomePonged] || !outcomes[audit.OutcomeDeferred] {
		t.Errorf("outcomes = %v", outcomes)
	}
}

func assertButtonsDisabled(t *testing.T, components []discord.Component) {
	t.Helper()
	found := false
	var walk func([]discord.Component)
	walk = func(cs []discord.Component) {
		for _, c := range cs {
			if c.Type == discord.ComponentButton {
				found = true
				if !c.Disabled {
					t.Errorf("button %q not disabled", c.Label)
				}
			}
			walk(c.Components)
		}
	}
	walk(components)
	if !found {
		t.Fatal("no buttons in updated message")
	}
}

func buttonStyles(components []discord.Component) map[string]int {
	styles := map[string]int{}
	var walk func([]discord.Component)
	walk = func(cs []discord.Component) {
		for _, c := range cs {
			if c.Type == discord.ComponentButton {
				styles[c.Label] = c.Style
			}
			walk(c.Components)
		}
	}
	walk(components)
	return styles
}
