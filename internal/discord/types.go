package discord

import "encoding/json"

// InteractionType identifies the kind of inbound interaction.
//
// https://discord.com/developers/docs/interactions/receiving-and-responding#interaction-object-interaction-type
type InteractionType int

const (
	InteractionPing               InteractionType = 1
	InteractionApplicationCommand InteractionType = 2
	InteractionMessageComponent   InteractionType = 3
)

// ResponseType identifies the kind of immediate interaction response.
type ResponseType int

const (
	ResponsePong                             ResponseType = 1
	ResponseChannelMessageWithSource         ResponseType = 4
	ResponseDeferredChannelMessageWithSource ResponseType = 5
	ResponseUpdateMessage                    ResponseType = 7
)

// Component type codes.
const (
	ComponentActionRow = 1
	ComponentButton    = 2
)

// Button style codes.
const (
	ButtonPrimary   = 1
	ButtonSecondary = 2
	ButtonSuccess   = 3
	ButtonDanger    = 4
)

// FlagEphemeral marks a response as visible only to the invoking user.
const FlagEphemeral = 1 << 6

// MaxButtonLabelLen is Discord's limit on button label length.
const MaxButtonLabelLen = 80

// MaxCustomIDLen is Discord's limit on component custom_id length.
const MaxCustomIDLen = 100

// TypeProbe decodes only the type tag of an interaction payload, so the
// variant can be classified before committing to a full parse.
type TypeProbe struct {
	Type InteractionType `json:"type"`
}

// Interaction is an inbound interaction event.
type Interaction struct {
	ID            string           `json:"id"`
	ApplicationID string           `json:"application_id"`
	Type          InteractionType  `json:"type"`
	Data          *InteractionData `json:"data,omitempty"`
	Token         string           `json:"token"`
	Message       *Message         `json:"message,omitempty"`
}

// InteractionData carries the variant-specific fields. Commands populate
// Name/Options; component clicks populate CustomID/ComponentType.
type InteractionData struct {
	Name          string          `json:"name,omitempty"`
	Options       []CommandOption `json:"options,omitempty"`
	CustomID      string          `json:"custom_id,omitempty"`
	ComponentType int             `json:"component_type,omitempty"`
}

// CommandOption is a single named argument of a slash command.
type CommandOption struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value,omitempty"`
}

// StringOption returns the string value of the named option.
func (d *InteractionData) StringOption(name string) (string, bool) {
	for _, opt := range d.Options {
		if opt.Name != name {
			continue
		}
		var v string
		if err := json.Unmarshal(opt.Value, &v); err != nil {
			return "", false
		}
		return v, true
	}
	return "", false
}

// IntOption returns the integer value of the named option.
func (d *InteractionData) IntOption(name string) (int, bool) {
	for _, opt := range d.Options {
		if opt.Name != name {
			continue
		}
		var v int
		if err := json.Unmarshal(opt.Value, &v); err != nil {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

// Message is the message an interaction originated from (component clicks).
type Message struct {
	ID         string      `json:"id"`
	Content    string      `json:"content"`
	Components []Component `json:"components,omitempty"`
}

// Component is a message component: an action row or a button.
type Component struct {
	Type       int         `json:"type"`
	Style      int         `json:"style,omitempty"`
	Label      string      `json:"label,omitempty"`
	CustomID   string      `json:"custom_id,omitempty"`
	Disabled   bool        `json:"disabled,omitempty"`
	Components []Component `json:"components,omitempty"`
}

// InteractionResponse is the immediate reply to an interaction.
type InteractionResponse struct {
	Type ResponseType  `json:"type"`
	Data *ResponseData `json:"data,omitempty"`
}

// ResponseData is the message body of an interaction response or followup.
type ResponseData struct {
	Content    string      `json:"content,omitempty"`
	Components []Component `json:"components,omitempty"`
	Flags      int         `json:"flags,omitempty"`
}

// Pong answers the platform's liveness check.
func Pong() InteractionResponse {
	return InteractionResponse{Type: ResponsePong}
}

// Deferred acknowledges a command while the real answer is produced
// asynchronously ("bot is thinking").
func Deferred() InteractionResponse {
	return InteractionResponse{Type: ResponseDeferredChannelMessageWithSource}
}

// MessageResponse replies with plain message content.
func MessageResponse(content string) InteractionResponse {
	return InteractionResponse{
		Type: ResponseChannelMessageWithSource,
		Data: &ResponseData{Content: content},
	}
}

// EphemeralMessage replies with content only the invoking user can see.
func EphemeralMessage(content string) InteractionResponse {
	return InteractionResponse{
		Type: ResponseChannelMessageWithSource,
		Data: &ResponseData{Content: content, Flags: FlagEphemeral},
	}
}

// UpdateMessage edits the message the interaction originated from.
func UpdateMessage(content string, components []Component) InteractionResponse {
	return InteractionResponse{
		Type: ResponseUpdateMessage,
		Data: &ResponseData{Content: content, Components: components},
	}
}
