package audit

import "time"

// Outcome describes how an interaction was handled.
type Outcome string

const (
	OutcomePonged            Outcome = "ponged"
	OutcomeDeferred          Outcome = "deferred"
	OutcomeAnsweredInline    Outcome = "answered_inline"
	OutcomeRejectedSignature Outcome = "rejected_signature"
	OutcomeMalformed         Outcome = "malformed"
	OutcomeDispatchFailed    Outcome = "dispatch_failed"
)

// Entry is a single handled-interaction record.
type Entry struct {
	ID              string    `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	InteractionType int       `json:"interaction_type"`
	Command         string    `json:"command,omitempty"`
	Outcome         Outcome   `json:"outcome"`
	Detail          string    `json:"detail,omitempty"`
}
