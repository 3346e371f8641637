package wire

import (
	"encoding/json"
	"fmt"
)

// Message is the envelope of every relay frame.
type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

const (
	// Server to overlay
	TypeWelcome         = "welcome"
	TypeContentReplaced = "content.replaced"
	TypeContentResized  = "content.resized"
	TypeSettingsChanged = "settings.changed"
	TypeError           = "error"

	// Overlay to server
	TypeOverlayStatus = "overlay.status"
)

// Host lifecycle events posted to a review session.
const (
	EventQuestionShown  = "question.shown"
	EventAnswerShown    = "answer.shown"
	EventContentResized = "content.resized"
)

// WelcomePayload is sent once after an overlay connects.
type WelcomePayload struct {
	ClientID  string `json:"clientId"`
	SessionID string `json:"sessionId"`
}

// ContentPayload accompanies content.replaced and content.resized.
type ContentPayload struct {
	Event string `json:"event"`
}

// ErrorPayload describes a rejected frame.
type ErrorPayload struct {
	Message string `json:"message"`
}

// MessageForEvent maps a host lifecycle event onto the frame overlays
// receive.
func MessageForEvent(event string) (*Message, error) {
	var typ string
	switch event {
	case EventQuestionShown, EventAnswerShown:
		typ = TypeContentReplaced
	case EventContentResized:
		typ = TypeContentResized
	default:
		return nil, fmt.Errorf("unknown event type %q", event)
	}
	return New(typ, ContentPayload{Event: event})
}

// New builds a message with a JSON-encoded payload.
func New(typ string, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	return &Message{Type: typ, Payload: data}, nil
}

// Decode unmarshals the payload of m into v.
func (m *Message) Decode(v any) error {
	if len(m.Payload) == 0 {
		return fmt.Errorf("%s: empty payload", m.Type)
	}
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", m.Type, err)
	}
	return nil
}
