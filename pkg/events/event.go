package events

import "time"

// Event is the contract every published system event satisfies.
type Event interface {
	// EventType returns the unique code for this event (e.g. "CHAT_TURN_COMPLETED").
	EventType() string

	// Payload returns the data carried by the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is a ready-made Event implementation for ad-hoc payloads.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewChatTurnCompleted describes one fully persisted question/answer
// exchange, emitted after the assistant turn is stored.
func NewChatTurnCompleted(sessionId, userId, question string, answerLength, sourceCount int, streamed bool) BaseEvent {
	return BaseEvent{
		Type: "CHAT_TURN_COMPLETED",
		Data: map[string]interface{}{
			"session_id":    sessionId,
			"user_id":       userId,
			"question":      question,
			"answer_length": answerLength,
			"source_count":  sourceCount,
			"streamed":      streamed,
		},
		OccurredAt: time.Now(),
	}
}
