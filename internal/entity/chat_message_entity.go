package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
)

// SourceDocument is one user-visible attribution: where a piece of retrieved
// context originated.
type SourceDocument struct {
	Name string `json:"name"`
	Url  string `json:"url"`
}

type ChatMessage struct {
	Id                 uuid.UUID
	SessionId          uuid.UUID
	UserId             string
	Role               string
	Content            string
	Sources            []SourceDocument
	SuggestedQuestions []string
	CreatedAt          time.Time
}

// ConversationTurn is one answered exchange: a user question paired with the
// assistant reply that followed it.
type ConversationTurn struct {
	Question string
	Answer   string
}
