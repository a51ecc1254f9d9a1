package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ChatMessage struct {
	Id                 uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId          uuid.UUID      `gorm:"type:uuid;not null;index"`
	UserId             string         `gorm:"type:varchar(200);not null;index"`
	Role               string         `gorm:"type:varchar(20);not null"` // "user" | "assistant"
	Content            string         `gorm:"type:text;not null"`
	Sources            datatypes.JSON `gorm:"type:jsonb"` // [{name, url}], assistant messages only
	SuggestedQuestions datatypes.JSON `gorm:"type:jsonb"` // [string], assistant messages only
	CreatedAt          time.Time      `gorm:"autoCreateTime;index"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
