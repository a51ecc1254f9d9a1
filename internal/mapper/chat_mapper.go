package mapper

import (
	"encoding/json"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/model"

	"gorm.io/datatypes"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) ChatSessionToModel(e *entity.ChatSession) *model.ChatSession {
	mod := &model.ChatSession{
		Id:        e.Id,
		UserId:    e.UserId,
		CreatedAt: e.CreatedAt,
	}
	if e.Title != "" {
		mod.Title = &e.Title
	}
	if e.TenantCode != "" {
		mod.TenantCode = &e.TenantCode
	}
	if e.OrgCode != "" {
		mod.OrgCode = &e.OrgCode
	}
	if e.UpdatedAt != nil {
		mod.UpdatedAt = *e.UpdatedAt
	}
	return mod
}

func (m *ChatMapper) ChatSessionToEntity(mod *model.ChatSession) *entity.ChatSession {
	e := &entity.ChatSession{
		Id:        mod.Id,
		UserId:    mod.UserId,
		CreatedAt: mod.CreatedAt,
		IsDeleted: mod.DeletedAt.Valid,
	}
	if mod.Title != nil {
		e.Title = *mod.Title
	}
	if mod.TenantCode != nil {
		e.TenantCode = *mod.TenantCode
	}
	if mod.OrgCode != nil {
		e.OrgCode = *mod.OrgCode
	}
	if !mod.UpdatedAt.IsZero() {
		updatedAt := mod.UpdatedAt
		e.UpdatedAt = &updatedAt
	}
	if mod.DeletedAt.Valid {
		deletedAt := mod.DeletedAt.Time
		e.DeletedAt = &deletedAt
	}
	return e
}

func (m *ChatMapper) ChatMessageToModel(e *entity.ChatMessage) *model.ChatMessage {
	mod := &model.ChatMessage{
		Id:        e.Id,
		SessionId: e.SessionId,
		UserId:    e.UserId,
		Role:      e.Role,
		Content:   e.Content,
		CreatedAt: e.CreatedAt,
	}
	if len(e.Sources) > 0 {
		if raw, err := json.Marshal(e.Sources); err == nil {
			mod.Sources = datatypes.JSON(raw)
		}
	}
	if len(e.SuggestedQuestions) > 0 {
		if raw, err := json.Marshal(e.SuggestedQuestions); err == nil {
			mod.SuggestedQuestions = datatypes.JSON(raw)
		}
	}
	return mod
}

func (m *ChatMapper) ChatMessageToEntity(mod *model.ChatMessage) *entity.ChatMessage {
	e := &entity.ChatMessage{
		Id:        mod.Id,
		SessionId: mod.SessionId,
		UserId:    mod.UserId,
		Role:      mod.Role,
		Content:   mod.Content,
		CreatedAt: mod.CreatedAt,
	}
	if len(mod.Sources) > 0 {
		// Malformed stored JSON degrades to an empty list rather than failing the read
		_ = json.Unmarshal(mod.Sources, &e.Sources)
	}
	if len(mod.SuggestedQuestions) > 0 {
		_ = json.Unmarshal(mod.SuggestedQuestions, &e.SuggestedQuestions)
	}
	return e
}
