package implementation

import (
	"context"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/mapper"
	"ai-chat-be/internal/model"
	"ai-chat-be/internal/repository/contract"
	"ai-chat-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ChatMessageRepository struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatMessageRepository(db *gorm.DB, mapper *mapper.ChatMapper) contract.ChatMessageRepository {
	return &ChatMessageRepository{db: db, mapper: mapper}
}

func (r *ChatMessageRepository) Create(ctx context.Context, message *entity.ChatMessage) error {
	mod := r.mapper.ChatMessageToModel(message)
	if err := r.db.WithContext(ctx).Create(mod).Error; err != nil {
		return err
	}
	message.CreatedAt = mod.CreatedAt
	return nil
}

func (r *ChatMessageRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	query := r.db.WithContext(ctx).Model(&model.ChatMessage{})
	for _, spec := range specs {
		query = spec.Apply(query)
	}

	var mods []model.ChatMessage
	if err := query.Find(&mods).Error; err != nil {
		return nil, err
	}

	messages := make([]*entity.ChatMessage, 0, len(mods))
	for i := range mods {
		messages = append(messages, r.mapper.ChatMessageToEntity(&mods[i]))
	}
	return messages, nil
}
