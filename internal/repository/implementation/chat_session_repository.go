package implementation

import (
	"context"
	"errors"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/mapper"
	"ai-chat-be/internal/model"
	"ai-chat-be/internal/repository/contract"
	"ai-chat-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatSessionRepository struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatSessionRepository(db *gorm.DB, mapper *mapper.ChatMapper) contract.ChatSessionRepository {
	return &ChatSessionRepository{db: db, mapper: mapper}
}

func (r *ChatSessionRepository) Create(ctx context.Context, session *entity.ChatSession) error {
	mod := r.mapper.ChatSessionToModel(session)
	if err := r.db.WithContext(ctx).Create(mod).Error; err != nil {
		return err
	}
	session.CreatedAt = mod.CreatedAt
	return nil
}

func (r *ChatSessionRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	query := r.db.WithContext(ctx).Model(&model.ChatSession{})
	for _, spec := range specs {
		query = spec.Apply(query)
	}

	var mod model.ChatSession
	err := query.First(&mod).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.mapper.ChatSessionToEntity(&mod), nil
}

func (r *ChatSessionRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	query := r.db.WithContext(ctx).Model(&model.ChatSession{})
	for _, spec := range specs {
		query = spec.Apply(query)
	}

	var mods []model.ChatSession
	if err := query.Find(&mods).Error; err != nil {
		return nil, err
	}

	sessions := make([]*entity.ChatSession, 0, len(mods))
	for i := range mods {
		sessions = append(sessions, r.mapper.ChatSessionToEntity(&mods[i]))
	}
	return sessions, nil
}

func (r *ChatSessionRepository) UpdateTitle(ctx context.Context, id uuid.UUID, title string) error {
	result := r.db.WithContext(ctx).
		Model(&model.ChatSession{}).
		Where("id = ?", id).
		Update("title", title)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ChatSessionRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.ChatSession{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ChatSessionRepository) Restore(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Unscoped().
		Model(&model.ChatSession{}).
		Where("id = ?", id).
		Update("deleted_at", nil)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
