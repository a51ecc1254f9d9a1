package service

import (
	"context"
	"errors"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/repository/contract"
	"ai-chat-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ISessionService interface {
	Create(ctx context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	GetAll(ctx context.Context, userId, tenantCode, orgCode string, limit int) ([]*dto.SessionResponse, error)
	Show(ctx context.Context, sessionId uuid.UUID) (*dto.SessionResponse, error)
	GetMessages(ctx context.Context, sessionId uuid.UUID, limit int) ([]*dto.MessageResponse, error)
	UpdateTitle(ctx context.Context, sessionId uuid.UUID, title string) error
	Delete(ctx context.Context, sessionId uuid.UUID) error
	Restore(ctx context.Context, sessionId uuid.UUID) error
}

type sessionService struct {
	sessionRepo contract.ChatSessionRepository
	messageRepo contract.ChatMessageRepository
	log         logger.ILogger
}

func NewSessionService(
	sessionRepo contract.ChatSessionRepository,
	messageRepo contract.ChatMessageRepository,
	log logger.ILogger,
) ISessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
		log:         log,
	}
}

func (s *sessionService) Create(ctx context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	id := uuid.New()
	if req.SessionId != "" {
		parsed, err := uuid.Parse(req.SessionId)
		if err != nil {
			return nil, NewMissingParameter("session_id (must be a valid UUID)")
		}
		id = parsed
	}

	session := &entity.ChatSession{
		Id:         id,
		UserId:     req.UserId,
		Title:      req.Title,
		TenantCode: req.TenantCode,
		OrgCode:    req.OrgCode,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		s.log.Error("SESSION", "Failed to create session", map[string]interface{}{
			"user_id": req.UserId,
			"error":   err.Error(),
		})
		return nil, NewSessionCreateError(err)
	}

	return &dto.CreateSessionResponse{SessionId: id.String()}, nil
}

func (s *sessionService) GetAll(ctx context.Context, userId, tenantCode, orgCode string, limit int) ([]*dto.SessionResponse, error) {
	if userId == "" {
		return nil, NewMissingParameter("user_id")
	}
	if limit <= 0 {
		limit = 50
	}

	sessions, err := s.sessionRepo.FindAll(ctx,
		specification.OwnedByUser{UserID: userId},
		specification.ScopedToTenant{TenantCode: tenantCode},
		specification.ScopedToOrg{OrgCode: orgCode},
		specification.OrderBy{Field: "updated_at", Desc: true},
		specification.Limit{N: limit},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		responses = append(responses, toSessionResponse(session))
	}
	return responses, nil
}

func (s *sessionService) Show(ctx context.Context, sessionId uuid.UUID) (*dto.SessionResponse, error) {
	session, err := s.sessionRepo.FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, NewSessionNotFound(sessionId.String())
	}
	return toSessionResponse(session), nil
}

// GetMessages returns a session's turns oldest-first.
func (s *sessionService) GetMessages(ctx context.Context, sessionId uuid.UUID, limit int) ([]*dto.MessageResponse, error) {
	session, err := s.sessionRepo.FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, NewSessionNotFound(sessionId.String())
	}

	if limit <= 0 {
		limit = 100
	}
	messages, err := s.messageRepo.FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "created_at"},
		specification.Limit{N: limit},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.MessageResponse, 0, len(messages))
	for _, msg := range messages {
		responses = append(responses, &dto.MessageResponse{
			Id:                 msg.Id.String(),
			SessionId:          msg.SessionId.String(),
			UserId:             msg.UserId,
			Role:               msg.Role,
			Content:            msg.Content,
			Sources:            msg.Sources,
			SuggestedQuestions: msg.SuggestedQuestions,
			CreatedAt:          msg.CreatedAt,
		})
	}
	return responses, nil
}

func (s *sessionService) UpdateTitle(ctx context.Context, sessionId uuid.UUID, title string) error {
	err := s.sessionRepo.UpdateTitle(ctx, sessionId, title)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewSessionNotFound(sessionId.String())
	}
	return err
}

func (s *sessionService) Delete(ctx context.Context, sessionId uuid.UUID) error {
	err := s.sessionRepo.SoftDelete(ctx, sessionId)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewSessionNotFound(sessionId.String())
	}
	return err
}

func (s *sessionService) Restore(ctx context.Context, sessionId uuid.UUID) error {
	err := s.sessionRepo.Restore(ctx, sessionId)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewSessionNotFound(sessionId.String())
	}
	return err
}

func toSessionResponse(session *entity.ChatSession) *dto.SessionResponse {
	return &dto.SessionResponse{
		SessionId:  session.Id.String(),
		UserId:     session.UserId,
		Title:      session.Title,
		TenantCode: session.TenantCode,
		OrgCode:    session.OrgCode,
		CreatedAt:  session.CreatedAt,
		UpdatedAt:  session.UpdatedAt,
	}
}
