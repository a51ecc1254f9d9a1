package service

import (
	"context"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/repository/contract"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/pkg/chat/assembler"
	"ai-chat-be/pkg/chat/history"
	"ai-chat-be/pkg/chat/suggest"
	"ai-chat-be/pkg/events"
	"ai-chat-be/pkg/llm"

	"github.com/google/uuid"
)

const (
	sessionTitleMaxRunes = 50

	// historyMessageCap bounds how many stored messages feed the model
	// conversation so long sessions do not blow past the context window.
	historyMessageCap = 100

	systemInstruction = "You are a helpful assistant. When knowledge base content is provided, " +
		"answer from it whenever it is relevant; otherwise rely on your general knowledge. " +
		"Be accurate and concise, and structure longer answers."
)

type IChatService interface {
	// Answer runs the full question-answering pipeline and blocks until the
	// complete answer is available.
	Answer(ctx context.Context, req *dto.ChatRequest) (*dto.ChatAnswerData, error)

	// AnswerStream runs the same pipeline but returns a channel of events:
	// zero or more partial events with cumulative answer text, then exactly
	// one terminal event. Validation and session failures are returned as an
	// error before any event is produced; later failures arrive in-band.
	AnswerStream(ctx context.Context, req *dto.ChatRequest) (<-chan dto.StreamEvent, error)
}

type chatService struct {
	sessionRepo contract.ChatSessionRepository
	messageRepo contract.ChatMessageRepository
	assembler   *assembler.Assembler
	suggester   *suggest.Suggester
	llmProvider llm.LLMProvider
	publisher   IPublisherService
	log         logger.ILogger
}

func NewChatService(
	sessionRepo contract.ChatSessionRepository,
	messageRepo contract.ChatMessageRepository,
	contextAssembler *assembler.Assembler,
	suggester *suggest.Suggester,
	llmProvider llm.LLMProvider,
	publisher IPublisherService,
	log logger.ILogger,
) IChatService {
	return &chatService{
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
		assembler:   contextAssembler,
		suggester:   suggester,
		llmProvider: llmProvider,
		publisher:   publisher,
		log:         log,
	}
}

// preparedTurn is the state shared by both generation modes once the
// pre-generation steps (validate, resolve session, record the user turn,
// load history, assemble context) have completed.
type preparedTurn struct {
	sessionId uuid.UUID
	messages  []llm.Message
	bundle    *assembler.Bundle
}

func (s *chatService) prepare(ctx context.Context, req *dto.ChatRequest) (*preparedTurn, error) {
	if req.UserId == "" {
		return nil, NewMissingParameter("user_id")
	}
	if req.Question == "" {
		return nil, NewMissingParameter("question")
	}

	sessionId, err := s.resolveSession(ctx, req)
	if err != nil {
		return nil, err
	}

	// The user turn is recorded before generation so a crash mid-generation
	// still leaves the question durable.
	userTurn := &entity.ChatMessage{
		Id:        uuid.New(),
		SessionId: sessionId,
		UserId:    req.UserId,
		Role:      entity.ChatMessageRoleUser,
		Content:   req.Question,
	}
	if err := s.messageRepo.Create(ctx, userTurn); err != nil {
		return nil, err
	}

	turns, err := s.loadHistory(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	bundle := s.assembler.Assemble(ctx, assembler.Params{
		Question:       req.Question,
		TenantCode:     req.TenantCode,
		OrgCode:        req.OrgCode,
		UseUploadedDoc: req.UseUploadedDoc,
		UploadedDocURL: req.UploadedDocUrl,
		UseVectorDb:    req.VectorDbEnabled(),
		Limit:          req.EffectiveLimit(),
	})

	return &preparedTurn{
		sessionId: sessionId,
		messages:  buildMessages(req.Question, turns, bundle),
		bundle:    bundle,
	}, nil
}

func (s *chatService) resolveSession(ctx context.Context, req *dto.ChatRequest) (uuid.UUID, error) {
	if req.SessionId == "" {
		session := &entity.ChatSession{
			Id:         uuid.New(),
			UserId:     req.UserId,
			Title:      truncateRunes(req.Question, sessionTitleMaxRunes),
			TenantCode: req.TenantCode,
			OrgCode:    req.OrgCode,
		}
		if err := s.sessionRepo.Create(ctx, session); err != nil {
			s.log.Error("CHAT", "Failed to create session for new conversation", map[string]interface{}{
				"user_id": req.UserId,
				"error":   err.Error(),
			})
			return uuid.Nil, NewSessionCreateError(err)
		}
		return session.Id, nil
	}

	sessionId, err := uuid.Parse(req.SessionId)
	if err != nil {
		return uuid.Nil, NewSessionNotFound(req.SessionId)
	}
	session, err := s.sessionRepo.FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return uuid.Nil, err
	}
	if session == nil {
		return uuid.Nil, NewSessionNotFound(req.SessionId)
	}
	return sessionId, nil
}

func (s *chatService) loadHistory(ctx context.Context, sessionId uuid.UUID) ([]entity.ConversationTurn, error) {
	messages, err := s.messageRepo.FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "created_at"},
		specification.Limit{N: historyMessageCap},
	)
	if err != nil {
		return nil, err
	}
	return history.Pairs(messages), nil
}

// buildMessages lays out the model conversation: system prompt with any
// context fragments, prior answered turns, then the current question. The
// question just recorded is still unanswered so the pairing step drops it
// from the history block.
func buildMessages(question string, turns []entity.ConversationTurn, bundle *assembler.Bundle) []llm.Message {
	systemPrompt := systemInstruction
	for _, fragment := range bundle.Fragments {
		systemPrompt += "\n\n" + fragment
	}

	messages := make([]llm.Message, 0, len(turns)*2+2)
	messages = append(messages, llm.Message{Role: "system", Content: systemPrompt})
	for _, turn := range turns {
		messages = append(messages, llm.Message{Role: "user", Content: turn.Question})
		messages = append(messages, llm.Message{Role: "assistant", Content: turn.Answer})
	}
	messages = append(messages, llm.Message{Role: "user", Content: question})
	return messages
}

func (s *chatService) Answer(ctx context.Context, req *dto.ChatRequest) (*dto.ChatAnswerData, error) {
	prep, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	answer, err := s.llmProvider.Chat(ctx, prep.messages)
	if err != nil {
		return nil, NewGenerationFailure(err)
	}

	suggestions := s.suggester.Suggest(ctx, req.Question, answer)
	s.persistAssistantTurn(ctx, prep, req, answer, suggestions, false)

	return &dto.ChatAnswerData{
		SessionId:          prep.sessionId.String(),
		Answer:             answer,
		Sources:            toSourceSummary(prep.bundle),
		SuggestedQuestions: suggestions,
	}, nil
}

func (s *chatService) AnswerStream(ctx context.Context, req *dto.ChatRequest) (<-chan dto.StreamEvent, error) {
	prep, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	// Generation and persistence outlive the HTTP connection: a client that
	// disconnects mid-stream still gets its turn stored.
	genCtx := context.WithoutCancel(ctx)

	stream, err := s.llmProvider.ChatStream(genCtx, prep.messages)
	if err != nil {
		return nil, NewGenerationFailure(err)
	}

	out := make(chan dto.StreamEvent)
	go s.pumpStream(genCtx, req, prep, stream, out)
	return out, nil
}

func (s *chatService) pumpStream(
	ctx context.Context,
	req *dto.ChatRequest,
	prep *preparedTurn,
	stream <-chan llm.StreamChunk,
	out chan<- dto.StreamEvent,
) {
	defer close(out)

	var answer string
	for chunk := range stream {
		if chunk.Err != nil {
			s.log.Error("CHAT", "Generation stream failed", map[string]interface{}{
				"session_id": prep.sessionId.String(),
				"error":      chunk.Err.Error(),
			})
			out <- dto.StreamEvent{Done: true, Error: NewGenerationFailure(chunk.Err).Msg}
			return
		}
		answer = chunk.Content
		out <- dto.StreamEvent{Content: chunk.Content}
	}

	suggestions := s.suggester.Suggest(ctx, req.Question, answer)
	s.persistAssistantTurn(ctx, prep, req, answer, suggestions, true)

	summary := toSourceSummary(prep.bundle)
	out <- dto.StreamEvent{
		Content:            answer,
		Done:               true,
		Sources:            &summary,
		SuggestedQuestions: suggestions,
	}
}

// persistAssistantTurn stores the assistant message and emits the completed
// turn on the event bus. Storage failure at this point is logged rather than
// surfaced: the answer has already been generated and belongs to the caller.
func (s *chatService) persistAssistantTurn(
	ctx context.Context,
	prep *preparedTurn,
	req *dto.ChatRequest,
	answer string,
	suggestions []string,
	streamed bool,
) {
	assistantTurn := &entity.ChatMessage{
		Id:                 uuid.New(),
		SessionId:          prep.sessionId,
		UserId:             req.UserId,
		Role:               entity.ChatMessageRoleAssistant,
		Content:            answer,
		Sources:            prep.bundle.Sources,
		SuggestedQuestions: suggestions,
	}
	if err := s.messageRepo.Create(ctx, assistantTurn); err != nil {
		s.log.Error("CHAT", "Failed to persist assistant turn", map[string]interface{}{
			"session_id": prep.sessionId.String(),
			"error":      err.Error(),
		})
		return
	}

	evt := events.NewChatTurnCompleted(
		prep.sessionId.String(),
		req.UserId,
		req.Question,
		len(answer),
		len(prep.bundle.Sources),
		streamed,
	)
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.log.Warn("CHAT", "Failed to publish turn-completed event", map[string]interface{}{
			"session_id": prep.sessionId.String(),
			"error":      err.Error(),
		})
	}
}

func toSourceSummary(bundle *assembler.Bundle) dto.SourceSummary {
	return dto.SourceSummary{
		Count:     len(bundle.Sources),
		Documents: bundle.Sources,
	}
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
