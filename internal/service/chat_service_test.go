package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/pkg/chat/assembler"
	"ai-chat-be/pkg/chat/suggest"
	"ai-chat-be/pkg/events"
	"ai-chat-be/pkg/llm"
	"ai-chat-be/pkg/retrieval"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type fakeSessionRepo struct {
	sessions map[uuid.UUID]*entity.ChatSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*entity.ChatSession)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.ChatSession) error {
	r.sessions[session.Id] = session
	return nil
}

func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	for _, spec := range specs {
		if byID, ok := spec.(specification.ByID); ok {
			session := r.sessions[byID.ID]
			if session == nil || session.IsDeleted {
				return nil, nil
			}
			return session, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	out := make([]*entity.ChatSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		if s.IsDeleted {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeSessionRepo) UpdateTitle(ctx context.Context, id uuid.UUID, title string) error {
	session, ok := r.sessions[id]
	if !ok || session.IsDeleted {
		return gorm.ErrRecordNotFound
	}
	session.Title = title
	return nil
}

func (r *fakeSessionRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	session, ok := r.sessions[id]
	if !ok || session.IsDeleted {
		return gorm.ErrRecordNotFound
	}
	session.IsDeleted = true
	return nil
}

func (r *fakeSessionRepo) Restore(ctx context.Context, id uuid.UUID) error {
	session, ok := r.sessions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	session.IsDeleted = false
	return nil
}

type fakeMessageRepo struct {
	messages []*entity.ChatMessage
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.ChatMessage) error {
	r.messages = append(r.messages, message)
	return nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	var sessionId uuid.UUID
	var filtered bool
	limit := 0
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.BySessionID:
			sessionId = s.SessionID
			filtered = true
		case specification.Limit:
			limit = s.N
		}
	}

	out := make([]*entity.ChatMessage, 0, len(r.messages))
	for _, m := range r.messages {
		if filtered && m.SessionId != sessionId {
			continue
		}
		out = append(out, m)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// fakeLLM serves the answer via Chat/ChatStream and follow-up suggestions
// via Generate. messagesAtCall captures how many messages the repo held when
// generation started.
type fakeLLM struct {
	answer         string
	chatErr        error
	streamChunks   []llm.StreamChunk
	suggestionsRaw string

	messageRepo    *fakeMessageRepo
	messagesAtCall int
	lastHistory    []llm.Message
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	f.messagesAtCall = len(f.messageRepo.messages)
	f.lastHistory = history
	return f.answer, f.chatErr
}

func (f *fakeLLM) ChatStream(ctx context.Context, history []llm.Message, opts ...llm.Option) (<-chan llm.StreamChunk, error) {
	f.messagesAtCall = len(f.messageRepo.messages)
	f.lastHistory = history
	out := make(chan llm.StreamChunk)
	go func() {
		defer close(out)
		for _, chunk := range f.streamChunks {
			out <- chunk
		}
	}()
	return out, nil
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.suggestionsRaw, nil
}

type fakePublisher struct {
	published []events.Event
}

func (p *fakePublisher) Publish(ctx context.Context, event events.Event) error {
	p.published = append(p.published, event)
	return nil
}

type emptyGateway struct{}

func (emptyGateway) Search(ctx context.Context, queries []string, params retrieval.SearchParams) ([][]entity.RetrievalEntity, error) {
	return [][]entity.RetrievalEntity{nil}, nil
}

type emptyExtractor struct{}

func (emptyExtractor) ExtractText(ctx context.Context, documentURL string) (string, error) {
	return "", errors.New("no extractor in test")
}

type chatFixture struct {
	service     IChatService
	sessionRepo *fakeSessionRepo
	messageRepo *fakeMessageRepo
	provider    *fakeLLM
	publisher   *fakePublisher
}

func newChatFixture(provider *fakeLLM) *chatFixture {
	sessionRepo := newFakeSessionRepo()
	messageRepo := &fakeMessageRepo{}
	provider.messageRepo = messageRepo
	publisher := &fakePublisher{}

	log := nopLogger{}
	contextAssembler := assembler.NewAssembler(emptyGateway{}, emptyExtractor{}, log, 3000)
	suggester := suggest.NewSuggester(provider, log, 500)

	return &chatFixture{
		service:     NewChatService(sessionRepo, messageRepo, contextAssembler, suggester, provider, publisher, log),
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
		provider:    provider,
		publisher:   publisher,
	}
}

func boolPtr(b bool) *bool { return &b }

func noRetrievalRequest(question string) *dto.ChatRequest {
	return &dto.ChatRequest{
		UserId:      "user-1",
		Question:    question,
		UseVectorDb: boolPtr(false),
	}
}

func TestAnswer_MissingUserIdRejectedBeforeAnySideEffect(t *testing.T) {
	f := newChatFixture(&fakeLLM{})

	_, err := f.service.Answer(context.Background(), &dto.ChatRequest{Question: "q"})

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, ErrKindMissingParameter, svcErr.Kind)
	assert.Empty(t, f.sessionRepo.sessions)
	assert.Empty(t, f.messageRepo.messages)
}

func TestAnswer_MissingQuestionRejected(t *testing.T) {
	f := newChatFixture(&fakeLLM{})

	_, err := f.service.Answer(context.Background(), &dto.ChatRequest{UserId: "user-1"})

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, ErrKindMissingParameter, svcErr.Kind)
}

func TestAnswer_UnknownSessionRejected(t *testing.T) {
	f := newChatFixture(&fakeLLM{})

	req := noRetrievalRequest("q")
	req.SessionId = uuid.NewString()
	_, err := f.service.Answer(context.Background(), req)

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, ErrKindSessionNotFound, svcErr.Kind)
	assert.Empty(t, f.messageRepo.messages)
}

func TestAnswer_CreatesSessionAndPersistsUserTurnBeforeGeneration(t *testing.T) {
	f := newChatFixture(&fakeLLM{chatErr: errors.New("model exploded")})

	_, err := f.service.Answer(context.Background(), noRetrievalRequest("what is the refund policy"))

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, ErrKindGeneration, svcErr.Kind)

	// Session and question survive the generation failure.
	require.Len(t, f.sessionRepo.sessions, 1)
	require.Len(t, f.messageRepo.messages, 1)
	assert.Equal(t, entity.ChatMessageRoleUser, f.messageRepo.messages[0].Role)
	assert.Equal(t, 1, f.provider.messagesAtCall, "user turn must be stored before generation starts")
}

func TestAnswer_SessionTitleTruncatedFromQuestion(t *testing.T) {
	f := newChatFixture(&fakeLLM{answer: "a"})

	longQuestion := "this question is deliberately much longer than fifty characters to force truncation"
	_, err := f.service.Answer(context.Background(), noRetrievalRequest(longQuestion))
	require.NoError(t, err)

	require.Len(t, f.sessionRepo.sessions, 1)
	for _, session := range f.sessionRepo.sessions {
		assert.Equal(t, longQuestion[:50], session.Title)
	}
}

func TestAnswer_HappyPathPersistsAssistantTurnAndPublishes(t *testing.T) {
	f := newChatFixture(&fakeLLM{
		answer:         "the answer",
		suggestionsRaw: "follow up one?\nfollow up two?",
	})

	res, err := f.service.Answer(context.Background(), noRetrievalRequest("question"))
	require.NoError(t, err)

	assert.Equal(t, "the answer", res.Answer)
	assert.Equal(t, []string{"follow up one?", "follow up two?"}, res.SuggestedQuestions)
	assert.Equal(t, 0, res.Sources.Count)

	require.Len(t, f.messageRepo.messages, 2)
	assistant := f.messageRepo.messages[1]
	assert.Equal(t, entity.ChatMessageRoleAssistant, assistant.Role)
	assert.Equal(t, "the answer", assistant.Content)
	assert.Equal(t, []string{"follow up one?", "follow up two?"}, assistant.SuggestedQuestions)

	require.Len(t, f.publisher.published, 1)
	assert.Equal(t, "CHAT_TURN_COMPLETED", f.publisher.published[0].EventType())
}

func TestAnswer_PriorTurnsArePairedIntoModelHistory(t *testing.T) {
	f := newChatFixture(&fakeLLM{answer: "a2"})

	first, err := f.service.Answer(context.Background(), noRetrievalRequest("Q1"))
	require.NoError(t, err)

	req := noRetrievalRequest("Q2")
	req.SessionId = first.SessionId
	_, err = f.service.Answer(context.Background(), req)
	require.NoError(t, err)

	// system, Q1, A1, Q2
	require.Len(t, f.provider.lastHistory, 4)
	assert.Equal(t, "system", f.provider.lastHistory[0].Role)
	assert.Equal(t, "Q1", f.provider.lastHistory[1].Content)
	assert.Equal(t, "Q2", f.provider.lastHistory[3].Content)
}

func TestAnswer_ModelHistoryIsCappedForLongSessions(t *testing.T) {
	f := newChatFixture(&fakeLLM{answer: "a"})

	sessionId := uuid.New()
	f.sessionRepo.sessions[sessionId] = &entity.ChatSession{Id: sessionId, UserId: "user-1"}
	for i := 0; i < 60; i++ {
		f.messageRepo.messages = append(f.messageRepo.messages,
			&entity.ChatMessage{Id: uuid.New(), SessionId: sessionId, Role: entity.ChatMessageRoleUser, Content: fmt.Sprintf("Q%d", i)},
			&entity.ChatMessage{Id: uuid.New(), SessionId: sessionId, Role: entity.ChatMessageRoleAssistant, Content: fmt.Sprintf("A%d", i)},
		)
	}

	req := noRetrievalRequest("latest question")
	req.SessionId = sessionId.String()
	_, err := f.service.Answer(context.Background(), req)
	require.NoError(t, err)

	// system prompt + 100 capped messages (50 paired turns) + current question
	require.Len(t, f.provider.lastHistory, 102)
	assert.Equal(t, "system", f.provider.lastHistory[0].Role)
	assert.Equal(t, "Q0", f.provider.lastHistory[1].Content)
	assert.Equal(t, "A49", f.provider.lastHistory[100].Content)
	assert.Equal(t, "latest question", f.provider.lastHistory[101].Content)
}

func TestAnswerStream_CumulativeEventsThenTerminal(t *testing.T) {
	f := newChatFixture(&fakeLLM{
		streamChunks: []llm.StreamChunk{
			{Content: "H"},
			{Content: "He"},
			{Content: "Hello"},
		},
		suggestionsRaw: "next question?",
	})

	stream, err := f.service.AnswerStream(context.Background(), noRetrievalRequest("greet me"))
	require.NoError(t, err)

	var eventList []dto.StreamEvent
	for evt := range stream {
		eventList = append(eventList, evt)
	}

	require.Len(t, eventList, 4)
	assert.Equal(t, "H", eventList[0].Content)
	assert.Equal(t, "He", eventList[1].Content)
	assert.Equal(t, "Hello", eventList[2].Content)
	for _, evt := range eventList[:3] {
		assert.False(t, evt.Done)
	}

	terminal := eventList[3]
	assert.True(t, terminal.Done)
	assert.Equal(t, "Hello", terminal.Content)
	require.NotNil(t, terminal.Sources)
	assert.Equal(t, []string{"next question?"}, terminal.SuggestedQuestions)

	// Both turns durable after the stream ends.
	require.Len(t, f.messageRepo.messages, 2)
	assert.Equal(t, "Hello", f.messageRepo.messages[1].Content)
	require.Len(t, f.publisher.published, 1)
}

func TestAnswerStream_MidStreamFailureEmitsTerminalErrorWithoutPersisting(t *testing.T) {
	f := newChatFixture(&fakeLLM{
		streamChunks: []llm.StreamChunk{
			{Content: "par"},
			{Err: errors.New("connection reset")},
		},
	})

	stream, err := f.service.AnswerStream(context.Background(), noRetrievalRequest("q"))
	require.NoError(t, err)

	var eventList []dto.StreamEvent
	for evt := range stream {
		eventList = append(eventList, evt)
	}

	require.Len(t, eventList, 2)
	terminal := eventList[1]
	assert.True(t, terminal.Done)
	assert.Contains(t, terminal.Error, "connection reset")

	// Only the user turn is stored for a failed stream.
	require.Len(t, f.messageRepo.messages, 1)
	assert.Equal(t, entity.ChatMessageRoleUser, f.messageRepo.messages[0].Role)
	assert.Empty(t, f.publisher.published)
}

func TestAnswer_NoRetrievalModesAlwaysYieldEmptySources(t *testing.T) {
	f := newChatFixture(&fakeLLM{answer: "a"})

	res, err := f.service.Answer(context.Background(), noRetrievalRequest("any question whatsoever"))
	require.NoError(t, err)

	assert.Equal(t, 0, res.Sources.Count)
	assert.Empty(t, res.Sources.Documents)
}
