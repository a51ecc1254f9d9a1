package dto

import "ai-chat-be/internal/entity"

// ChatRequest is the question-answering request body. use_vector_db and
// stream default to true when omitted, matching the API this service
// replaces; hence the pointer fields.
type ChatRequest struct {
	UserId         string `json:"user_id"`
	SessionId      string `json:"session_id"`
	Question       string `json:"question"`
	TenantCode     string `json:"tenant_code"`
	OrgCode        string `json:"org_code"`
	UseVectorDb    *bool  `json:"use_vector_db"`
	UseUploadedDoc bool   `json:"use_uploaded_doc"`
	UploadedDocUrl string `json:"uploaded_doc_url"`
	Stream         *bool  `json:"stream"`
	Limit          int    `json:"limit"`
}

// VectorDbEnabled reports use_vector_db with its default applied.
func (r *ChatRequest) VectorDbEnabled() bool {
	return r.UseVectorDb == nil || *r.UseVectorDb
}

// StreamEnabled reports stream with its default applied.
func (r *ChatRequest) StreamEnabled() bool {
	return r.Stream == nil || *r.Stream
}

// EffectiveLimit reports limit with its default applied.
func (r *ChatRequest) EffectiveLimit() int {
	if r.Limit <= 0 {
		return 5
	}
	return r.Limit
}

type SourceSummary struct {
	Count     int                     `json:"count"`
	Documents []entity.SourceDocument `json:"documents"`
}

type ChatAnswerData struct {
	SessionId          string        `json:"session_id"`
	Answer             string        `json:"answer"`
	Sources            SourceSummary `json:"sources"`
	SuggestedQuestions []string      `json:"suggested_questions"`
}

// StreamEvent is one server-push event of a streaming answer. Content is the
// cumulative answer text so far. The terminal event has Done=true and, on
// success, carries Sources and SuggestedQuestions; on failure it carries
// Error instead.
type StreamEvent struct {
	Content            string         `json:"content"`
	Done               bool           `json:"done"`
	Sources            *SourceSummary `json:"sources,omitempty"`
	SuggestedQuestions []string       `json:"suggested_questions,omitempty"`
	Error              string         `json:"error,omitempty"`
}
