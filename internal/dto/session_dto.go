package dto

import (
	"time"

	"ai-chat-be/internal/entity"
)

type CreateSessionRequest struct {
	UserId     string `json:"user_id" validate:"required"`
	SessionId  string `json:"session_id"`
	Title      string `json:"title"`
	TenantCode string `json:"tenant_code"`
	OrgCode    string `json:"org_code"`
}

type CreateSessionResponse struct {
	SessionId string `json:"session_id"`
}

type UpdateTitleRequest struct {
	Title string `json:"title" validate:"required"`
}

type SessionResponse struct {
	SessionId  string     `json:"session_id"`
	UserId     string     `json:"user_id"`
	Title      string     `json:"title"`
	TenantCode string     `json:"tenant_code,omitempty"`
	OrgCode    string     `json:"org_code,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

type MessageResponse struct {
	Id                 string                  `json:"id"`
	SessionId          string                  `json:"session_id"`
	UserId             string                  `json:"user_id"`
	Role               string                  `json:"role"`
	Content            string                  `json:"content"`
	Sources            []entity.SourceDocument `json:"sources,omitempty"`
	SuggestedQuestions []string                `json:"suggested_questions,omitempty"`
	CreatedAt          time.Time               `json:"created_at"`
}

type UploadResponse struct {
	FileUrl  string `json:"file_url"`
	FileName string `json:"file_name"`
}
