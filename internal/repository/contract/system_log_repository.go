package contract

import (
	"context"

	"ai-chat-be/internal/model"
)

type SystemLogRepository interface {
	Create(ctx context.Context, log *model.SystemLog) error
}
