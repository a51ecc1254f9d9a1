package history

import "ai-chat-be/internal/entity"

// Pairs folds an ordered message list into answered (question, answer)
// tuples. A user message pairs with the first assistant message that follows
// it; unmatched messages on either side are dropped, so a trailing unanswered
// question never reaches the model as a half-turn.
func Pairs(messages []*entity.ChatMessage) []entity.ConversationTurn {
	turns := make([]entity.ConversationTurn, 0, len(messages)/2)

	var pendingQuestion string
	var hasPending bool
	for _, msg := range messages {
		switch msg.Role {
		case entity.ChatMessageRoleUser:
			pendingQuestion = msg.Content
			hasPending = true
		case entity.ChatMessageRoleAssistant:
			if hasPending {
				turns = append(turns, entity.ConversationTurn{
					Question: pendingQuestion,
					Answer:   msg.Content,
				})
				hasPending = false
			}
		}
	}
	return turns
}
