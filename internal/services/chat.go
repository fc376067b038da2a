package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChatSessionCreator opens a messaging thread between the user and the
// counselor once a claim commits. The real implementation lives in the
// platform's chat service; it is called once, best-effort, and its failure
// never rolls back an accepted claim.
type ChatSessionCreator interface {
	CreateChatSession(ctx context.Context, requestID, userID, counselorID string) (string, error)
}

// LogChatSessionCreator is the default wiring: it mints a session ref locally
// and logs, standing in for the external chat service.
type LogChatSessionCreator struct {
	logger *zap.Logger
}

func NewLogChatSessionCreator(logger *zap.Logger) ChatSessionCreator {
	return &LogChatSessionCreator{logger: logger}
}

func (c *LogChatSessionCreator) CreateChatSession(ctx context.Context, requestID, userID, counselorID string) (string, error) {
	chatID := uuid.NewString()
	c.logger.Info("chat session created",
		zap.String("chatId", chatID),
		zap.String("requestId", requestID),
		zap.String("userId", userID),
		zap.String("counselorId", counselorID),
	)
	return chatID, nil
}
