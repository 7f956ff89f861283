package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// LogPublisher writes messages to the log. It stands in for the broker when none is configured.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher builds a LogPublisher.
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger}
}

// PublishJSON logs the marshalled payload.
func (p *LogPublisher) PublishJSON(_ context.Context, routingKey, messageID string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	p.logger.Info("message not sent, broker disabled",
		zap.String("routing_key", routingKey),
		zap.String("message_id", messageID),
		zap.ByteString("body", body))
	return nil
}

// Close is a no-op.
func (p *LogPublisher) Close() error { return nil }
