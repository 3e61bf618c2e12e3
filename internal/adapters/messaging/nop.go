package messaging

import (
	"context"

	"github.com/avbykov/printbridge/internal/interfaces"
)

// NopMessaging заглушка MessagingPort для конфигураций без Kafka
type NopMessaging struct{}

func NewNopMessaging() interfaces.MessagingPort {
	return NopMessaging{}
}

func (NopMessaging) Publish(ctx context.Context, topic string, message []byte) error {
	return nil
}

func (NopMessaging) PublishWithKey(ctx context.Context, topic string, key string, message []byte) error {
	return nil
}

func (NopMessaging) Close() error {
	return nil
}
