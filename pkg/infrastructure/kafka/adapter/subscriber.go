package adapter

import (
	"fmt"

	"github.com/Shopify/sarama"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"

	"github.com/mateusmacedo/go-fleet/pkg/application"
	watermillAdapter "github.com/mateusmacedo/go-fleet/pkg/infrastructure/watermill/adapter"
)

// NewSubscriber returns a kafka subscriber in consumerGroup that starts from
// the oldest offset when the group has none committed.
func NewSubscriber(brokers []string, consumerGroup string, logger application.AppLogger) (*kafka.Subscriber, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka subscriber: no brokers configured")
	}

	saramaConfig := kafka.DefaultSaramaSubscriberConfig()
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest

	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:               brokers,
		Unmarshaler:           kafka.DefaultMarshaler{},
		OverwriteSaramaConfig: saramaConfig,
		ConsumerGroup:         consumerGroup,
	}, watermillAdapter.NewWatermillLoggerAdapter(logger))
	if err != nil {
		return nil, fmt.Errorf("kafka subscriber: %w", err)
	}
	return subscriber, nil
}
