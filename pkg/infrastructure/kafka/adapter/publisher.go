package adapter

import (
	"fmt"

	"github.com/Shopify/sarama"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"

	"github.com/mateusmacedo/go-fleet/pkg/application"
	watermillAdapter "github.com/mateusmacedo/go-fleet/pkg/infrastructure/watermill/adapter"
)

// SaramaConfig is the producer configuration used for occupancy events:
// synchronous, acknowledged by all in-sync replicas.
func SaramaConfig(clientID string) *sarama.Config {
	cfg := kafka.DefaultSaramaSyncPublisherConfig()
	cfg.ClientID = clientID
	cfg.Version = sarama.V1_0_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	return cfg
}

// NewPublisher returns a kafka publisher for brokers.
func NewPublisher(brokers []string, clientID string, logger application.AppLogger) (*kafka.Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher: no brokers configured")
	}

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:               brokers,
		Marshaler:             kafka.DefaultMarshaler{},
		OverwriteSaramaConfig: SaramaConfig(clientID),
	}, watermillAdapter.NewWatermillLoggerAdapter(logger))
	if err != nil {
		return nil, fmt.Errorf("kafka publisher: %w", err)
	}
	return publisher, nil
}
