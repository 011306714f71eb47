package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"

	"github.com/mateusmacedo/go-fleet/pkg/application"
	watermillAdapter "github.com/mateusmacedo/go-fleet/pkg/infrastructure/watermill/adapter"
)

// NewPublisher pings the server and returns a redis stream publisher.
func NewPublisher(ctx context.Context, client redis.UniversalClient, logger application.AppLogger) (*redisstream.Publisher, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: client,
	}, watermillAdapter.NewWatermillLoggerAdapter(logger))
	if err != nil {
		return nil, fmt.Errorf("redis stream publisher: %w", err)
	}
	return publisher, nil
}
