package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/mateusmacedo/go-fleet/internal/config"
	"github.com/mateusmacedo/go-fleet/internal/fleet/application"
	"github.com/mateusmacedo/go-fleet/internal/fleet/domain"
	"github.com/mateusmacedo/go-fleet/internal/fleet/infrastructure"
	pkgApp "github.com/mateusmacedo/go-fleet/pkg/application"
	pkgInfra "github.com/mateusmacedo/go-fleet/pkg/infrastructure"
	channelsAdapter "github.com/mateusmacedo/go-fleet/pkg/infrastructure/channels/adapter"
	kafkaAdapter "github.com/mateusmacedo/go-fleet/pkg/infrastructure/kafka/adapter"
	redisAdapter "github.com/mateusmacedo/go-fleet/pkg/infrastructure/redis/adapter"
	watermillAdapter "github.com/mateusmacedo/go-fleet/pkg/infrastructure/watermill/adapter"
)

func noopClose() error { return nil }

// newEventBus builds the occupancy event bus for the configured transport.
// The returned func releases the transport's connections.
func newEventBus(ctx context.Context, cfg config.Config, logger pkgApp.AppLogger) (application.OccupancyEventBus, func() error, error) {
	switch cfg.EventTransport {
	case config.TransportNone:
		return pkgInfra.NewSimpleEventBus[application.OccupancyEvent, domain.OccupancyChange](logger), noopClose, nil

	case config.TransportChannel:
		pubSub := channelsAdapter.NewGoChannelPubSub(logger, false)
		bus := watermillAdapter.NewWatermillEventBus[application.OccupancyEvent, domain.OccupancyChange](pubSub, logger)
		return bus, pubSub.Close, nil

	case config.TransportRedis:
		client := redisAdapter.NewRedisClient(redisAdapter.ClientOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		publisher, err := redisAdapter.NewPublisher(ctx, client, logger)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		bus := watermillAdapter.NewWatermillEventBus[application.OccupancyEvent, domain.OccupancyChange](publisher, logger)
		return bus, func() error { return errors.Join(publisher.Close(), client.Close()) }, nil

	case config.TransportKafka:
		publisher, err := kafkaAdapter.NewPublisher(cfg.KafkaBrokers, cfg.ServiceName, logger)
		if err != nil {
			return nil, nil, err
		}
		bus := watermillAdapter.NewWatermillEventBus[application.OccupancyEvent, domain.OccupancyChange](publisher, logger)
		return bus, publisher.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown event transport %q", cfg.EventTransport)
	}
}

// newJournal opens the occupancy journal for the configured driver.
func newJournal(cfg config.Config, logger pkgApp.AppLogger) (domain.OccupancyJournal, func() error, error) {
	if cfg.JournalDriver == config.JournalMemory {
		return infrastructure.NewInMemoryOccupancyJournal(logger), noopClose, nil
	}

	dialector, err := infrastructure.Dialector(cfg.JournalDriver, cfg.JournalDSN)
	if err != nil {
		return nil, nil, err
	}
	journal, err := infrastructure.NewGormOccupancyJournal(dialector, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s journal: %w", cfg.JournalDriver, err)
	}
	return journal, journal.Close, nil
}
