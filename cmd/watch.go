package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/spf13/cobra"

	"github.com/mateusmacedo/go-fleet/internal/config"
	"github.com/mateusmacedo/go-fleet/internal/fleet/application"
	"github.com/mateusmacedo/go-fleet/internal/fleet/domain"
	pkgApp "github.com/mateusmacedo/go-fleet/pkg/application"
	kafkaAdapter "github.com/mateusmacedo/go-fleet/pkg/infrastructure/kafka/adapter"
	redisAdapter "github.com/mateusmacedo/go-fleet/pkg/infrastructure/redis/adapter"
	watermillAdapter "github.com/mateusmacedo/go-fleet/pkg/infrastructure/watermill/adapter"
	zapAdapter "github.com/mateusmacedo/go-fleet/pkg/infrastructure/zaplogger/adapter"
)

var errLocalTransport = errors.New("watch needs the redis or kafka event transport")

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print occupancy events published by a running service",
		Long: `watch consumes PassengerBoarded and PassengerDisembarked events from the
configured redis or kafka transport. With --record the events are also written
to the configured journal.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			envFiles, _ := cmd.Flags().GetStringSlice("env-file")
			cfg, err := config.Load(envFiles...)
			if err != nil {
				return err
			}
			group, _ := cmd.Flags().GetString("group")
			record, _ := cmd.Flags().GetBool("record")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watch(ctx, cmd.OutOrStdout(), cfg, group, record)
		},
	}
	cmd.Flags().String("group", "go-fleet-watch", "consumer group name")
	cmd.Flags().Bool("record", false, "write received events to the journal")
	return cmd
}

func watch(ctx context.Context, out io.Writer, cfg config.Config, group string, record bool) error {
	logger, syncLogger, err := zapAdapter.NewZapAppLogger(zapAdapter.Options{
		App:   cfg.ServiceName,
		Level: cfg.LogLevel,
		File:  cfg.LogFile,
	})
	if err != nil {
		return err
	}
	defer func() { _ = syncLogger() }()

	subscriber, closeSubscriber, err := newSubscriber(ctx, cfg, group, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeSubscriber() }()

	listener := watermillAdapter.NewEventListener[domain.OccupancyChange](subscriber, logger)
	printer := &occupancyPrinter{out: out}
	for _, name := range []string{application.PassengerBoardedEvent, application.PassengerDisembarkedEvent} {
		listener.RegisterHandler(name, printer)
	}

	if record {
		journal, closeJournal, err := newJournal(cfg, logger)
		if err != nil {
			return err
		}
		defer func() { _ = closeJournal() }()
		recorder := application.NewOccupancyJournalHandler(journal, logger)
		for _, name := range []string{application.PassengerBoardedEvent, application.PassengerDisembarkedEvent} {
			listener.RegisterHandler(name, recorder)
		}
	}

	pkgApp.LogInfo(ctx, logger, "watching occupancy events", map[string]interface{}{
		"transport": cfg.EventTransport,
		"group":     group,
	})
	return listener.Run(ctx)
}

func newSubscriber(ctx context.Context, cfg config.Config, group string, logger pkgApp.AppLogger) (message.Subscriber, func() error, error) {
	switch cfg.EventTransport {
	case config.TransportRedis:
		client := redisAdapter.NewRedisClient(redisAdapter.ClientOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		subscriber, err := redisAdapter.NewSubscriber(ctx, client, group, cfg.ServiceName, logger)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return subscriber, func() error { return errors.Join(subscriber.Close(), client.Close()) }, nil

	case config.TransportKafka:
		subscriber, err := kafkaAdapter.NewSubscriber(cfg.KafkaBrokers, group, logger)
		if err != nil {
			return nil, nil, err
		}
		return subscriber, subscriber.Close, nil

	default:
		return nil, nil, fmt.Errorf("%w, got %q", errLocalTransport, cfg.EventTransport)
	}
}

type occupancyPrinter struct {
	out io.Writer
}

func (p *occupancyPrinter) Handle(_ context.Context, event application.OccupancyEvent) error {
	c := event.Payload()
	line := fmt.Sprintf("%s  %-12s %-20s %s (%d/%d)",
		c.OccurredAt.Format("15:04:05"), c.Action, c.PassengerName, c.VehicleID, c.Occupied, c.Capacity)
	if c.Action == domain.ActionBoarded {
		line = totalStyle.Render(line)
	}
	_, err := fmt.Fprintln(p.out, line)
	return err
}
