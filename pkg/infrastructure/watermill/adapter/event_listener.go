package adapter

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"golang.org/x/sync/errgroup"

	"github.com/mateusmacedo/go-fleet/pkg/application"
	"github.com/mateusmacedo/go-fleet/pkg/domain"
)

// EventListener consumes events written by WatermillEventBus, possibly in
// another process, and runs local handlers for them.
type EventListener[D any] struct {
	subscriber message.Subscriber
	handlers   map[string][]application.EventHandler[domain.Event[D], D]
	mu         sync.RWMutex
	logger     application.AppLogger
}

func NewEventListener[D any](subscriber message.Subscriber, logger application.AppLogger) *EventListener[D] {
	return &EventListener[D]{
		subscriber: subscriber,
		handlers:   make(map[string][]application.EventHandler[domain.Event[D], D]),
		logger:     logger,
	}
}

func (l *EventListener[D]) RegisterHandler(eventName string, handler application.EventHandler[domain.Event[D], D]) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers[eventName] = append(l.handlers[eventName], handler)
}

// Run subscribes to every registered event and handles messages until ctx
// is done or the subscriber closes.
func (l *EventListener[D]) Run(ctx context.Context) error {
	l.mu.RLock()
	names := make([]string, 0, len(l.handlers))
	for name := range l.handlers {
		names = append(names, name)
	}
	l.mu.RUnlock()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	for _, name := range names {
		messages, err := l.subscriber.Subscribe(gctx, name)
		if err != nil {
			application.LogError(ctx, l.logger, "error subscribing to event", err, map[string]interface{}{
				"event_name": name,
			})
			// Stop the consumers already started before reporting.
			cancel()
			_ = g.Wait()
			return err
		}
		g.Go(func() error {
			for msg := range messages {
				l.handleMessage(gctx, name, msg)
			}
			return nil
		})
	}
	return g.Wait()
}

func (l *EventListener[D]) handleMessage(ctx context.Context, eventName string, msg *message.Message) {
	var payload D
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		// Redelivery cannot fix a malformed payload.
		application.LogError(ctx, l.logger, "error unmarshalling event payload", err, map[string]interface{}{
			"event_name": eventName,
			"message_id": msg.UUID,
		})
		msg.Ack()
		return
	}

	event := remoteEvent[D]{eventName: eventName, payload: payload}

	l.mu.RLock()
	handlers := append([]application.EventHandler[domain.Event[D], D](nil), l.handlers[eventName]...)
	l.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler.Handle(ctx, event); err != nil {
			application.LogError(ctx, l.logger, "error handling event", err, map[string]interface{}{
				"event_name": eventName,
				"message_id": msg.UUID,
			})
			msg.Nack()
			return
		}
	}

	application.LogDebug(ctx, l.logger, "event handled", map[string]interface{}{
		"event_name": eventName,
		"message_id": msg.UUID,
	})
	msg.Ack()
}

type remoteEvent[D any] struct {
	eventName string
	payload   D
}

func (e remoteEvent[D]) EventName() string { return e.eventName }

func (e remoteEvent[D]) Payload() D { return e.payload }
