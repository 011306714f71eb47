package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mateusmacedo/go-fleet/pkg/application"
	"github.com/mateusmacedo/go-fleet/pkg/domain"
)

const instrumentationName = "github.com/mateusmacedo/go-fleet"

type tracedCommandBus[C domain.Command[D], D any] struct {
	next   application.CommandBus[C, D]
	tracer trace.Tracer
}

// NewTracedCommandBus decorates next with one span per Dispatch. The tracer
// comes from the global provider at construction time.
func NewTracedCommandBus[C domain.Command[D], D any](next application.CommandBus[C, D]) application.CommandBus[C, D] {
	return &tracedCommandBus[C, D]{
		next:   next,
		tracer: otel.Tracer(instrumentationName),
	}
}

func (bus *tracedCommandBus[C, D]) RegisterHandler(commandName string, handler application.CommandHandler[C, D]) {
	bus.next.RegisterHandler(commandName, handler)
}

func (bus *tracedCommandBus[C, D]) Dispatch(ctx context.Context, command C) error {
	ctx, span := bus.tracer.Start(ctx, "command "+command.CommandName(),
		trace.WithAttributes(attribute.String("command.name", command.CommandName())),
	)
	defer span.End()

	if err := bus.next.Dispatch(ctx, command); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}
