package adapter

import (
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/mateusmacedo/go-fleet/pkg/application"
	watermillAdapter "github.com/mateusmacedo/go-fleet/pkg/infrastructure/watermill/adapter"
)

// NewGoChannelPubSub returns an in-memory watermill pub/sub. Messages
// published with no subscriber are dropped unless persistent is set.
func NewGoChannelPubSub(logger application.AppLogger, persistent bool) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
		Persistent:          persistent,
	}, watermillAdapter.NewWatermillLoggerAdapter(logger))
}
