package events

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog/log"
)

// TopicChat is the single topic all chat events are published on.
const TopicChat = "chat"

// Publisher fans chat events out to UI subscribers over an in-process
// watermill pub/sub channel.
type Publisher struct {
	pubsub *gochannel.GoChannel
}

func NewPublisher() *Publisher {
	return &Publisher{
		pubsub: gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{}),
	}
}

// Publish serializes the event and distributes it to all subscribers.
func (p *Publisher) Publish(ev Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), b)
	return p.pubsub.Publish(TopicChat, msg)
}

// PublishBlind publishes and only logs failures. State mutation must never
// depend on event delivery.
func (p *Publisher) PublishBlind(ev Event) {
	if err := p.Publish(ev); err != nil {
		log.Warn().Err(err).Str("event_type", string(ev.Type)).Msg("failed to publish chat event")
	}
}

// Subscribe returns a channel of raw event messages. Callers must Ack each
// message.
func (p *Publisher) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return p.pubsub.Subscribe(ctx, TopicChat)
}

func (p *Publisher) Close() error {
	return p.pubsub.Close()
}
