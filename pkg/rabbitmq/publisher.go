package rabbitmq

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"vidgate/config"
	"vidgate/constant"
	"vidgate/dto"
)

// Publisher emits video lifecycle events for downstream consumers such as
// transcoding workers. Publishing is best effort; the request that triggered
// the event never fails because the broker is down.
type Publisher interface {
	PublishVideoEvent(ctx context.Context, event constant.VideoEvent, msg dto.VideoEventMessage)
}

type publisher struct {
	conn     *amqp.Connection
	exchange string
	kind     string
}

func NewPublisher(conn *amqp.Connection, cfg *config.RabbitMQ) Publisher {
	exchange := cfg.ExchangeName
	if exchange == "" {
		exchange = "video_events"
	}
	kind := cfg.Kind
	if kind == "" {
		kind = "topic"
	}
	return &publisher{
		conn:     conn,
		exchange: exchange,
		kind:     kind,
	}
}

func (p *publisher) PublishVideoEvent(ctx context.Context, event constant.VideoEvent, msg dto.VideoEventMessage) {
	if p.conn == nil || p.conn.IsClosed() {
		zerolog.Ctx(ctx).Debug().Str("event", event.String()).Msg("no broker connection, dropping event")
		return
	}

	ch, err := p.conn.Channel()
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to open channel")
		return
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(p.exchange, p.kind, true, false, false, false, nil); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("exchange", p.exchange).Msg("failed to declare exchange")
		return
	}

	body, err := json.Marshal(msg)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to marshal event")
		return
	}

	err = ch.PublishWithContext(ctx, p.exchange, event.String(), false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("event", event.String()).Msg("failed to publish event")
		return
	}

	zerolog.Ctx(ctx).Debug().Str("event", event.String()).Str("video_id", msg.VideoId.String()).Msg("event published")
}

// NopPublisher drops every event. Used when running without a broker and in
// tests.
type NopPublisher struct{}

func (NopPublisher) PublishVideoEvent(ctx context.Context, event constant.VideoEvent, msg dto.VideoEventMessage) {
}
