package analytics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

const (
	EventMovePicked    = "move_picked"
	EventMatchFinished = "match_finished"
)

// Event is the envelope written to the topic.
type Event struct {
	Event     string         `json:"event"`
	Payload   map[string]any `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
}

func NewEvent(name string, payload map[string]any) Event {
	return Event{Event: name, Payload: payload, Timestamp: time.Now().UTC()}
}

type Producer struct {
	writer *kafka.Writer
}

// NewProducer returns nil when no brokers or topic are configured; a nil
// Producer drops every event.
func NewProducer(brokers []string, topic string) *Producer {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		Async:                  true,
	}
	return &Producer{writer: writer}
}

func (p *Producer) Publish(ctx context.Context, event string, payload map[string]any) {
	if p == nil || p.writer == nil {
		return
	}
	data, err := json.Marshal(NewEvent(event, payload))
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("encode-event-failed")
		return
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Value: data}); err != nil {
		log.Error().Err(err).Str("event", event).Msg("kafka-publish-failed")
	}
}

func (p *Producer) Close() {
	if p == nil || p.writer == nil {
		return
	}
	if err := p.writer.Close(); err != nil {
		log.Warn().Err(err).Msg("kafka-close-failed")
	}
}
