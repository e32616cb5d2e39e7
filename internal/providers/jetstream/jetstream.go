package jetstream

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	natsjs "github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/quizmint/qm-engine/internal/adapter"
	"github.com/quizmint/qm-engine/internal/domain"
	"github.com/quizmint/qm-engine/internal/logger"
	"github.com/quizmint/qm-engine/internal/messaging"
)

// SubjectSessionCompleted is the subject terminal session outcomes publish
// to. Subjects are per-status so operators can filter redeliveries.
const subjectPrefix = "sessions.completed"

// Config holds the configuration for the NATS JetStream connection
type Config struct {
	URL            string
	StreamName     string
	ConsumerName   string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
}

func connect(cfg Config, natsJS adapter.NatsJetStream) (adapter.NatsConn, adapter.JetStream, error) {
	opts := []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, js, err := natsJS.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}
	return nc, js, nil
}

type publisher struct {
	nc         adapter.NatsConn
	js         adapter.JetStream
	streamName string
	json       adapter.JSON
}

// NewPublisher creates a JetStream publisher for session completion events,
// creating the stream when absent.
func NewPublisher(cfg Config, natsJS adapter.NatsJetStream, jsonAdapter adapter.JSON) (messaging.Publisher, error) {
	nc, js, err := connect(cfg, natsJS)
	if err != nil {
		return nil, err
	}

	if err := js.CreateOrUpdateStream(context.Background(), natsjs.StreamConfig{
		Name:     cfg.StreamName,
		Subjects: []string{subjectPrefix + ".>"},
	}); err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to ensure stream: %w", err)
	}

	return &publisher{
		nc:         nc,
		js:         js,
		streamName: cfg.StreamName,
		json:       jsonAdapter,
	}, nil
}

// PublishSessionCompleted publishes a terminal session outcome
func (p *publisher) PublishSessionCompleted(ctx context.Context, event *domain.SessionCompleted) error {
	logger.DebugCtx(ctx, "Publishing session completed event",
		zap.String("session_id", event.SessionID),
		zap.String("status", string(event.Status)))

	data, err := p.json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := fmt.Sprintf("%s.%s", subjectPrefix, event.Status)

	// The session id deduplicates redundant publishes from completion
	// retries.
	_, err = p.js.Publish(ctx, subject, data, natsjs.WithMsgID(event.SessionID))
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Close closes the NATS connection
func (p *publisher) Close() {
	if p.nc == nil {
		return
	}
	p.nc.Close()
}

type subscriber struct {
	nc       adapter.NatsConn
	js       adapter.JetStream
	cfg      Config
	json     adapter.JSON
	consumer adapter.ConsumeContext
}

// NewSubscriber creates a durable pull subscriber for session completion
// events.
func NewSubscriber(cfg Config, natsJS adapter.NatsJetStream, jsonAdapter adapter.JSON) (messaging.Subscriber, error) {
	nc, js, err := connect(cfg, natsJS)
	if err != nil {
		return nil, err
	}

	return &subscriber{
		nc:   nc,
		js:   js,
		cfg:  cfg,
		json: jsonAdapter,
	}, nil
}

// Subscribe consumes completion events until the context is canceled.
// Handler errors trigger Nak redelivery; undecodable payloads are
// terminated so they cannot wedge the consumer.
func (s *subscriber) Subscribe(ctx context.Context, handler messaging.CompletedHandler) error {
	consumer, err := s.js.CreateOrUpdateConsumer(ctx, s.cfg.StreamName, natsjs.ConsumerConfig{
		Durable:       s.cfg.ConsumerName,
		FilterSubject: subjectPrefix + ".>",
		AckPolicy:     natsjs.AckExplicitPolicy,
		MaxDeliver:    10,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg adapter.Message) {
		var event domain.SessionCompleted
		if err := s.json.Unmarshal(msg.Data(), &event); err != nil {
			logger.Error(err, zap.String("message", "undecodable session event, terminating"))
			_ = msg.Term()
			return
		}

		if err := handler(ctx, &event); err != nil {
			logger.Error(err, zap.String("session_id", event.SessionID))
			_ = msg.Nak()
			return
		}

		if err := msg.Ack(); err != nil {
			logger.Error(err, zap.String("session_id", event.SessionID))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}
	s.consumer = cc

	<-ctx.Done()
	cc.Drain()
	return nil
}

// Close drains and closes the NATS connection
func (s *subscriber) Close() {
	if s.consumer != nil {
		s.consumer.Stop()
	}
	if s.nc != nil {
		s.nc.Close()
	}
}
