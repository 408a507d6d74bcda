package jetstream

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-projector/internal/adapter"
	"github.com/feral-file/ff-projector/internal/logger"
	"github.com/feral-file/ff-projector/internal/messaging"
)

// DefaultSubjectPrefix is the subject root of every published change
const DefaultSubjectPrefix = "projections"

// Config holds the configuration for NATS JetStream connection
type Config struct {
	URL            string
	StreamName     string
	SubjectPrefix  string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
	// MaxAge bounds how long changes are retained by the stream, zero keeps them forever
	MaxAge time.Duration
}

type publisher struct {
	nc     adapter.NatsConn
	js     adapter.JetStream
	prefix string
	json   adapter.JSON
}

// NewPublisher connects to NATS and makes sure the change stream exists
func NewPublisher(ctx context.Context, cfg Config, natsJS adapter.NatsJetStream, jsonAdapter adapter.JSON) (messaging.Publisher, error) {
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = DefaultSubjectPrefix
	}

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
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       cfg.StreamName,
		Subjects:   []string{cfg.SubjectPrefix + ".>"},
		Storage:    jetstream.FileStorage,
		MaxAge:     cfg.MaxAge,
		Duplicates: 10 * time.Minute,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create stream %s: %w", cfg.StreamName, err)
	}

	logger.Info("Connected to NATS JetStream",
		zap.String("url", nc.ConnectedUrl()),
		zap.String("stream", cfg.StreamName))

	return &publisher{
		nc:     nc,
		js:     js,
		prefix: cfg.SubjectPrefix,
		json:   jsonAdapter,
	}, nil
}

// Publish publishes a committed change to NATS JetStream
func (p *publisher) Publish(ctx context.Context, change *messaging.Change) error {
	if change.ID == "" {
		change.ID = ulid.Make().String()
	}

	data, err := p.json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal change: %w", err)
	}

	subject := p.buildSubject(change)
	logger.DebugCtx(ctx, "Publishing change", zap.String("subject", subject), zap.String("id", change.ID))

	// replays of the same log are dropped by the stream's duplicate window
	_, err = p.js.Publish(ctx, subject, data, jetstream.WithMsgID(msgID(change)))
	if err != nil {
		return fmt.Errorf("failed to publish change: %w", err)
	}

	return nil
}

// buildSubject constructs the NATS subject of a change
// Format: {prefix}.{kind}.{event}, e.g. projections.Exchange.OrdersFilled
func (p *publisher) buildSubject(change *messaging.Change) string {
	return strings.Join([]string{p.prefix, string(change.Kind), change.Event}, ".")
}

// msgID identifies a change by the log it came from
func msgID(change *messaging.Change) string {
	return strings.Join([]string{
		string(change.Chain),
		strconv.FormatUint(change.BlockNumber, 10),
		strconv.FormatUint(uint64(change.LogIndex), 10),
	}, "-")
}

// Close drains and closes the NATS connection
func (p *publisher) Close() {
	if p.nc == nil {
		return
	}

	if err := p.nc.Drain(); err != nil {
		logger.Warn("Failed to drain NATS connection", zap.Error(err))
	}
	p.nc.Close()
}
