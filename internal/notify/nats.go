package notify

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/checkem/internal/foundation/errors"
	"git.home.luguber.info/inful/checkem/internal/logfields"
	"git.home.luguber.info/inful/checkem/internal/retry"
)

// DefaultSubject is used when no subject is configured.
const DefaultSubject = "checkem.changes"

const publishTimeout = 5 * time.Second

// publisher is the part of a NATS connection the notifier needs.
type publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

type corePublisher struct {
	conn *nats.Conn
}

func (p corePublisher) Publish(ctx context.Context, subject string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.conn.Publish(subject, data)
}

type jetStreamPublisher struct {
	js jetstream.JetStream
}

func (p jetStreamPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	_, err := p.js.Publish(ctx, subject, data)
	return err
}

// NATSOptions configures NewNATSNotifier.
type NATSOptions struct {
	URL     string
	Subject string
	// JetStream publishes with acknowledgement; a stream must capture Subject.
	JetStream bool
	// Retry governs republishing after a failed publish. Zero value never retries.
	Retry  retry.Policy
	Logger *slog.Logger
}

// NATSNotifier publishes JSON encoded change events to a NATS subject.
type NATSNotifier struct {
	conn    *nats.Conn
	pub     publisher
	subject string
	retry   retry.Policy
	logger  *slog.Logger
}

// NewNATSNotifier connects to the server at opts.URL.
func NewNATSNotifier(opts NATSOptions) (*NATSNotifier, error) {
	if opts.URL == "" {
		return nil, errors.ConfigError("nats url is required").Build()
	}
	subject := opts.Subject
	if subject == "" {
		subject = DefaultSubject
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(opts.URL, nats.Name("checkem"))
	if err != nil {
		return nil, errors.NotifyError("failed to connect to NATS").
			WithCause(err).
			WithContext("url", opts.URL).
			Build()
	}

	var pub publisher = corePublisher{conn: conn}
	if opts.JetStream {
		js, jsErr := jetstream.New(conn)
		if jsErr != nil {
			conn.Close()
			return nil, errors.NotifyError("failed to create JetStream context").WithCause(jsErr).Build()
		}
		pub = jetStreamPublisher{js: js}
	}

	logger.Info("NATS notifier connected",
		slog.String("url", opts.URL),
		logfields.Subject(subject),
		slog.Bool("jetstream", opts.JetStream))

	return &NATSNotifier{conn: conn, pub: pub, subject: subject, retry: opts.Retry, logger: logger}, nil
}

// Subject returns the subject events are published to.
func (n *NATSNotifier) Subject() string {
	return n.subject
}

// Notify publishes event.
func (n *NATSNotifier) Notify(ctx context.Context, event ChangeEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errors.NotifyError("failed to encode change event").
			WithCause(err).
			WithContext("key", event.Key).
			Build()
	}

	attempts := 0
	err = n.retry.Do(ctx, func(ctx context.Context) error {
		attempts++
		if attempts > 1 {
			n.logger.Debug("Retrying publish",
				logfields.Key(event.Key),
				slog.Int("attempt", attempts))
		}
		ctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()
		return n.pub.Publish(ctx, n.subject, data)
	}, retryablePublishError)
	if err != nil {
		return errors.NotifyError(fmt.Sprintf("failed to publish to %s", n.subject)).
			WithCause(err).
			WithContext("key", event.Key).
			WithContext("attempts", attempts).
			Build()
	}

	n.logger.Debug("Published change event",
		logfields.Key(event.Key),
		logfields.Subject(n.subject),
		slog.String("event_id", event.ID))
	return nil
}

// Cancellation by the caller is final; any other publish failure may be
// transient.
func retryablePublishError(err error) bool {
	return !stderrors.Is(err, context.Canceled)
}

// Close drains and closes the connection.
func (n *NATSNotifier) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Drain()
}
