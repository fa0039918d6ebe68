package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	ferrors "git.home.luguber.info/inful/targetdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/targetdocs/internal/logfields"
	"git.home.luguber.info/inful/targetdocs/internal/retry"
)

// DefaultSubject is used when no subject is configured.
const DefaultSubject = "targetdocs.runs"

// publisher is the part of a NATS connection the notifier needs.
type publisher interface {
	publish(ctx context.Context, subject string, data []byte) error
	close()
}

type corePublisher struct{ conn *nats.Conn }

func (p corePublisher) publish(_ context.Context, subject string, data []byte) error {
	if err := p.conn.Publish(subject, data); err != nil {
		return err
	}
	return p.conn.Flush()
}

func (p corePublisher) close() { p.conn.Close() }

type jetStreamPublisher struct {
	conn *nats.Conn
	js   jetstream.JetStream
}

func (p jetStreamPublisher) publish(ctx context.Context, subject string, data []byte) error {
	_, err := p.js.Publish(ctx, subject, data)
	return err
}

func (p jetStreamPublisher) close() { p.conn.Close() }

// NATSOptions configures NewNATSNotifier.
type NATSOptions struct {
	URL     string
	Subject string
	// JetStream publishes with acknowledgement; the subject must belong to a stream.
	JetStream bool
	Timeout   time.Duration
	// Retry governs republishing after a failed publish. The zero value publishes once.
	Retry retry.Policy
}

// NATSNotifier publishes RunEvents as JSON on a NATS subject.
type NATSNotifier struct {
	pub     publisher
	subject string
	timeout time.Duration
	retry   retry.Policy
}

// NewNATSNotifier connects to the NATS server at opts.URL.
func NewNATSNotifier(opts NATSOptions) (*NATSNotifier, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("nats url is required")
	}
	conn, err := nats.Connect(opts.URL, nats.Name("targetdocs"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	var pub publisher = corePublisher{conn: conn}
	if opts.JetStream {
		js, err := jetstream.New(conn)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to create JetStream context: %w", err)
		}
		pub = jetStreamPublisher{conn: conn, js: js}
	}

	n := newNATSNotifier(pub, opts)
	slog.Info("NATS notifier initialized", "url", opts.URL, "subject", n.subject, "jetstream", opts.JetStream)
	return n, nil
}

func newNATSNotifier(pub publisher, opts NATSOptions) *NATSNotifier {
	n := &NATSNotifier{pub: pub, subject: opts.Subject, timeout: opts.Timeout, retry: opts.Retry}
	if n.subject == "" {
		n.subject = DefaultSubject
	}
	if n.timeout <= 0 {
		n.timeout = 5 * time.Second
	}
	return n
}

// Notify publishes event. A zero Timestamp is set to now. The timeout
// applies to each publish attempt.
func (n *NATSNotifier) Notify(ctx context.Context, event RunEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	err = n.retry.Do(ctx, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, n.timeout)
		defer cancel()
		return classifyPublishError(n.pub.publish(attemptCtx, n.subject, data))
	})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	slog.Debug("Published run event", logfields.RunID(event.RunID), "subject", n.subject, "status", event.Status)
	return nil
}

// permanentPublishErrors will fail the same way on every attempt.
var permanentPublishErrors = []error{
	nats.ErrBadSubject,
	nats.ErrMaxPayload,
	nats.ErrConnectionClosed,
	nats.ErrInvalidContext,
}

func classifyPublishError(err error) error {
	if err == nil {
		return nil
	}
	for _, perm := range permanentPublishErrors {
		if errors.Is(err, perm) {
			return ferrors.WrapError(err, ferrors.CategoryNotify, "publish rejected").Build()
		}
	}
	return ferrors.WrapError(err, ferrors.CategoryNotify, "publish failed").Transient().Build()
}

// Close closes the connection.
func (n *NATSNotifier) Close() error {
	n.pub.close()
	return nil
}
