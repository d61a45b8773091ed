package amqp

import (
	"context"

	"prestes/internal/log"
	"prestes/internal/metrics"
)

// Publisher is the outbound half of a Client.
type Publisher interface {
	PublishChange(ctx context.Context) error
}

// Subscriber is anything with a payload-free change signal.
type Subscriber interface {
	Subscribe(fn func()) (unsubscribe func())
}

// Bridge forwards local change signals to the broker. Signals arriving while
// a publish is pending collapse into one message.
type Bridge struct {
	pub     Publisher
	metrics *metrics.Metrics
	pending chan struct{}
	logger  *log.Logger
}

func NewBridge(pub Publisher, m *metrics.Metrics) *Bridge {
	return &Bridge{
		pub:     pub,
		metrics: m,
		pending: make(chan struct{}, 1),
		logger:  log.ForComponent(log.ComponentAMQP),
	}
}

// Attach starts forwarding src's signals. The returned func detaches.
func (b *Bridge) Attach(src Subscriber) (detach func()) {
	return src.Subscribe(b.signal)
}

// signal runs on the writer's goroutine and must not block.
func (b *Bridge) signal() {
	select {
	case b.pending <- struct{}{}:
	default:
	}
}

// Run publishes pending signals until ctx ends.
func (b *Bridge) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-b.pending:
			result := "ok"
			if err := b.pub.PublishChange(ctx); err != nil {
				result = "error"
				b.logger.WarnContext(ctx, "Change not published", log.FieldError, err)
			}
			if b.metrics != nil {
				b.metrics.Published.WithLabelValues("out", result).Inc()
			}
		}
	}
}

// ReloadOnChange adapts a reload function into a consumer handler that also
// counts inbound messages.
func ReloadOnChange(m *metrics.Metrics, reload func(context.Context) error) func(context.Context, ChangeMessage) error {
	return func(ctx context.Context, msg ChangeMessage) error {
		err := reload(ctx)
		if m != nil {
			result := "ok"
			if err != nil {
				result = "error"
			}
			m.Published.WithLabelValues("in", result).Inc()
		}
		return err
	}
}
