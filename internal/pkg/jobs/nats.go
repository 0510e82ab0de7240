package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"
)

// Connect opens a NATS connection that keeps reconnecting in the background.
func Connect(url, name string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return conn, nil
}

// NATSDispatcher publishes jobs to <prefix>.<job name> so any instance can run them.
type NATSDispatcher struct {
	conn   *nats.Conn
	prefix string
}

func NewNATSDispatcher(conn *nats.Conn, prefix string) *NATSDispatcher {
	return &NATSDispatcher{conn: conn, prefix: strings.TrimSuffix(prefix, ".")}
}

func (d *NATSDispatcher) Subject(name string) string {
	return d.prefix + "." + name
}

func (d *NATSDispatcher) Dispatch(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := d.conn.Publish(d.Subject(job.Name), data); err != nil {
		return fmt.Errorf("publish %s: %w", job.Name, err)
	}
	return nil
}

// NATSConsumer subscribes to every job subject under a queue group and hands
// jobs to the local queue.
type NATSConsumer struct {
	conn   *nats.Conn
	prefix string
	group  string
	local  Dispatcher
	sub    *nats.Subscription
}

func NewNATSConsumer(conn *nats.Conn, prefix, group string, local Dispatcher) *NATSConsumer {
	return &NATSConsumer{conn: conn, prefix: strings.TrimSuffix(prefix, "."), group: group, local: local}
}

func (c *NATSConsumer) Start() error {
	subject := c.prefix + ".>"
	sub, err := c.conn.QueueSubscribe(subject, c.group, c.handle)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	c.sub = sub
	slog.Info("NATS job consumer started", "subject", subject, "group", c.group)
	return nil
}

func (c *NATSConsumer) handle(msg *nats.Msg) {
	var job Job
	if err := json.Unmarshal(msg.Data, &job); err != nil {
		slog.Warn("Discarding malformed job message", "subject", msg.Subject, "error", err)
		return
	}
	if err := c.local.Dispatch(context.Background(), job); err != nil {
		slog.Warn("Failed to enqueue job from NATS", "job", job.Name, "job_id", job.ID, "error", err)
	}
}

func (c *NATSConsumer) Stop() {
	if c.sub == nil {
		return
	}
	if err := c.sub.Drain(); err != nil {
		slog.Warn("NATS unsubscribe failed", "error", err)
	}
}
