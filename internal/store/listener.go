package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

// Change is the payload emitted by the notify_row_change trigger.
type Change struct {
	Op string `json:"op"`
	ID string `json:"id"`
}

const (
	opInsert = "INSERT"
	opUpdate = "UPDATE"
	opDelete = "DELETE"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Listener holds a dedicated Postgres connection LISTENing on one channel and
// decodes every notification into a Change. Subscription drops are retryable:
// the listener reconnects with capped exponential backoff and signals each
// transition through onDown/onUp so the owner can reconcile missed changes.
type Listener struct {
	dsn     string
	channel string

	onChange func(Change)
	onUp     func()
	onDown   func(error)
}

func NewListener(dsn, channel string, onChange func(Change), onUp func(), onDown func(error)) *Listener {
	return &Listener{
		dsn:      dsn,
		channel:  channel,
		onChange: onChange,
		onUp:     onUp,
		onDown:   onDown,
	}
}

// Run blocks until ctx is cancelled, maintaining the LISTEN subscription.
func (l *Listener) Run(ctx context.Context) {
	backoff := initialBackoff

	for {
		if ctx.Err() != nil {
			return
		}

		err := l.listen(ctx, func() { backoff = initialBackoff })
		if ctx.Err() != nil {
			return
		}

		l.onDown(err)
		slog.Error("change feed subscription lost", "channel", l.channel, "error", err, "retry_in", backoff.String())

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// listen connects, subscribes and consumes notifications until an error or
// context cancellation. Returns the terminal error.
func (l *Listener) listen(ctx context.Context, subscribed func()) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return err
	}

	subscribed()
	l.onUp()
	slog.Info("change feed subscribed", "channel", l.channel)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}

		var change Change
		if err := json.Unmarshal([]byte(notification.Payload), &change); err != nil {
			slog.Error("malformed change payload", "channel", l.channel, "payload", notification.Payload, "error", err)
			continue
		}
		l.onChange(change)
	}
}
