package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
)

// profileChannel is the NOTIFY channel the profile table trigger fires on.
const profileChannel = "profile_changed"

// ListenEvent is one emission of the raw notification stream. A nil Err is
// a change signal; a non-nil Err reports a stream fault that the listener
// will recover from by reconnecting.
type ListenEvent struct {
	Err error
}

// ChangeListener delivers a signal for every committed write to the profile
// row, using a dedicated PostgreSQL LISTEN connection. Connection failures
// are retried with exponential backoff; the stream never terminates on a
// fault, only on context cancellation.
type ChangeListener struct {
	dsn    string
	logger *slog.Logger
}

// NewChangeListener creates a listener that connects with the given DSN.
// If logger is nil, a default logger will be used.
func NewChangeListener(dsn string, logger *slog.Logger) *ChangeListener {
	if logger == nil {
		logger = slog.Default()
	}

	return &ChangeListener{
		dsn:    dsn,
		logger: logger.With(slog.String("component", "change_listener")),
	}
}

// Listen starts the notification loop. The returned channel is closed when
// ctx is cancelled.
func (l *ChangeListener) Listen(ctx context.Context) <-chan ListenEvent {
	out := make(chan ListenEvent, 1)

	go func() {
		defer close(out)

		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = 250 * time.Millisecond
		bo.MaxInterval = 30 * time.Second
		bo.MaxElapsedTime = 0 // retry for the process lifetime

		for {
			err := l.listenOnce(ctx, out)
			if ctx.Err() != nil {
				return
			}

			l.logger.Warn("change stream interrupted, reconnecting",
				slog.String("error", err.Error()))
			if !l.send(ctx, out, ListenEvent{Err: err}) {
				return
			}

			select {
			case <-time.After(bo.NextBackOff()):
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// listenOnce holds a single LISTEN connection and forwards notifications
// until the connection or context fails.
func (l *ChangeListener) listenOnce(ctx context.Context, out chan<- ListenEvent) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := conn.Close(closeCtx); err != nil {
			l.logger.Debug("failed to close listen connection", slog.String("error", err.Error()))
		}
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+profileChannel); err != nil {
		return err
	}

	l.logger.Debug("listening for profile changes", slog.String("channel", profileChannel))

	for {
		if _, err := conn.WaitForNotification(ctx); err != nil {
			return err
		}
		if !l.send(ctx, out, ListenEvent{}) {
			return ctx.Err()
		}
	}
}

func (l *ChangeListener) send(ctx context.Context, out chan<- ListenEvent, event ListenEvent) bool {
	select {
	case out <- event:
		return true
	case <-ctx.Done():
		return false
	}
}
