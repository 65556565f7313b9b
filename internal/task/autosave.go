// Package task provides background processing for the profile pipeline.
package task

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// NameSaver commits a debounced name value. It is typically a thin wrapper
// around the UpdateName use case.
type NameSaver func(ctx context.Context, name string) error

// AutoSaverConfig holds configuration for the name auto-save pipeline.
type AutoSaverConfig struct {
	// Debounce is the quiet period after the last input value before a
	// commit is attempted.
	Debounce time.Duration

	// InputBuffer is the capacity of the raw input channel. Values
	// arriving while the buffer is full are dropped; intermediate
	// keystroke values carry no delivery guarantee.
	InputBuffer int
}

// DefaultAutoSaverConfig returns an AutoSaverConfig with the standard
// 500 ms quiet period.
func DefaultAutoSaverConfig() AutoSaverConfig {
	return AutoSaverConfig{
		Debounce:    500 * time.Millisecond,
		InputBuffer: 64,
	}
}

// AutoSaver turns a raw stream of name input values into committed name
// updates. It is an explicit timer-reset state machine: every input value
// replaces the pending value and restarts the quiet-period timer, and only
// the value present when the timer fires is considered for commit. A value
// is committed when it is non-blank after trimming and differs from the
// last successfully committed name. Failed commits are logged and not
// retried; the next distinct input value attempts again naturally.
type AutoSaver struct {
	save     NameSaver
	debounce time.Duration
	input    chan string
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	logger   *slog.Logger

	mu            sync.Mutex
	lastCommitted string
}

// NewAutoSaver creates an AutoSaver.
// If logger is nil, a default logger will be used.
func NewAutoSaver(save NameSaver, config AutoSaverConfig, logger *slog.Logger) *AutoSaver {
	if save == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("save cannot be nil")
	}
	if config.Debounce <= 0 {
		config.Debounce = 500 * time.Millisecond
	}
	if config.InputBuffer <= 0 {
		config.InputBuffer = 64
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &AutoSaver{
		save:     save,
		debounce: config.Debounce,
		input:    make(chan string, config.InputBuffer),
		ctx:      ctx,
		cancel:   cancel,
		logger:   logger.With(slog.String("component", "name_autosaver")),
	}
}

// Start launches the debounce loop.
func (a *AutoSaver) Start() {
	a.wg.Add(1)
	go a.run()
}

// Stop cancels the debounce loop and waits for it to finish. A pending
// value that has not reached its quiet period is discarded.
func (a *AutoSaver) Stop() {
	a.cancel()
	a.wg.Wait()
}

// Input feeds the current raw contents of the name field. It never blocks:
// when the buffer is full the value is dropped, which is acceptable
// because a newer value follows every dropped one.
func (a *AutoSaver) Input(value string) {
	select {
	case a.input <- value:
	default:
		a.logger.Debug("input buffer full, dropping value")
	}
}

// LastCommitted returns the most recent successfully committed name.
func (a *AutoSaver) LastCommitted() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastCommitted
}

func (a *AutoSaver) run() {
	defer a.wg.Done()

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending string
	)

	for {
		select {
		case <-a.ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case value := <-a.input:
			pending = value
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(a.debounce)
			timerC = timer.C

		case <-timerC:
			timer = nil
			timerC = nil
			a.flush(pending)
		}
	}
}

// flush applies the commit rules to the value that survived the quiet
// period: trim, drop blank, suppress a re-commit of the last committed
// name, then commit.
func (a *AutoSaver) flush(value string) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		a.logger.Debug("dropping blank name value")
		return
	}

	a.mu.Lock()
	last := a.lastCommitted
	a.mu.Unlock()
	if trimmed == last {
		a.logger.Debug("name unchanged, skipping commit")
		return
	}

	if err := a.save(a.ctx, trimmed); err != nil {
		a.logger.Warn("name auto-save failed",
			slog.String("error", err.Error()))
		return
	}

	a.mu.Lock()
	a.lastCommitted = trimmed
	a.mu.Unlock()

	a.logger.Debug("name auto-saved")
}
