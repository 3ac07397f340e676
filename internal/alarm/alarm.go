package alarm

import (
	"context"
	"sync"
	"time"

	"github.com/rileyhilliard/freqmon/internal/errors"
	"github.com/rileyhilliard/freqmon/internal/logger"
)

// retryPause throttles the loop after a failed play.
const retryPause = time.Second

// Alarm loops a sound on its own goroutine between Start and Stop.
type Alarm struct {
	sound    string
	player   Player
	fallback Player
	log      logger.Logger

	mu      sync.Mutex
	muted   bool
	cancel  context.CancelFunc
	done    chan struct{}
	started int
}

// New creates a stopped Alarm. fallback is used for the rest of a loop
// once player fails; nil means keep retrying player.
func New(player, fallback Player, sound string, log logger.Logger) *Alarm {
	if log == nil {
		log = logger.Noop()
	}
	return &Alarm{sound: sound, player: player, fallback: fallback, log: log}
}

// Start begins looping unless already playing or muted.
func (a *Alarm) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.muted || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.done = make(chan struct{})
	a.started++
	go a.loop(ctx, a.done)
}

// Stop ends playback and waits for the loop to exit.
func (a *Alarm) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Sync makes the alarm follow one cycle's verdict.
func (a *Alarm) Sync(alerting bool) {
	if alerting {
		a.Start()
	} else {
		a.Stop()
	}
}

// SetMuted silences the alarm. Unmuting waits for the next Sync.
func (a *Alarm) SetMuted(muted bool) {
	a.mu.Lock()
	a.muted = muted
	a.mu.Unlock()
	if muted {
		a.Stop()
	}
}

// Muted reports whether the alarm is muted.
func (a *Alarm) Muted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.muted
}

// Playing reports whether the loop is running.
func (a *Alarm) Playing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cancel != nil
}

// Starts returns how many times playback has been started.
func (a *Alarm) Starts() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.started
}

func (a *Alarm) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	player := a.player
	for ctx.Err() == nil {
		err := player.Play(ctx, a.sound)
		if err == nil || ctx.Err() != nil {
			continue
		}

		a.log.Warn("alert sound via %s failed: %s", player.Name(), errors.Short(err))
		if a.fallback != nil && player != a.fallback {
			a.log.Info("falling back to %s", a.fallback.Name())
			player = a.fallback
			continue
		}
		select {
		case <-ctx.Done():
		case <-time.After(retryPause):
		}
	}
}
