// Package alarm loops an audible cue while any device is alerting.
package alarm

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rileyhilliard/freqmon/internal/errors"
)

// Player plays a sound file once, blocking until it finishes or ctx ends.
type Player interface {
	Play(ctx context.Context, path string) error
	Name() string
}

// knownPlayers are tried in order when no player is configured.
var knownPlayers = [][]string{
	{"afplay"},
	{"paplay"},
	{"aplay", "-q"},
	{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
}

// CommandPlayer shells out to an audio player binary.
type CommandPlayer struct {
	Command string
	Args    []string
}

// Play runs the player with path as the last argument.
func (p *CommandPlayer) Play(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return errors.WrapWithCode(err, errors.ErrAudio,
			"Alert sound not found: "+path,
			"Set alert.sound in .freqmon.yaml to an existing .wav file.")
	}
	args := append(append([]string(nil), p.Args...), path)
	out, err := exec.CommandContext(ctx, p.Command, args...).CombinedOutput()
	if err != nil && ctx.Err() == nil {
		return errors.WrapWithCode(fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out))), errors.ErrAudio,
			fmt.Sprintf("%s couldn't play %s", p.Command, filepath.Base(path)),
			"Run it by hand to see why, or set alert.player.")
	}
	return nil
}

func (p *CommandPlayer) Name() string { return p.Command }

// BellPlayer rings the terminal bell once per second.
type BellPlayer struct {
	Out      io.Writer
	Interval time.Duration
}

// NewBellPlayer rings on stderr so it does not disturb the dashboard frame.
func NewBellPlayer() *BellPlayer {
	return &BellPlayer{Out: os.Stderr, Interval: time.Second}
}

func (b *BellPlayer) Play(ctx context.Context, _ string) error {
	if _, err := io.WriteString(b.Out, "\a"); err != nil {
		return errors.WrapWithCode(err, errors.ErrAudio, "Can't ring the terminal bell", "")
	}
	select {
	case <-ctx.Done():
	case <-time.After(b.Interval):
	}
	return nil
}

func (b *BellPlayer) Name() string { return "bell" }

// Detect picks a player. A configured command wins (split on spaces for
// extra arguments); otherwise the first known player on PATH; otherwise
// the terminal bell.
func Detect(configured string) Player {
	if fields := strings.Fields(configured); len(fields) > 0 {
		return &CommandPlayer{Command: fields[0], Args: fields[1:]}
	}
	for _, candidate := range knownPlayers {
		if _, err := exec.LookPath(candidate[0]); err == nil {
			return &CommandPlayer{Command: candidate[0], Args: candidate[1:]}
		}
	}
	return NewBellPlayer()
}
