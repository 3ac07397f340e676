package doctor

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/rileyhilliard/freqmon/internal/alarm"
	"github.com/rileyhilliard/freqmon/internal/config"
)

var lookPath = exec.LookPath

// SoundFileCheck verifies the alert sound file is readable.
type SoundFileCheck struct {
	Alert config.AlertConfig
}

func (c *SoundFileCheck) Name() string     { return "sound_file" }
func (c *SoundFileCheck) Category() string { return "AUDIO" }

func (c *SoundFileCheck) Run() CheckResult {
	if c.Alert.Muted {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "Alerts muted in config",
		}
	}

	info, err := os.Stat(c.Alert.Sound)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("Sound file not found: %s (terminal bell will be used)", c.Alert.Sound),
			Suggestion: "Set alert.sound in .freqmon.yaml to an existing .wav file",
		}
	}
	if info.IsDir() {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("Sound path is a directory: %s", c.Alert.Sound),
			Suggestion: "Point alert.sound at a file",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Sound file: %s", c.Alert.Sound),
	}
}

// PlayerCheck reports which audio player the alarm will use.
type PlayerCheck struct {
	Alert config.AlertConfig

	// Detect overrides alarm.Detect.
	Detect func(configured string) alarm.Player
}

func (c *PlayerCheck) Name() string     { return "audio_player" }
func (c *PlayerCheck) Category() string { return "AUDIO" }

func (c *PlayerCheck) Run() CheckResult {
	detect := c.Detect
	if detect == nil {
		detect = alarm.Detect
	}
	p := detect(c.Alert.Player)

	if cp, ok := p.(*alarm.CommandPlayer); ok && c.Alert.Player != "" {
		if _, err := lookPath(cp.Command); err != nil {
			return CheckResult{
				Name:       c.Name(),
				Status:     StatusFail,
				Message:    fmt.Sprintf("Configured player not on PATH: %s", cp.Command),
				Suggestion: "Install it or clear alert.player to auto-detect",
			}
		}
	}

	if p.Name() == "bell" {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "No audio player found, alerts will ring the terminal bell",
			Suggestion: "Install one of afplay, paplay, aplay or ffplay",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Audio player: %s", p.Name()),
	}
}

// NewAudioChecks creates the audio checks.
func NewAudioChecks(ac config.AlertConfig) []Check {
	return []Check{
		&SoundFileCheck{Alert: ac},
		&PlayerCheck{Alert: ac},
	}
}
