package source

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rileyhilliard/freqmon/internal/config"
	"github.com/rileyhilliard/freqmon/internal/logger"
	"github.com/rileyhilliard/freqmon/internal/telemetry"
	"github.com/rileyhilliard/freqmon/pkg/sshutil"
)

// SSH reads device files from a directory on an SSH host. One connection
// is reused across cycles and redialed after a transport failure.
type SSH struct {
	host string
	dir  string
	opts sshutil.DialOptions
	dial sshutil.DialFunc
	log  logger.Logger

	mu     sync.Mutex
	client sshutil.Runner
}

var _ Source = (*SSH)(nil)

// NewSSH creates an SSH source. Nothing is dialed until first use.
func NewSSH(sc config.SSHConfig, dial sshutil.DialFunc, log logger.Logger) *SSH {
	return &SSH{
		host: sc.Host,
		dir:  sc.Dir,
		opts: sshutil.DialOptions{Timeout: sc.Timeout, StrictHostKeyChecking: sc.StrictHostKeyChecking},
		dial: dial,
		log:  log,
	}
}

func (s *SSH) Mode() config.SourceMode { return config.ModeSSH }
func (s *SSH) Location() string        { return s.host + ":" + s.dir }

func (s *SSH) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

// Devices lists the remote directory. A missing directory has no devices.
func (s *SSH) Devices(ctx context.Context) ([]telemetry.DeviceID, error) {
	stdout, stderr, code, err := s.run(ctx, "ls -1 "+sshutil.QuotePath(s.dir))
	if err != nil {
		return nil, err
	}
	if code != 0 {
		if isNotFound(stderr) {
			s.log.Debug("remote directory %s does not exist", s.Location())
			return nil, nil
		}
		return nil, sourceError(fmt.Errorf("ls exited %d: %s", code, strings.TrimSpace(string(stderr))),
			"Can't list "+s.Location())
	}

	return telemetry.DeviceIDsFromNames(strings.Fields(string(stdout)))
}

func (s *SSH) Load(ctx context.Context, id telemetry.DeviceID) (*telemetry.Window, *telemetry.Bounds, error) {
	samplePath := sshutil.JoinPath(s.dir, telemetry.DataFileName(id))
	data, found, err := s.read(ctx, samplePath)
	if err != nil || !found {
		return nil, nil, err
	}
	w, err := decodeWindow(samplePath, data)
	if err != nil {
		return nil, nil, err
	}

	boundsPath := sshutil.JoinPath(s.dir, telemetry.BoundsFileName(id))
	data, found, err = s.read(ctx, boundsPath)
	if err != nil {
		return nil, nil, err
	}
	if !found {
		s.log.Debug("device %d has no bounds file on %s", id, s.host)
		return w, nil, nil
	}
	b, err := decodeBounds(boundsPath, data)
	if err != nil {
		return nil, nil, err
	}
	return w, b, nil
}

func (s *SSH) read(ctx context.Context, p string) ([]byte, bool, error) {
	stdout, stderr, code, err := s.run(ctx, "cat "+sshutil.QuotePath(p))
	if err != nil {
		return nil, false, err
	}
	if code != 0 {
		if isNotFound(stderr) {
			return nil, false, nil
		}
		return nil, false, sourceError(fmt.Errorf("cat exited %d: %s", code, strings.TrimSpace(string(stderr))),
			"Can't read "+s.host+":"+p)
	}
	return stdout, true, nil
}

// run executes cmd on the shared connection, dialing if needed. A
// transport error drops the connection so the next call redials.
func (s *SSH) run(ctx context.Context, cmd string) ([]byte, []byte, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		c, err := s.dial(s.host, s.opts)
		if err != nil {
			return nil, nil, -1, sourceError(err, "Can't connect to "+s.host)
		}
		s.client = c
	}

	stdout, stderr, code, err := s.client.Exec(ctx, cmd)
	if err != nil {
		s.log.Debug("ssh %s: %q failed, dropping connection: %v", s.host, cmd, err)
		_ = s.client.Close()
		s.client = nil
		return nil, nil, -1, sourceError(err, "Lost connection to "+s.host)
	}
	return stdout, stderr, code, nil
}

func isNotFound(stderr []byte) bool {
	return strings.Contains(string(stderr), "No such file")
}
