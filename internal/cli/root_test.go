package cli

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	fmerrors "github.com/rileyhilliard/freqmon/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsUnknownCommandError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "unknown command error",
			err:  errors.New(`unknown command "foo" for "freqmon"`),
			want: true,
		},
		{
			name: "unknown flag error",
			err:  errors.New(`unknown flag: --foo`),
			want: true,
		},
		{
			name: "other error",
			err:  errors.New("connection failed"),
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				// Can't call isUnknownCommandError with nil
				return
			}
			got := isUnknownCommandError(tt.err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractUnknownCommand(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "standard cobra format",
			err:  errors.New(`unknown command "foo" for "freqmon"`),
			want: "foo",
		},
		{
			name: "task name",
			err:  errors.New(`unknown command "test" for "freqmon"`),
			want: "test",
		},
		{
			name: "command with hyphen",
			err:  errors.New(`unknown command "my-task" for "freqmon"`),
			want: "my-task",
		},
		{
			name: "no quotes returns empty",
			err:  errors.New("unknown command foo"),
			want: "",
		},
		{
			name: "single quote returns empty",
			err:  errors.New(`unknown command "foo`),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractUnknownCommand(tt.err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderError(t *testing.T) {
	t.Run("structured error", func(t *testing.T) {
		err := fmerrors.New(fmerrors.ErrSource, "Can't list devices", "Check source.dir")
		out := renderError(err)
		assert.Contains(t, out, "Can't list devices")
		assert.Contains(t, out, "Check source.dir")
	})

	t.Run("wrapped structured error", func(t *testing.T) {
		inner := fmerrors.New(fmerrors.ErrConfig, "Bad config", "Fix it")
		out := renderError(fmt.Errorf("loading: %w", inner))
		assert.Contains(t, out, "Bad config")
	})

	t.Run("plain error", func(t *testing.T) {
		out := renderError(errors.New("boom"))
		assert.Contains(t, out, "boom")
		assert.True(t, strings.HasSuffix(out, "\n"))
	})
}

func TestExitCodeError(t *testing.T) {
	err := &ExitCodeError{Code: 2}
	assert.Equal(t, "exit status 2", err.Error())

	var target *ExitCodeError
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &target))
	assert.Equal(t, 2, target.Code)
}

func TestRun_ExitCodes(t *testing.T) {
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	assert.Equal(t, 0, run([]string{"version"}))
	assert.Equal(t, 1, run([]string{"no-such-command"}))
}
