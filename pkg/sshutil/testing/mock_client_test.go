package testing

import (
	"context"
	"errors"
	"testing"

	"github.com/rileyhilliard/freqmon/pkg/sshutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockClient_CatAndLs(t *testing.T) {
	ctx := context.Background()
	m := NewMockClient("gw")
	m.WriteFile("~/recent data/b.csv", []byte("b"))
	m.WriteFile("~/recent data/a.csv", []byte("a"))

	out, _, code, err := m.Exec(ctx, "cat "+sshutil.QuotePath("~/recent data/a.csv"))
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "a", string(out))

	_, stderr, code, err := m.Exec(ctx, "cat "+sshutil.Quote("/nope.csv"))
	require.NoError(t, err)
	assert.Equal(t, 1, code)
	assert.Contains(t, string(stderr), "No such file")

	out, _, code, err = m.Exec(ctx, "ls -1 "+sshutil.QuotePath("~/recent data"))
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "a.csv\nb.csv\n", string(out))

	_, stderr, code, _ = m.Exec(ctx, "ls -1 '/missing'")
	assert.Equal(t, 2, code)
	assert.Contains(t, string(stderr), "No such file")

	assert.Len(t, m.Calls(), 4)
}

func TestMockClient_CannedAndClosed(t *testing.T) {
	ctx := context.Background()
	m := NewMockClient("gw")
	boom := errors.New("broken pipe")
	m.SetCommandResponse(`^cat .*device_9`, CommandResponse{ExitCode: -1, Error: boom})

	_, _, _, err := m.Exec(ctx, "cat '/d/recent_data_device_9.csv'")
	assert.ErrorIs(t, err, boom)

	require.NoError(t, m.Close())
	assert.True(t, m.Closed())
	_, _, _, err = m.Exec(ctx, "cat x")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSplitWords(t *testing.T) {
	assert.Equal(t, []string{"cat", "it's here"}, splitWords(`cat 'it'\''s here'`))
	assert.Equal(t, []string{"ls", "-1", "~/a b"}, splitWords(`ls -1 ~/'a b'`))
}
