package cli

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rileyhilliard/freqmon/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEnvelope(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestWriteJSONSuccess(t *testing.T) {
	var buf bytes.Buffer
	err := WriteJSONSuccess(&buf, DevicesOutput{Mode: "local", Location: "/data", Devices: nil})
	require.NoError(t, err)

	env := decodeEnvelope(t, &buf)
	assert.Equal(t, true, env["success"])
	assert.NotContains(t, env, "error")

	data := env["data"].(map[string]interface{})
	assert.Equal(t, "local", data["mode"])
	assert.Equal(t, "/data", data["location"])

	assert.True(t, strings.HasSuffix(buf.String(), "}\n"), "one document per line")
	assert.Contains(t, buf.String(), "\n  \"success\"", "two-space indent")
}

func TestWriteJSONSuccess_NilData(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONSuccess(&buf, nil))

	env := decodeEnvelope(t, &buf)
	assert.Equal(t, true, env["success"])
	assert.NotContains(t, env, "data")
}

func TestWriteJSONError(t *testing.T) {
	var buf bytes.Buffer
	err := WriteJSONError(&buf, ErrCodeDeviceAlerting, "2 devices alerting", "", []int{4, 7})
	require.NoError(t, err)

	env := decodeEnvelope(t, &buf)
	assert.Equal(t, false, env["success"])

	jerr := env["error"].(map[string]interface{})
	assert.Equal(t, ErrCodeDeviceAlerting, jerr["code"])
	assert.Equal(t, "2 devices alerting", jerr["message"])
	assert.NotContains(t, jerr, "suggestion", "empty suggestion is omitted")
	assert.Equal(t, []interface{}{4.0, 7.0}, jerr["details"])
}

func TestWriteJSONFromError(t *testing.T) {
	var buf bytes.Buffer
	err := errors.New(errors.ErrSource, "Can't list s3://telemetry/recent_data/", "Check the endpoint")
	require.NoError(t, WriteJSONFromError(&buf, err))

	jerr := decodeEnvelope(t, &buf)["error"].(map[string]interface{})
	assert.Equal(t, ErrCodeSourceUnavailable, jerr["code"])
	assert.Equal(t, "Can't list s3://telemetry/recent_data/", jerr["message"])
	assert.Equal(t, "Check the endpoint", jerr["suggestion"])
}

func TestErrorToJSON(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, ErrorToJSON(nil))
	})

	t.Run("plain error", func(t *testing.T) {
		result := ErrorToJSON(stderrors.New("generic error message"))
		assert.Equal(t, ErrCodeUnknown, result.Code)
		assert.Equal(t, "generic error message", result.Message)
		assert.Empty(t, result.Suggestion)
	})

	t.Run("wrapped structured error", func(t *testing.T) {
		inner := errors.New(errors.ErrSSH, "SSH connection failed", "Try: ssh lab")
		result := ErrorToJSON(fmt.Errorf("opening source: %w", inner))
		assert.Equal(t, ErrCodeSSHConnectionFail, result.Code)
		assert.Equal(t, "Try: ssh lab", result.Suggestion)
	})

	t.Run("cause is folded into the message", func(t *testing.T) {
		err := errors.Content("recent_data_device_1.csv", stderrors.New("line 3: bad float"))
		result := ErrorToJSON(err)
		assert.Equal(t, ErrCodeContentInvalid, result.Code)
		assert.Equal(t, "Can't parse recent_data_device_1.csv: line 3: bad float", result.Message)
	})
}

func TestMapErrorCode(t *testing.T) {
	tests := []struct {
		internalCode string
		message      string
		want         string
	}{
		{errors.ErrConfig, "Config file not found", ErrCodeConfigNotFound},
		{errors.ErrConfig, "Couldn't find .freqmon.yaml", ErrCodeConfigNotFound},
		{errors.ErrConfig, "NOT FOUND anywhere", ErrCodeConfigNotFound},
		{errors.ErrConfig, "refresh_interval needs to be 1-60 seconds", ErrCodeConfigInvalid},
		{errors.ErrSource, "Can't list devices", ErrCodeSourceUnavailable},
		{errors.ErrContent, "Can't parse freq_bounds_device_2.csv", ErrCodeContentInvalid},
		{errors.ErrSSH, "Connection refused", ErrCodeSSHConnectionFail},
		{errors.ErrAudio, "No audio player", ErrCodeAudio},
		{errors.ErrExec, "Dashboard stopped unexpectedly", ErrCodeUnknown},
		{"SOMETHING_ELSE", "whatever", ErrCodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.internalCode+"/"+tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, mapErrorCode(tt.internalCode, tt.message))
		})
	}
}

func TestErrorCodes(t *testing.T) {
	codes := []string{
		ErrCodeConfigNotFound,
		ErrCodeConfigInvalid,
		ErrCodeSourceUnavailable,
		ErrCodeContentInvalid,
		ErrCodeSSHConnectionFail,
		ErrCodeAudio,
		ErrCodeDeviceAlerting,
		ErrCodeUnknown,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
		assert.Equal(t, strings.ToUpper(code), code, "codes are SCREAMING_SNAKE_CASE")
		assert.NotContains(t, code, " ")
	}
}
