package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaultsForUnsetFields(t *testing.T) {
	cfg, err := Parse([]byte(`listenUri: "gavf-tcpserv://0.0.0.0:9910/live"`))
	require.NoError(t, err)
	assert.Equal(t, "gavf-tcpserv://0.0.0.0:9910/live", cfg.ListenURI)
	assert.Equal(t, 10000, cfg.HandshakeTimeoutMS)
	assert.Equal(t, 4, cfg.HWBuf.InitialFrames)
	assert.Equal(t, 64, cfg.Reorder.HighWaterMark)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
handshakeTimeoutMs: 2500
hwbuf:
  initialFrames: 8
  maxFrames: 32
reorder:
  highWaterMark: 128
`))
	require.NoError(t, err)
	assert.Equal(t, 2500, cfg.HandshakeTimeoutMS)
	assert.Equal(t, 8, cfg.HWBuf.InitialFrames)
	assert.Equal(t, 32, cfg.HWBuf.MaxFrames)
	assert.Equal(t, 128, cfg.Reorder.HighWaterMark)
}

func TestValidateRejectsInitialExceedingMax(t *testing.T) {
	_, err := Parse([]byte(`
hwbuf:
  initialFrames: 20
  maxFrames: 10
`))
	assert.Error(t, err)
}

func TestValidateRejectsNonPositiveHighWaterMark(t *testing.T) {
	_, err := Parse([]byte(`
reorder:
  highWaterMark: 0
`))
	assert.Error(t, err)
}

func TestHandshakeTimeoutConvertsToDuration(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, int64(10000), cfg.HandshakeTimeout().Milliseconds())
}
