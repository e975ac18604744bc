package transcoder

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateway_Run_Success(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("'true' binary not available")
	}
	g := NewGateway("true", "ffprobe")
	result, err := g.Run(context.Background(), nil, RunOptions{Timeout: 5 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
}

func TestGateway_Run_NonZeroExit(t *testing.T) {
	if _, err := exec.LookPath("false"); err != nil {
		t.Skip("'false' binary not available")
	}
	g := NewGateway("false", "ffprobe")
	_, err := g.Run(context.Background(), nil, RunOptions{Timeout: 5 * time.Second})
	require.Error(t, err)
}

func TestGateway_Run_BinaryMissing(t *testing.T) {
	g := NewGateway("musewave-definitely-not-a-real-binary", "ffprobe")
	_, err := g.Run(context.Background(), nil, RunOptions{Timeout: time.Second})
	require.Error(t, err)
}

func TestParseProgress(t *testing.T) {
	pct, ok := parseProgress("frame=10 fps=5 time=00:00:30.00 bitrate=128kbits/s", 60)
	require.True(t, ok)
	assert.Equal(t, 50, pct)

	_, ok = parseProgress("no progress info here", 60)
	assert.False(t, ok)
}

func TestTail(t *testing.T) {
	assert.Equal(t, "hello", tail("hello", 10))
	assert.Equal(t, "llo", tail("hello", 3))
}

func TestGateway_Probe(t *testing.T) {
	g := NewGateway("musewave-definitely-not-a-real-binary", "musewave-also-not-real")
	caps := g.Probe(context.Background())
	assert.False(t, caps.TranscoderAvailable)
	assert.False(t, caps.ProbeAvailable)

	if _, err := exec.LookPath("true"); err == nil {
		g2 := NewGateway("true", "musewave-also-not-real")
		caps2 := g2.Probe(context.Background())
		assert.True(t, caps2.TranscoderAvailable)
		assert.False(t, caps2.ProbeAvailable)
	}
}
