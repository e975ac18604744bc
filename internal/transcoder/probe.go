package transcoder

import (
	"context"
	"os/exec"
	"time"

	"github.com/cenkalti/backoff/v4"
	ffprobe "gopkg.in/vansante/go-ffprobe.v2"
)

// Probe reports whether the transcoder binary and its metadata tool are
// reachable on PATH, per spec.md §4.2's startup capability check.
func (g *Gateway) Probe(ctx context.Context) Capabilities {
	caps := Capabilities{}
	if _, err := exec.LookPath(g.Bin); err == nil {
		caps.TranscoderAvailable = true
	}
	if _, err := exec.LookPath(g.ProbeBin); err == nil {
		caps.ProbeAvailable = true
	}
	return caps
}

// ProbeFile runs the metadata tool against path and returns its parsed
// stream/format data, retrying transient failures with jittered backoff —
// grounded on livepeer-catalyst-api/video/probe.go's ffprobe.ProbeURL usage.
func (g *Gateway) ProbeFile(ctx context.Context, path string) (*ffprobe.ProbeData, error) {
	var data *ffprobe.ProbeData
	var err error

	operation := func() error {
		probeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		data, err = ffprobe.ProbeURL(probeCtx, path)
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 0

	if retryErr := backoff.Retry(operation, backoff.WithMaxRetries(b, 2)); retryErr != nil {
		return nil, retryErr
	}
	return data, nil
}
