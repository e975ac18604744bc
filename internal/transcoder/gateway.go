// Package transcoder wraps the external FFmpeg-class binary as a
// supervised child process: argv builder, process runner, stderr progress
// parser, timeout/kill. Grounded on the teacher's
// internal/audio/ffmpeg.go process-execution idiom, generalized from a
// single fixed pipeline to an arbitrary argv per spec.md §4.2.
package transcoder

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/musewave/backend/internal/errors"
	"github.com/musewave/backend/internal/logger"
)

// ProgressSink is called as the Gateway recognizes progress lines in the
// child's stderr stream.
type ProgressSink func(percent int, message string)

// RunOptions configure a single Gateway.Run call.
type RunOptions struct {
	Timeout      time.Duration
	GracePeriod  time.Duration // wait after interrupt before SIGKILL
	InputReader  io.Reader     // piped to the child's stdin, if set
	ProgressSink ProgressSink
	TotalSec     float64 // known total duration, for percent mapping of time= lines
}

// Result is the outcome of a completed Run.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Capabilities reports whether the configured binaries are reachable.
type Capabilities struct {
	TranscoderAvailable bool
	ProbeAvailable      bool
}

// Gateway spawns and supervises a single child process of the configured
// transcoder binary. It never shells out through /bin/sh — argv is always a
// vector, never an interpolated string.
type Gateway struct {
	Bin      string
	ProbeBin string
}

// NewGateway constructs a Gateway for the given binaries (ffmpeg/ffprobe by
// default, configurable via TRANSCODER_BIN/TRANSCODER_PROBE_BIN).
func NewGateway(bin, probeBin string) *Gateway {
	if bin == "" {
		bin = "ffmpeg"
	}
	if probeBin == "" {
		probeBin = "ffprobe"
	}
	return &Gateway{Bin: bin, ProbeBin: probeBin}
}

var timeRe = regexp.MustCompile(`time=(\d+):(\d{2}):(\d{2})\.(\d+)`)

// Run blocks until the child exits, the context is cancelled, or opts.Timeout
// elapses. On timeout the child is sent an interrupt, given GracePeriod to
// exit, then killed; the call returns a TimedOut error either way.
func (g *Gateway) Run(ctx context.Context, argv []string, opts RunOptions) (Result, error) {
	runCtx := ctx
	var cancel context.CancelFunc
	if opts.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	gracePeriod := opts.GracePeriod
	if gracePeriod <= 0 {
		gracePeriod = 5 * time.Second
	}
	cmd := exec.CommandContext(runCtx, g.Bin, argv...)
	// When runCtx ends the child is interrupted first; Wait kills it if it
	// is still running gracePeriod later.
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = gracePeriod
	if opts.InputReader != nil {
		cmd.Stdin = opts.InputReader
	}

	var stdout bytes.Buffer
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return Result{}, apperrors.InternalError("transcoder: stderr pipe: " + err.Error())
	}
	cmd.Stdout = &stdout

	if err := cmd.Start(); err != nil {
		return Result{}, apperrors.TranscoderUnavailable(g.Bin)
	}

	var stderrBuf bytes.Buffer
	stderrDone := make(chan struct{})
	go func() {
		defer close(stderrDone)
		scanner := bufio.NewScanner(stderrPipe)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			stderrBuf.WriteString(line)
			stderrBuf.WriteByte('\n')
			if opts.ProgressSink != nil {
				if pct, ok := parseProgress(line, opts.TotalSec); ok {
					opts.ProgressSink(pct, line)
				}
			}
		}
	}()

	waitErr := cmd.Wait()
	<-stderrDone

	if runCtx.Err() == context.DeadlineExceeded {
		killAfterGrace(cmd, gracePeriod)
		logger.Log.Warn("transcoder: run timed out", zap.Strings("argv", argv))
		return Result{Stdout: stdout.Bytes(), Stderr: stderrBuf.Bytes()}, apperrors.TimedOut("transcoder run")
	}

	exitCode := 0
	if waitErr != nil {
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return Result{}, apperrors.TranscoderUnavailable(g.Bin)
		}
	}

	result := Result{Stdout: stdout.Bytes(), Stderr: stderrBuf.Bytes(), ExitCode: exitCode}
	if exitCode != 0 {
		return result, apperrors.TranscoderFailed(exitCode, tail(stderrBuf.String(), 2000))
	}
	return result, nil
}

// killAfterGrace sends the process a termination signal, waits up to
// gracePeriod for it to exit on its own, then force-kills it.
func killAfterGrace(cmd *exec.Cmd, gracePeriod time.Duration) {
	if cmd.Process == nil {
		return
	}
	cmd.Process.Signal(os.Interrupt)
	done := make(chan struct{})
	go func() {
		cmd.Process.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(gracePeriod):
		cmd.Process.Kill()
	}
}

func parseProgress(line string, totalSec float64) (int, bool) {
	m := timeRe.FindStringSubmatch(line)
	if m == nil || totalSec <= 0 {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	mi, _ := strconv.Atoi(m[2])
	s, _ := strconv.Atoi(m[3])
	elapsed := float64(h*3600 + mi*60 + s)
	pct := int((elapsed / totalSec) * 100)
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct, true
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
