// Package renderer coordinates Transcoder Gateway calls to produce the
// final audio/video assets for a job, per spec.md §4.5. It is grounded on
// the teacher's internal/audio/ffmpeg.go staged-pipeline idiom, generalized
// from a single normalize-and-encode pass into the seven-stage pipeline
// this domain requires.
package renderer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	ffprobe "gopkg.in/vansante/go-ffprobe.v2"

	apperrors "github.com/musewave/backend/internal/errors"
	"github.com/musewave/backend/internal/logger"
	"github.com/musewave/backend/internal/models"
	"github.com/musewave/backend/internal/storage"
	"github.com/musewave/backend/internal/transcoder"

	"go.uber.org/zap"
)

// Transcoder is the subset of *transcoder.Gateway the Renderer depends on,
// declared here so tests can supply a fake.
type Transcoder interface {
	Run(ctx context.Context, argv []string, opts transcoder.RunOptions) (transcoder.Result, error)
	ProbeFile(ctx context.Context, path string) (*ffprobe.ProbeData, error)
}

// Metrics is the subset of *metrics.Manager the Renderer reports to,
// declared here so tests can supply a fake.
type Metrics interface {
	ObserveTranscoderStage(stage string, duration time.Duration, err error)
}

// ProgressSink reports stage progress back to the Job Store.
type ProgressSink func(percent int, message string)

// Renderer drives the Transcoder Gateway through the Renderer pipeline.
type Renderer struct {
	Gateway    Transcoder
	Storage    storage.Store
	ScratchDir string
	Metrics    Metrics
}

// New constructs a Renderer.
func New(gateway Transcoder, store storage.Store, scratchDir string, metricsManager Metrics) *Renderer {
	return &Renderer{Gateway: gateway, Storage: store, ScratchDir: scratchDir, Metrics: metricsManager}
}

// runStage invokes the Transcoder Gateway for one named pipeline stage,
// recording its duration via transcoder_stage_duration_seconds regardless of
// outcome. When totalSec is positive, the Gateway's in-stream time= progress
// lines are linearly mapped into the stage's percent band (per spec.md
// §4.5's last paragraph) and forwarded to progressSink.
func (r *Renderer) runStage(ctx context.Context, stage string, argv []string, opts transcoder.RunOptions, progressSink ProgressSink, totalSec float64) (transcoder.Result, error) {
	if totalSec > 0 {
		opts.TotalSec = totalSec
		opts.ProgressSink = func(pct int, msg string) {
			progressSink(mapIntoBand(stage, pct), msg)
		}
	}
	start := time.Now()
	result, err := r.Gateway.Run(ctx, argv, opts)
	if r.Metrics != nil {
		r.Metrics.ObserveTranscoderStage(stage, time.Since(start), err)
	}
	return result, err
}

// Result is the set of asset keys produced by one Render call, filename to
// the storage-assigned URL.
type Result struct {
	AssetURLs  map[string]string
	AssetKeys  map[string]string
	AssetSizes map[string]int64
}

var stemOrder = []models.EventType{models.EventKick, models.EventSnare, models.EventHat, models.EventBass, models.EventLead}

// Render executes the full pipeline for one job and returns the produced
// asset URLs. progressSink may be nil.
func (r *Renderer) Render(ctx context.Context, jobID string, req *models.GenerateRequest, plan models.MusicPlan, events []models.Event, progressSink ProgressSink) (Result, error) {
	if progressSink == nil {
		progressSink = func(int, string) {}
	}

	scratchDir := filepath.Join(r.ScratchDir, jobID)
	if err := os.MkdirAll(scratchDir, 0755); err != nil {
		return Result{}, apperrors.InternalError("renderer: creating scratch dir: " + err.Error())
	}

	progressSink(5, "plan ready")

	rootFreq := rootFrequency(plan.Key)

	oneShotPaths := map[models.EventType]string{}
	oneShotDurs := map[models.EventType]float64{}
	for _, et := range stemOrder {
		spec := oneShotSpecFor(et, rootFreq)
		outPath := filepath.Join(scratchDir, string(et)+"_oneshot.wav")
		if _, err := r.runStage(ctx, "oneshot", spec.argv(outPath, rootFreq), transcoder.RunOptions{Timeout: 30 * time.Second}, progressSink, 0); err != nil {
			return Result{}, err
		}
		if err := validateWav(outPath); err != nil {
			return Result{}, err
		}
		oneShotPaths[et] = outPath
		oneShotDurs[et] = spec.durationSec
	}
	progressSink(10, "one-shots synthesized")

	eventsByType := groupEvents(events)
	progressSink(25, "sequencing complete")

	stemPaths := map[models.EventType]string{}
	for i, et := range stemOrder {
		stemPath, err := r.assembleStem(ctx, scratchDir, et, oneShotPaths[et], oneShotDurs[et], eventsByType[et], plan.DurationSec, progressSink)
		if err != nil {
			return Result{}, err
		}
		stemPaths[et] = stemPath
		progressSink(stemPercent(i+1, len(stemOrder)), fmt.Sprintf("%s stem assembled", et))
	}

	previewPath := filepath.Join(scratchDir, "preview.wav")
	previewInputs := []string{stemPaths[models.EventKick], stemPaths[models.EventSnare], stemPaths[models.EventHat], stemPaths[models.EventBass], stemPaths[models.EventLead]}
	if _, err := r.runStage(ctx, "preview-mix", previewMixArgv(previewInputs, previewPath), transcoder.RunOptions{Timeout: 60 * time.Second}, progressSink, 0); err != nil {
		return Result{}, err
	}
	if err := validateWav(previewPath); err != nil {
		return Result{}, err
	}

	mixPath := filepath.Join(scratchDir, "mix.wav")
	masterArgv := masteredMixArgv(stemPaths[models.EventKick], stemPaths[models.EventSnare], stemPaths[models.EventHat], stemPaths[models.EventBass], stemPaths[models.EventLead], mixPath)
	if _, err := r.runStage(ctx, "mixing", masterArgv, transcoder.RunOptions{Timeout: 60 * time.Second}, progressSink, float64(plan.DurationSec)); err != nil {
		return Result{}, err
	}
	if err := validateWav(mixPath); err != nil {
		return Result{}, err
	}
	progressSink(70, "mixed")

	assetPaths := map[string]string{"preview.wav": previewPath, "mix.wav": mixPath}

	if req.HasVocals() {
		vocalsPath := filepath.Join(scratchDir, "vocals.wav")
		if _, err := r.runStage(ctx, "vocals", vocalSynthArgv(vocalsPath, rootFreq, plan.DurationSec), transcoder.RunOptions{Timeout: 30 * time.Second}, progressSink, float64(plan.DurationSec)); err != nil {
			return Result{}, err
		}
		if err := validateWav(vocalsPath); err != nil {
			return Result{}, err
		}

		remixedPath := filepath.Join(scratchDir, "mix_with_vocals.wav")
		if _, err := r.runStage(ctx, "vocals", remixWithVocalsArgv(mixPath, vocalsPath, remixedPath), transcoder.RunOptions{Timeout: 60 * time.Second}, progressSink, float64(plan.DurationSec)); err != nil {
			return Result{}, err
		}
		if err := validateWav(remixedPath); err != nil {
			return Result{}, err
		}
		mixPath = remixedPath
		assetPaths["mix.wav"] = mixPath
		assetPaths["vocals.wav"] = vocalsPath

		captionsPath := filepath.Join(scratchDir, "captions.srt")
		srt := buildCaptions(req.Lyrics, plan.DurationSec, 6)
		if err := writeCaptionsFile(captionsPath, srt); err != nil {
			return Result{}, apperrors.AssetNotProduced("captions")
		}
		if err := nonEmptyFile(captionsPath); err != nil {
			return Result{}, err
		}
		assetPaths["captions.srt"] = captionsPath
	}
	progressSink(80, "vocals done")

	if req.HasVideo() {
		style := req.VideoStyles[0]
		finalPath := filepath.Join(scratchDir, "final.mp4")
		captionsPath := assetPaths["captions.srt"]
		if _, err := r.runStage(ctx, "video", videoArgv(style, mixPath, captionsPath, finalPath), transcoder.RunOptions{Timeout: 2 * time.Minute}, progressSink, float64(plan.DurationSec)); err != nil {
			return Result{}, err
		}
		if err := nonEmptyFile(finalPath); err != nil {
			return Result{}, err
		}
		if _, err := r.Gateway.ProbeFile(ctx, finalPath); err != nil {
			return Result{}, apperrors.AssetNotProduced("final.mp4")
		}
		assetPaths["final.mp4"] = finalPath
	}
	progressSink(88, "video done")

	uuidStr := uuid.New().String()
	now := time.Now()
	prefix := fmt.Sprintf("assets/%04d/%02d/%s/", now.Year(), int(now.Month()), uuidStr)

	assetURLs := make(map[string]string, len(assetPaths))
	assetKeys := make(map[string]string, len(assetPaths))
	assetSizes := make(map[string]int64, len(assetPaths))
	for name, path := range assetPaths {
		f, err := os.Open(path)
		if err != nil {
			return Result{}, apperrors.AssetNotProduced(name)
		}
		key := prefix + name
		url, size, err := r.Storage.PutStream(ctx, key, f)
		f.Close()
		if err != nil {
			return Result{}, err
		}
		assetURLs[name] = url
		assetKeys[name] = key
		assetSizes[name] = size
	}
	progressSink(94, "uploaded")

	logger.Log.Info("renderer: job rendered", zap.String("jobId", jobID), zap.Int("assetCount", len(assetURLs)))
	progressSink(100, "done")

	return Result{AssetURLs: assetURLs, AssetKeys: assetKeys, AssetSizes: assetSizes}, nil
}

// assembleStem implements spec.md §4.5 stage 2: for each event, a delayed
// copy of the stem's one-shot is concatenated (via silence padding and the
// transcoder's concat demuxer) into a full-length mono WAV.
func (r *Renderer) assembleStem(ctx context.Context, scratchDir string, et models.EventType, oneShotPath string, oneShotDur float64, events []models.Event, durationSec int, progressSink ProgressSink) (string, error) {
	dir := stemDir(scratchDir, et)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", apperrors.InternalError("renderer: creating stem dir: " + err.Error())
	}

	segments := buildConcatPlan(oneShotPath, oneShotDur, events, durationSec)
	paths := make([]string, 0, len(segments))
	for i, seg := range segments {
		if !seg.silence {
			paths = append(paths, seg.path)
			continue
		}
		silencePath := filepath.Join(dir, fmt.Sprintf("silence_%d.wav", i))
		if _, err := r.runStage(ctx, "silence", silenceArgv(silencePath, seg.duration), transcoder.RunOptions{Timeout: 10 * time.Second}, progressSink, 0); err != nil {
			return "", err
		}
		paths = append(paths, silencePath)
	}

	listPath := filepath.Join(dir, "list.txt")
	if err := writeConcatList(listPath, paths); err != nil {
		return "", apperrors.InternalError("renderer: writing concat list: " + err.Error())
	}

	stemPath := filepath.Join(scratchDir, string(et)+".wav")
	if _, err := r.runStage(ctx, "stems", concatArgv(listPath, stemPath), transcoder.RunOptions{Timeout: 60 * time.Second}, progressSink, float64(durationSec)); err != nil {
		return "", err
	}
	if err := validateWav(stemPath); err != nil {
		return "", err
	}
	return stemPath, nil
}
