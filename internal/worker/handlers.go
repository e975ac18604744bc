package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/musewave/backend/internal/models"
	"github.com/musewave/backend/internal/planner"
	"github.com/musewave/backend/internal/renderer"
	"github.com/musewave/backend/internal/sequencer"
	"github.com/musewave/backend/internal/store"
)

// assetMeta maps a Renderer output filename to the Asset row fields
// spec.md §6's asset-path layout implies.
var assetMeta = map[string]struct {
	kind models.AssetKind
	mime string
}{
	"preview.wav":  {models.AssetKindWAV, "audio/wav"},
	"mix.wav":      {models.AssetKindWAV, "audio/wav"},
	"vocals.wav":   {models.AssetKindWAV, "audio/wav"},
	"captions.srt": {models.AssetKindSRT, "application/x-subrip"},
	"final.mp4":    {models.AssetKindMP4, "video/mp4"},
}

// AssetWriter persists one produced Asset row. Declared as an interface so
// tests can supply a fake rather than a live *gorm.DB.
type AssetWriter interface {
	CreateAsset(ctx context.Context, asset *models.Asset) error
}

// NewPipelineHandler builds the Handler for models.JobTypePipeline: the sole
// job type this Worker Pool ever claims. spec.md §4.7 describes the
// pipeline handler as enqueuing audio/mix/vocals/video as separate Job rows
// and polling their terminal states; this implementation instead runs the
// Renderer's own internal multi-stage sequence (one-shots, stems, mix,
// vocals, video) within a single claimed Job, since the Renderer already
// performs that staging via direct Transcoder Gateway calls. The
// plan/audio/vocals/mix/video JobType constants remain for any future
// finer-grained scheduling; only JobTypePipeline is ever enqueued or
// claimed here.
func NewPipelineHandler(st *store.Store, r *renderer.Renderer, assets AssetWriter) Handler {
	return func(ctx context.Context, job *models.Job) (models.JSONMap, error) {
		req, err := decodeRequest(job.Params)
		if err != nil {
			return nil, err
		}

		plan, err := planner.Plan(req)
		if err != nil {
			return nil, err
		}

		events := sequencer.Events(plan)

		// In-stage progress can restart below an earlier anchor; the stored
		// percent is held at its highest value so far.
		lastPercent := 0
		progressSink := func(percent int, message string) {
			if percent < lastPercent {
				percent = lastPercent
			}
			lastPercent = percent
			_ = st.UpdateProgress(ctx, job.ID, percent, message)
		}

		result, err := r.Render(ctx, job.ID, req, plan, events, progressSink)
		if err != nil {
			return nil, err
		}

		assetURLs := make(models.JSONMap, len(result.AssetURLs))
		now := time.Now()
		for name, url := range result.AssetURLs {
			meta := assetMeta[name]
			asset := &models.Asset{
				JobID:     job.ID,
				Kind:      meta.kind,
				Mime:      meta.mime,
				Path:      result.AssetKeys[name],
				URL:       url,
				SizeBytes: result.AssetSizes[name],
				CreatedAt: now,
			}
			if err := assets.CreateAsset(ctx, asset); err != nil {
				return nil, err
			}
			assetURLs[name] = url
		}

		return models.JSONMap{
			"plan":   plan,
			"assets": assetURLs,
		}, nil
	}
}

func decodeRequest(params models.JSONMap) (*models.GenerateRequest, error) {
	encoded, err := json.Marshal(map[string]interface{}(params))
	if err != nil {
		return nil, err
	}
	var req models.GenerateRequest
	if err := json.Unmarshal(encoded, &req); err != nil {
		return nil, err
	}
	return &req, nil
}
