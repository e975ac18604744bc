package renderer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/musewave/backend/internal/models"
)

// groupEvents buckets events by type, preserving their TSec order.
func groupEvents(events []models.Event) map[models.EventType][]models.Event {
	out := map[models.EventType][]models.Event{}
	for _, e := range events {
		out[e.Type] = append(out[e.Type], e)
	}
	for _, bucket := range out {
		sort.SliceStable(bucket, func(i, j int) bool { return bucket[i].TSec < bucket[j].TSec })
	}
	return out
}

// concatPlan describes the list of segments (alternating silence and
// one-shot copies) the concat demuxer will stitch into a full-length stem,
// per spec.md §4.5 stage 2 ("generate a delayed copy of the one-shot and
// concatenate via the transcoder's concat demuxer").
type concatSegment struct {
	path     string
	silence  bool
	duration float64
}

func buildConcatPlan(oneShotPath string, oneShotDur float64, events []models.Event, durationSec int) []concatSegment {
	var segments []concatSegment
	pos := 0.0
	for _, e := range events {
		gap := e.TSec - pos
		if gap > 0.001 {
			segments = append(segments, concatSegment{silence: true, duration: gap})
			pos += gap
		}
		segments = append(segments, concatSegment{path: oneShotPath, duration: oneShotDur})
		pos += oneShotDur
	}
	if trailing := float64(durationSec) - pos; trailing > 0.001 {
		segments = append(segments, concatSegment{silence: true, duration: trailing})
	}
	return segments
}

func writeConcatList(listPath string, paths []string) error {
	f, err := os.Create(listPath)
	if err != nil {
		return err
	}
	defer f.Close()
	for _, p := range paths {
		if _, err := fmt.Fprintf(f, "file '%s'\n", p); err != nil {
			return err
		}
	}
	return nil
}

func concatArgv(listPath, outPath string) []string {
	return []string{
		"-f", "concat", "-safe", "0", "-i", listPath,
		"-ar", "44100", "-ac", "1", "-y", outPath,
	}
}

// stemDir returns the scratch-dir path for one event type's one-shot and
// concat artifacts.
func stemDir(scratchDir string, et models.EventType) string {
	return filepath.Join(scratchDir, string(et))
}
