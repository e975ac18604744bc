package renderer

import (
	"os"

	"github.com/go-audio/wav"

	apperrors "github.com/musewave/backend/internal/errors"
)

// validateWav performs the renderer's cheap in-process sanity check: the
// file decodes as a valid WAV with a non-zero frame count, before the
// pipeline proceeds to the next stage. Sample rate is not checked here. The
// only ffprobe pass (Transcoder Gateway ProbeFile) is on final.mp4, and the
// Renderer only requires it to succeed; the mix is not probed.
func validateWav(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return apperrors.AssetNotProduced(path)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return apperrors.AssetNotProduced(path)
	}
	pcm, err := decoder.FullPCMBuffer()
	if err != nil || pcm == nil || len(pcm.Data) == 0 {
		return apperrors.AssetNotProduced(path)
	}
	return nil
}

func nonEmptyFile(path string) error {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return apperrors.AssetNotProduced(path)
	}
	return nil
}
