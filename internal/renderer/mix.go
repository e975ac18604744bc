package renderer

import (
	"fmt"
	"strings"
)

// mixArgv builds an ffmpeg argv that sums len(inputs) mono WAVs with the
// given per-input weights, applies extraFilter (already referencing the
// amix output label "mixed"), and writes a stereo PCM file at outPath.
func mixArgv(inputs []string, weights []float64, extraFilter, outPath string) []string {
	argv := make([]string, 0, len(inputs)*2+8)
	for _, in := range inputs {
		argv = append(argv, "-i", in)
	}

	labels := make([]string, len(inputs))
	for i := range inputs {
		labels[i] = fmt.Sprintf("[%d:a]", i)
	}
	weightStrs := make([]string, len(weights))
	for i, w := range weights {
		weightStrs[i] = fmt.Sprintf("%.2f", w)
	}

	filter := fmt.Sprintf("%samix=inputs=%d:weights=%s:duration=longest[mixed]",
		strings.Join(labels, ""), len(inputs), strings.Join(weightStrs, " "))
	if extraFilter != "" {
		filter += ";[mixed]" + extraFilter + "[out]"
	} else {
		filter += ";[mixed]anull[out]"
	}

	argv = append(argv,
		"-filter_complex", filter,
		"-map", "[out]",
		"-ar", "44100", "-ac", "2", "-c:a", "pcm_s16le",
		"-y", outPath,
	)
	return argv
}

// previewMixArgv implements spec.md §4.5 stage 3: equal-weight sum with
// dynamic range normalization.
func previewMixArgv(stemPaths []string, outPath string) []string {
	weights := make([]float64, len(stemPaths))
	for i := range weights {
		weights[i] = 1.0
	}
	return mixArgv(stemPaths, weights, "dynaudnorm", outPath)
}

// masteredMixArgv implements §4.5 stage 4: weighted sum (drums 0.9, hats
// 0.7, bass 0.7, lead 0.7), limiter at -1 dBTP ceiling, dynamic
// normalization, then loudness normalization to -14 LUFS / LRA 11.
func masteredMixArgv(kick, snare, hat, bass, lead, outPath string) []string {
	inputs := []string{kick, snare, hat, bass, lead}
	weights := []float64{0.9, 0.9, 0.7, 0.7, 0.7}
	chain := "alimiter=limit=0.891,dynaudnorm,loudnorm=I=-14:LRA=11:TP=-1"
	return mixArgv(inputs, weights, chain, outPath)
}

// remixWithVocalsArgv re-sums the already-mastered mix with a vocal track
// at 0.6 weight, per §4.5 stage 5.
func remixWithVocalsArgv(masterPath, vocalsPath, outPath string) []string {
	return mixArgv([]string{masterPath, vocalsPath}, []float64{1.0, 0.6}, "loudnorm=I=-14:LRA=11:TP=-1", outPath)
}

// vocalSynthArgv synthesizes a mono carrier at rootFreq with a three-band
// formant-style EQ (700/1220/2600 Hz), per the open question resolved in
// DESIGN.md: coefficients fixed since the spec only mandates the contract.
func vocalSynthArgv(outPath string, rootFreq float64, durationSec int) []string {
	source := fmt.Sprintf("sine=frequency=%.2f:duration=%d", rootFreq, durationSec)
	filter := "equalizer=f=700:t=q:w=1:g=6," +
		"equalizer=f=1220:t=q:w=1:g=4," +
		"equalizer=f=2600:t=q:w=1:g=3," +
		"vibrato=f=5:d=0.3"
	return []string{
		"-f", "lavfi", "-i", source,
		"-af", filter,
		"-ar", "44100", "-ac", "1", "-y", outPath,
	}
}
