package renderer

import (
	"fmt"
	"os"
	"strings"
)

// buildCaptions splits lyrics into chunks of wordsPerChunk words and
// distributes them evenly across durationSec, emitting SubRip-format
// timestamps per spec.md §4.5 stage 5 and §6.
func buildCaptions(lyrics string, durationSec int, wordsPerChunk int) string {
	if wordsPerChunk <= 0 {
		wordsPerChunk = 6
	}
	words := strings.Fields(lyrics)
	if len(words) == 0 {
		return ""
	}

	var chunks []string
	for i := 0; i < len(words); i += wordsPerChunk {
		end := i + wordsPerChunk
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}

	step := float64(durationSec) / float64(len(chunks))
	var b strings.Builder
	for i, chunk := range chunks {
		start := float64(i) * step
		end := start + step
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, srtTimestamp(start), srtTimestamp(end), chunk)
	}
	return b.String()
}

func srtTimestamp(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	totalMs := int64(sec * 1000)
	ms := totalMs % 1000
	totalSec := totalMs / 1000
	s := totalSec % 60
	totalMin := totalSec / 60
	m := totalMin % 60
	h := totalMin / 60
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

func writeCaptionsFile(path, srt string) error {
	return os.WriteFile(path, []byte(srt), 0644)
}
