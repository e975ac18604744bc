package renderer

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ffprobe "gopkg.in/vansante/go-ffprobe.v2"

	"github.com/musewave/backend/internal/models"
	"github.com/musewave/backend/internal/storage"
	"github.com/musewave/backend/internal/transcoder"
)

// fakeGateway never shells out; it writes a minimal valid WAV stub for
// every Run call so the pipeline's file-existence and decode checks pass
// without a real ffmpeg binary on the test machine.
type fakeGateway struct {
	runs int
}

func (f *fakeGateway) Run(_ context.Context, argv []string, _ transcoder.RunOptions) (transcoder.Result, error) {
	f.runs++
	outPath := argv[len(argv)-1]
	if err := writeMinimalWav(outPath); err != nil {
		return transcoder.Result{}, err
	}
	return transcoder.Result{ExitCode: 0}, nil
}

func (f *fakeGateway) ProbeFile(context.Context, string) (*ffprobe.ProbeData, error) {
	return &ffprobe.ProbeData{}, nil
}

// writeMinimalWav writes a tiny valid 44.1kHz mono 16-bit PCM WAV, enough
// to satisfy the decoder-based sanity check.
func writeMinimalWav(path string) error {
	body := make([]byte, 0, 52)
	body = append(body, []byte("RIFF")...)
	body = append(body, le32(36+8)...)
	body = append(body, []byte("WAVE")...)
	body = append(body, []byte("fmt ")...)
	body = append(body, le32(16)...)
	body = append(body, le16(1)...) // PCM
	body = append(body, le16(1)...) // mono
	body = append(body, le32(44100)...)
	body = append(body, le32(44100*2)...)
	body = append(body, le16(2)...)
	body = append(body, le16(16)...)
	body = append(body, []byte("data")...)
	samples := make([]byte, 8) // 4 silent 16-bit samples
	body = append(body, le32(uint32(len(samples)))...)
	body = append(body, samples...)
	return os.WriteFile(path, body, 0644)
}

func le32(v uint32) []byte { return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)} }
func le16(v uint16) []byte { return []byte{byte(v), byte(v >> 8)} }

// fakeStore implements storage.Store in memory.
type fakeStore struct {
	puts map[string]bool
}

var _ storage.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore { return &fakeStore{puts: map[string]bool{}} }

func (s *fakeStore) Put(_ context.Context, key string, _ []byte) (string, int64, error) {
	s.puts[key] = true
	return "https://cdn.test/" + key, 0, nil
}

func (s *fakeStore) PutStream(_ context.Context, key string, r io.Reader) (string, int64, error) {
	n, _ := io.Copy(io.Discard, r)
	s.puts[key] = true
	return "https://cdn.test/" + key, n, nil
}

func (s *fakeStore) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(io.LimitReader(nil, 0)), nil
}

func (s *fakeStore) OpenRange(context.Context, string, int64, int64) (io.ReadCloser, error) {
	return io.NopCloser(io.LimitReader(nil, 0)), nil
}

func (s *fakeStore) Stat(context.Context, string) (storage.Info, error) {
	return storage.Info{}, nil
}

func (s *fakeStore) ResolvePath(string) string { return "" }

func TestRender_FullPipelineShape(t *testing.T) {
	gw := &fakeGateway{}
	store := newFakeStore()
	r := New(gw, store, t.TempDir(), nil)

	plan := models.MusicPlan{
		BPM: 120, Key: "A minor", Scale: models.ScaleMinor,
		DurationSec: 10, DrumPattern: "four-on-the-floor",
		Sections: []models.Section{{Name: "intro", Bars: 8}, {Name: "outro", Bars: 8}},
	}
	req := &models.GenerateRequest{
		MusicPrompt:   "dark synthwave nights",
		Genres:        []string{"synthwave"},
		DurationSec:   10,
		Lyrics:        "these are the lyrics to the song about the night",
		GenerateVideo: true,
		VideoStyles:   []string{VideoStyleLyric},
	}

	events := []models.Event{
		{TSec: 0, Type: models.EventKick},
		{TSec: 0.5, Type: models.EventSnare},
		{TSec: 0, Type: models.EventHat},
		{TSec: 0, Type: models.EventBass},
		{TSec: 0, Type: models.EventLead},
	}

	var percents []int
	result, err := r.Render(context.Background(), "job-1", req, plan, events, func(pct int, _ string) {
		percents = append(percents, pct)
	})
	require.NoError(t, err)

	assert.Contains(t, result.AssetURLs, "preview.wav")
	assert.Contains(t, result.AssetURLs, "mix.wav")
	assert.Contains(t, result.AssetURLs, "vocals.wav")
	assert.Contains(t, result.AssetURLs, "captions.srt")
	assert.Contains(t, result.AssetURLs, "final.mp4")
	assert.Len(t, result.AssetURLs, 5)

	require.NotEmpty(t, percents)
	assert.Equal(t, 100, percents[len(percents)-1])
	for i := 1; i < len(percents); i++ {
		assert.GreaterOrEqual(t, percents[i], percents[i-1], "progress must never decrease")
	}
	assert.Greater(t, gw.runs, 0)
}

func TestRender_NoVocalsNoVideo(t *testing.T) {
	gw := &fakeGateway{}
	store := newFakeStore()
	r := New(gw, store, t.TempDir(), nil)

	plan := models.MusicPlan{BPM: 100, Key: "C major", Scale: models.ScaleMajor, DurationSec: 5, DrumPattern: "four-on-the-floor"}
	req := &models.GenerateRequest{MusicPrompt: "chill", Genres: []string{"lofi"}, DurationSec: 5}
	events := []models.Event{{TSec: 0, Type: models.EventKick}}

	result, err := r.Render(context.Background(), "job-2", req, plan, events, nil)
	require.NoError(t, err)
	assert.Contains(t, result.AssetURLs, "preview.wav")
	assert.Contains(t, result.AssetURLs, "mix.wav")
	assert.NotContains(t, result.AssetURLs, "vocals.wav")
	assert.NotContains(t, result.AssetURLs, "final.mp4")
}
