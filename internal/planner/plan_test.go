package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musewave/backend/internal/models"
)

func seedPtr(v int64) *int64 { return &v }

func TestPlan_Determinism(t *testing.T) {
	req := &models.GenerateRequest{
		MusicPrompt: "dreamy synthwave nights",
		Genres:      []string{"synthwave"},
		DurationSec: 60,
		Seed:        seedPtr(5),
	}

	plan, err := Plan(req)
	require.NoError(t, err)

	assert.Equal(t, 120, plan.BPM)
	assert.Equal(t, "dreamy", plan.Mood)
	assert.Equal(t, models.ScaleMajor, plan.Scale)
	assert.Contains(t, moodKeys["dreamy"], plan.Key)
	require.NotEmpty(t, plan.Sections)
	assert.Equal(t, "intro", plan.Sections[0].Name)
	assert.Equal(t, "outro", plan.Sections[len(plan.Sections)-1].Name)
	assert.Equal(t, chordTemplates["dreamy:major"], plan.ChordsBySection["intro"])

	again, err := Plan(req)
	require.NoError(t, err)
	assert.Equal(t, plan, again)
}

func TestPlan_SeedDerivedFromRequestWhenAbsent(t *testing.T) {
	req := &models.GenerateRequest{
		MusicPrompt: "melancholic lofi evening",
		Genres:      []string{"lofi"},
		DurationSec: 45,
	}

	a, err := Plan(req)
	require.NoError(t, err)
	b, err := Plan(req)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotZero(t, a.Seed)
}

func TestPlan_GenreOverrideForcesPentatonicScale(t *testing.T) {
	req := &models.GenerateRequest{
		MusicPrompt: "chill lofi study session",
		Genres:      []string{"lofi"},
		DurationSec: 40,
		Seed:        seedPtr(1),
	}
	plan, err := Plan(req)
	require.NoError(t, err)
	assert.Equal(t, models.ScalePentatonic, plan.Scale)
}

func TestPlan_InvalidDuration(t *testing.T) {
	req := &models.GenerateRequest{
		MusicPrompt: "anything",
		Genres:      []string{"pop"},
		DurationSec: 29,
	}
	_, err := Plan(req)
	require.Error(t, err)
}

func TestPlan_EmptyGenres(t *testing.T) {
	req := &models.GenerateRequest{
		MusicPrompt: "anything",
		Genres:      []string{},
		DurationSec: 60,
	}
	_, err := Plan(req)
	require.Error(t, err)
}

func TestPlan_UnknownVocalLanguage(t *testing.T) {
	req := &models.GenerateRequest{
		MusicPrompt:    "anything",
		Genres:         []string{"pop"},
		DurationSec:    60,
		VocalLanguages: []string{"klingon"},
	}
	_, err := Plan(req)
	require.Error(t, err)
}

func TestPlan_UnknownGenreDefaultsBPM(t *testing.T) {
	req := &models.GenerateRequest{
		MusicPrompt: "anything",
		Genres:      []string{"polka"},
		DurationSec: 60,
		Seed:        seedPtr(5),
	}
	plan, err := Plan(req)
	require.NoError(t, err)
	assert.Equal(t, 120, plan.BPM)
}
