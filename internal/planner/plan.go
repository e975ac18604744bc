// Package planner derives a deterministic MusicPlan from a generate
// request: same request (or same explicit seed) always yields a
// structurally-equal plan, per spec.md §4.3 and §8's determinism law. It
// performs no I/O and consults no wall-clock.
package planner

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/musewave/backend/internal/canon"
	apperrors "github.com/musewave/backend/internal/errors"
	"github.com/musewave/backend/internal/models"
)

// Plan derives a MusicPlan from req. It is pure: identical input (including
// an explicit req.Seed) always produces an identical output.
func Plan(req *models.GenerateRequest) (models.MusicPlan, error) {
	if err := validate(req); err != nil {
		return models.MusicPlan{}, err
	}

	seed := deriveSeed(req)
	mood := detectMood(req.MusicPrompt)
	key := selectKey(mood, seed)
	scale := deriveScale(key, req.Genres)
	profile := weightedProfile(req.Genres)

	bpm := clamp(profile.bpm+jitter(seed, 11, 5), 60, 200)
	sections := buildStructure(bpm, req.DurationSec)
	chords := buildChordGrid(sections, mood, scale)

	plan := models.MusicPlan{
		Seed:            seed,
		BPM:             bpm,
		Key:             key,
		Scale:           scale,
		Sections:        sections,
		ChordsBySection: chords,
		DurationSec:     req.DurationSec,
		DrumPattern:     profile.drumPattern,
		BassStyle:       profile.bassStyle,
		Energy:          profile.energy,
		Reverb:          profile.reverb,
		Distortion:      profile.distortion,
		Mood:            mood,
	}
	return plan, nil
}

func validate(req *models.GenerateRequest) error {
	if req.DurationSec < 30 || req.DurationSec > 120 {
		return apperrors.InvalidRequestError("durationSec", "must be between 30 and 120 seconds")
	}
	if strings.TrimSpace(req.MusicPrompt) == "" {
		return apperrors.InvalidRequestError("musicPrompt", "must not be empty")
	}
	if len(req.Genres) == 0 {
		return apperrors.InvalidRequestError("genres", "must contain at least one genre")
	}
	for _, lang := range req.VocalLanguages {
		if !knownVocalLanguages[strings.ToLower(lang)] {
			return apperrors.InvalidRequestError("vocalLanguages", fmt.Sprintf("unknown vocal language %q", lang))
		}
	}
	return nil
}

var knownVocalLanguages = map[string]bool{
	"en": true, "es": true, "fr": true, "de": true, "ja": true, "pt": true,
}

// deriveSeed returns req.Seed if set, else the first 32 bits of
// SHA-256(canonical(req)) per §4.3's Determinism paragraph.
func deriveSeed(req *models.GenerateRequest) int64 {
	if req.Seed != nil {
		return *req.Seed
	}
	encoded, err := canon.Marshal(req)
	if err != nil {
		return 0
	}
	sum := sha256.Sum256(encoded)
	return int64(binary.BigEndian.Uint32(sum[:4]))
}

// jitter derives a deterministic offset in [-spread, spread] from seed.
func jitter(seed int64, modulus, spread int64) int {
	v := seed % modulus
	if v < 0 {
		v += modulus
	}
	return int(v - spread)
}

func detectMood(prompt string) string {
	lower := strings.ToLower(prompt)
	for _, mood := range moodOrder {
		for _, word := range moodKeywords[mood] {
			if strings.Contains(lower, word) {
				return mood
			}
		}
	}
	return defaultMood
}

func selectKey(mood string, seed int64) string {
	keys, ok := moodKeys[mood]
	if !ok || len(keys) == 0 {
		keys = moodKeys[defaultMood]
	}
	idx := seed % int64(len(keys))
	if idx < 0 {
		idx += int64(len(keys))
	}
	return keys[idx]
}

func deriveScale(key string, genres []string) models.Scale {
	for _, g := range genres {
		switch strings.ToLower(g) {
		case "blues", "jazz":
			return models.ScaleBlues
		case "lofi", "hip-hop", "ambient":
			return models.ScalePentatonic
		}
	}
	if strings.HasSuffix(key, "minor") {
		return models.ScaleMinor
	}
	return models.ScaleMajor
}

type weighted struct {
	bpm                              int
	energy, reverb, distortion       float64
	drumPattern, bassStyle           string
}

// weightedProfile computes the position-weighted mean of the genre table
// entries for req.Genres (weight = 1/(i+1), normalized), per §4.3 steps 1
// and 6. The drum pattern and bass style are taken from the
// highest-weighted (first-listed) genre, per the tie-breaking rule in
// §4.3's closing paragraph.
func weightedProfile(genres []string) weighted {
	var totalWeight, bpmSum, energySum, reverbSum, distSum float64
	for i, g := range genres {
		profile, ok := genreTable[strings.ToLower(g)]
		if !ok {
			profile = defaultGenreProfile
		}
		weight := 1.0 / float64(i+1)
		totalWeight += weight
		bpmSum += weight * float64(profile.BPMLo+profile.BPMHi) / 2
		energySum += weight * profile.Energy
		reverbSum += weight * profile.Reverb
		distSum += weight * profile.Dist
	}
	if totalWeight == 0 {
		totalWeight = 1
	}

	first, ok := genreTable[strings.ToLower(genres[0])]
	if !ok {
		first = defaultGenreProfile
	}

	return weighted{
		bpm:         int(bpmSum / totalWeight),
		energy:      round2(energySum / totalWeight),
		reverb:      round2(reverbSum / totalWeight),
		distortion:  round2(distSum / totalWeight),
		drumPattern: first.DrumPattern,
		bassStyle:   first.BassType,
	}
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// buildStructure walks the fixed section budget of §4.3 step 4: always
// begins with intro, greedily appends the remaining entries while seconds
// remain, and always emits a final outro even if truncated.
func buildStructure(bpm, durationSec int) []models.Section {
	secPerBar := 240.0 / float64(bpm)
	threshold := secPerBar * 4
	remaining := float64(durationSec)

	body := structureOrder[:len(structureOrder)-1]
	outro := structureOrder[len(structureOrder)-1]

	var sections []models.Section
	for _, entry := range body {
		blockDur := float64(entry.bars) * secPerBar
		if entry.optional && remaining < blockDur*1.5 {
			continue
		}
		if remaining < threshold {
			break
		}
		sections = append(sections, models.Section{Name: entry.name, Bars: entry.bars})
		remaining -= blockDur
	}

	outroBars := outro.bars
	outroBlockDur := float64(outro.bars) * secPerBar
	if remaining < outroBlockDur {
		outroBars = maxInt(1, int(remaining/secPerBar))
	}
	sections = append(sections, models.Section{Name: outro.name, Bars: outroBars})
	return sections
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// buildChordGrid looks up the (mood, scale) chord template and applies it
// to every section in the plan, per §4.3 step 5.
func buildChordGrid(sections []models.Section, mood string, scale models.Scale) map[string][]string {
	template, ok := chordTemplates[mood+":"+string(scale)]
	if !ok {
		template = defaultChordTemplate
	}
	out := make(map[string][]string, len(sections))
	for _, s := range sections {
		out[s.Name] = template
	}
	return out
}
