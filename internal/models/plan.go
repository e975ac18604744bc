package models

// Scale is the tonal scale a MusicPlan is built on.
type Scale string

const (
	ScaleMajor      Scale = "major"
	ScaleMinor      Scale = "minor"
	ScaleBlues      Scale = "blues"
	ScalePentatonic Scale = "pentatonic"
)

// Section is one named structural block of a plan (intro, verse, ...).
type Section struct {
	Name string `json:"name"`
	Bars int    `json:"bars"`
}

// MusicPlan is the deterministic output of the Planner: same request and
// seed always yield a structurally-equal plan (spec.md §4.3, §8).
type MusicPlan struct {
	Seed            int64               `json:"seed"`
	BPM             int                 `json:"bpm"`
	Key             string              `json:"key"`
	Scale           Scale               `json:"scale"`
	Sections        []Section           `json:"sections"`
	ChordsBySection map[string][]string `json:"chordsBySection"`
	DurationSec     int                 `json:"durationSec"`
	DrumPattern     string              `json:"drumPattern"`
	BassStyle       string              `json:"bassStyle"`
	Energy          float64             `json:"energy"`
	Reverb          float64             `json:"reverb"`
	Distortion      float64             `json:"distortion"`
	Mood            string              `json:"mood"`
}

// EventType enumerates the kinds of sequenced one-shot triggers.
type EventType string

const (
	EventKick  EventType = "kick"
	EventSnare EventType = "snare"
	EventHat   EventType = "hat"
	EventBass  EventType = "bass"
	EventLead  EventType = "lead"
)

// Event is one scheduled one-shot trigger produced by the Sequencer. Events
// are ordered by TSec non-decreasing and never carry side effects.
type Event struct {
	TSec  float64   `json:"tSec"`
	Type  EventType `json:"type"`
	Pitch *int      `json:"pitch,omitempty"`
}
