package sequencer

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musewave/backend/internal/models"
)

func countType(events []models.Event, t models.EventType) int {
	n := 0
	for _, e := range events {
		if e.Type == t {
			n++
		}
	}
	return n
}

func TestEvents_DefaultPatternOneBar(t *testing.T) {
	plan := models.MusicPlan{BPM: 120, DurationSec: 2, DrumPattern: "four-on-the-floor"}
	events := Events(plan)
	require.NotEmpty(t, events)

	assert.True(t, sort.SliceIsSorted(events, func(i, j int) bool { return events[i].TSec < events[j].TSec }))
	assert.Equal(t, 4, countType(events, models.EventKick))
	assert.Equal(t, 2, countType(events, models.EventSnare))
	assert.Equal(t, 8, countType(events, models.EventHat))
	assert.Equal(t, 2, countType(events, models.EventBass))
	assert.Equal(t, 8, countType(events, models.EventLead))
}

func TestEvents_OverridePatternChangesMasks(t *testing.T) {
	plan := models.MusicPlan{BPM: 120, DurationSec: 2, DrumPattern: "808-grid"}
	events := Events(plan)
	// 808-grid's hat mask fires on every step.
	assert.Equal(t, 16, countType(events, models.EventHat))
}

func TestEvents_SwingShiftsSecondEighthOfEachBeat(t *testing.T) {
	plan := models.MusicPlan{BPM: 120, DurationSec: 2, DrumPattern: "boom-bap"}
	events := Events(plan)

	var sawShifted bool
	stepLen := 60.0 / 120.0 / 4
	for _, e := range events {
		remainder := e.TSec / stepLen
		if remainder != float64(int(remainder)) {
			sawShifted = true
			break
		}
	}
	assert.True(t, sawShifted, "expected at least one swung event off the sixteenth-note grid")
}

func TestEvents_Deterministic(t *testing.T) {
	plan := models.MusicPlan{BPM: 95, DurationSec: 30, DrumPattern: "dnb-syncop"}
	a := Events(plan)
	b := Events(plan)
	assert.Equal(t, a, b)
}

func TestEvents_EmptyOnZeroDuration(t *testing.T) {
	assert.Empty(t, Events(models.MusicPlan{BPM: 120, DurationSec: 0}))
}
