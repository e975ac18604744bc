// Package sequencer turns a MusicPlan into a strictly time-ordered list of
// one-shot trigger Events, per spec.md §4.4. Pure function, no I/O.
package sequencer

import (
	"sort"

	"github.com/musewave/backend/internal/models"
)

// Events produces the plan's event list. t_sec is non-decreasing across the
// returned slice.
func Events(plan models.MusicPlan) []models.Event {
	if plan.BPM <= 0 || plan.DurationSec <= 0 {
		return nil
	}

	beatLen := 60.0 / float64(plan.BPM)
	stepLen := beatLen / 4 // sixteenth-note resolution
	swing := swingByPattern[plan.DrumPattern]

	p := defaultPattern
	if override, ok := patternOverrides[plan.DrumPattern]; ok {
		p = override
	}

	totalSteps := int(float64(plan.DurationSec) / stepLen)
	events := make([]models.Event, 0, totalSteps)

	for i := 0; i < totalSteps; i++ {
		step := i % 16
		tSec := float64(i) * stepLen
		// Swing shifts every odd-indexed eighth note (step % 4 == 2, the
		// second sixteenth-pair of each beat) by swing*eighthLen.
		if swing > 0 && step%4 == 2 {
			tSec += swing * (stepLen * 2)
		}

		if p.kick[step] {
			events = append(events, models.Event{TSec: tSec, Type: models.EventKick})
		}
		if p.snare[step] {
			events = append(events, models.Event{TSec: tSec, Type: models.EventSnare})
		}
		if p.hat[step] {
			events = append(events, models.Event{TSec: tSec, Type: models.EventHat})
		}
		if bassMask[step] {
			events = append(events, models.Event{TSec: tSec, Type: models.EventBass})
		}
		if leadMask[step] {
			events = append(events, models.Event{TSec: tSec, Type: models.EventLead})
		}
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].TSec < events[j].TSec })
	return events
}
