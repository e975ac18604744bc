package sequencer

// A pattern is a 16-step mask (sixteenth-note resolution, two bars of 4/4
// at eighth-note granularity folded to one bar) per spec.md §4.4. true
// means "trigger on this step".
type pattern struct {
	kick, snare, hat [16]bool
}

// defaultPattern implements the baseline of §4.4: kick on every beat, snare
// on beats 2 and 4, hat on every eighth.
var defaultPattern = pattern{
	kick:  [16]bool{true, false, false, false, true, false, false, false, true, false, false, false, true, false, false, false},
	snare: [16]bool{false, false, false, false, true, false, false, false, false, false, false, false, true, false, false, false},
	hat:   [16]bool{true, false, true, false, true, false, true, false, true, false, true, false, true, false, true, false},
}

// bassMask fires on beats 1 and 3, unaffected by drum_pattern overrides.
var bassMask = [16]bool{true, false, false, false, false, false, false, false, true, false, false, false, false, false, false, false}

// leadMask fires on every eighth, same positions as the default hat.
var leadMask = defaultPattern.hat

// patternOverrides maps a drum_pattern name to its kick/snare/hat masks,
// per §4.4's "fixed table" of named overrides.
var patternOverrides = map[string]pattern{
	"dnb-syncop": {
		kick:  [16]bool{true, false, false, true, false, false, true, false, false, false, true, false, false, true, false, false},
		snare: [16]bool{false, false, false, false, true, false, false, false, false, false, false, false, true, false, false, true},
		hat:   [16]bool{true, true, false, true, true, false, true, true, false, true, true, false, true, true, false, true},
	},
	"boom-bap": {
		kick:  [16]bool{true, false, false, false, false, false, true, false, false, false, true, false, false, false, false, false},
		snare: [16]bool{false, false, false, false, true, false, false, false, false, false, false, false, true, false, false, false},
		hat:   [16]bool{true, false, true, false, true, false, true, false, true, false, true, false, true, false, true, true},
	},
	"808-grid": {
		kick:  [16]bool{true, false, false, false, true, false, false, false, true, false, false, false, true, false, false, false},
		snare: [16]bool{false, false, false, false, true, false, false, false, false, false, false, false, true, false, false, false},
		hat:   [16]bool{true, true, true, true, true, true, true, true, true, true, true, true, true, true, true, true},
	},
}

// swingByPattern maps drum_pattern to its eighth-note swing amount, since
// MusicPlan does not carry an explicit swing field.
var swingByPattern = map[string]float64{
	"boom-bap":   0.15,
	"dnb-syncop": 0.08,
}
