package planner

// genreProfile is one row of the fixed genre table §4.3 step 1/6 refers to.
type genreProfile struct {
	BPMLo, BPMHi          int
	Energy, Reverb, Dist  float64
	DrumPattern, BassType string
}

var genreTable = map[string]genreProfile{
	"synthwave": {BPMLo: 115, BPMHi: 125, Energy: 0.6, Reverb: 0.5, Dist: 0.1, DrumPattern: "four-on-the-floor", BassType: "pulse"},
	"lofi":      {BPMLo: 70, BPMHi: 90, Energy: 0.3, Reverb: 0.4, Dist: 0.05, DrumPattern: "boom-bap", BassType: "sub"},
	"hip-hop":   {BPMLo: 80, BPMHi: 100, Energy: 0.55, Reverb: 0.2, Dist: 0.15, DrumPattern: "boom-bap", BassType: "syncopated"},
	"ambient":   {BPMLo: 60, BPMHi: 80, Energy: 0.2, Reverb: 0.7, Dist: 0.0, DrumPattern: "four-on-the-floor", BassType: "pad"},
	"dnb":       {BPMLo: 160, BPMHi: 180, Energy: 0.9, Reverb: 0.3, Dist: 0.2, DrumPattern: "dnb-syncop", BassType: "sub"},
	"house":     {BPMLo: 120, BPMHi: 128, Energy: 0.7, Reverb: 0.3, Dist: 0.1, DrumPattern: "808-grid", BassType: "pulse"},
	"techno":    {BPMLo: 125, BPMHi: 150, Energy: 0.8, Reverb: 0.25, Dist: 0.2, DrumPattern: "808-grid", BassType: "pulse"},
	"rock":      {BPMLo: 100, BPMHi: 140, Energy: 0.8, Reverb: 0.2, Dist: 0.5, DrumPattern: "four-on-the-floor", BassType: "walking"},
	"jazz":      {BPMLo: 80, BPMHi: 140, Energy: 0.5, Reverb: 0.35, Dist: 0.05, DrumPattern: "four-on-the-floor", BassType: "walking"},
	"blues":     {BPMLo: 60, BPMHi: 120, Energy: 0.5, Reverb: 0.3, Dist: 0.2, DrumPattern: "four-on-the-floor", BassType: "walking"},
	"cinematic": {BPMLo: 60, BPMHi: 100, Energy: 0.5, Reverb: 0.6, Dist: 0.0, DrumPattern: "four-on-the-floor", BassType: "pad"},
	"pop":       {BPMLo: 100, BPMHi: 128, Energy: 0.65, Reverb: 0.25, Dist: 0.1, DrumPattern: "four-on-the-floor", BassType: "pulse"},
}

var defaultGenreProfile = genreProfile{BPMLo: 120, BPMHi: 120, Energy: 0.5, Reverb: 0.3, Dist: 0.1, DrumPattern: "four-on-the-floor", BassType: "pulse"}

// moodKeywords maps a mood to the words a prompt is scanned for, in table
// order; the first mood with a hit wins.
var moodOrder = []string{"uplifting", "melancholic", "aggressive", "dreamy", "cinematic", "dark", "chill"}

var moodKeywords = map[string][]string{
	"uplifting":   {"uplifting", "happy", "joyful", "joy", "bright", "euphoric", "sunny"},
	"melancholic": {"melancholic", "sad", "bittersweet", "longing", "wistful", "somber"},
	"aggressive":  {"aggressive", "angry", "intense", "hard", "heavy", "brutal"},
	"dreamy":      {"dreamy", "ethereal", "float", "floating", "hazy", "dream", "nights", "night"},
	"cinematic":   {"cinematic", "epic", "orchestral", "trailer", "soundtrack"},
	"dark":        {"dark", "ominous", "shadow", "shadows", "horror", "grim"},
	"chill":       {"chill", "relax", "relaxed", "lofi", "calm", "mellow"},
}

const defaultMood = "chill"

// moodKeys maps a mood to its candidate keys; scale is derived from the
// label itself (§4.3 step 3) unless a genre override applies.
var moodKeys = map[string][]string{
	"uplifting":   {"C major", "G major", "D major"},
	"melancholic": {"A minor", "D minor", "E minor"},
	"aggressive":  {"E minor", "B minor", "F# minor"},
	"dreamy":      {"A major", "F# major", "E major"},
	"cinematic":   {"D minor", "C minor", "G minor"},
	"dark":        {"D minor", "F minor", "C minor"},
	"chill":       {"C major", "A minor", "F major"},
}

// chordTemplates maps (mood, scale) to a chord-degree progression applied
// to every section of a plan (§4.3 step 5).
var chordTemplates = map[string][]string{
	"uplifting:major":   {"I", "V", "vi", "IV"},
	"melancholic:minor": {"i", "VI", "III", "VII"},
	"aggressive:minor":  {"i", "VII", "VI", "V"},
	"dreamy:major":      {"Imaj7", "vi7", "IV", "V"},
	"cinematic:minor":   {"i", "iv", "VI", "V"},
	"dark:minor":        {"i", "iv", "v", "i"},
	"chill:major":       {"I", "IV", "I", "V"},
	"chill:minor":       {"i", "iv", "v", "i"},
	"chill:blues":       {"I7", "IV7", "I7", "V7"},
	"chill:pentatonic":  {"i", "VII", "IV", "i"},
}

var defaultChordTemplate = []string{"I", "IV", "V", "I"}

// sectionPlan is one entry in the fixed structure walk of §4.3 step 4.
type sectionPlan struct {
	name     string
	bars     int
	optional bool
}

var structureOrder = []sectionPlan{
	{name: "intro", bars: 8, optional: false},
	{name: "verse", bars: 16, optional: false},
	{name: "chorus", bars: 8, optional: false},
	{name: "verse", bars: 16, optional: true},
	{name: "chorus", bars: 8, optional: false},
	{name: "bridge", bars: 8, optional: true},
	{name: "breakdown", bars: 8, optional: true},
	{name: "chorus", bars: 8, optional: false},
	{name: "outro", bars: 8, optional: false},
}
