package renderer

// anchor reports the base percent for a named pipeline stage and, for the
// per-stem render stage, the width of its band — per spec.md §4.5's
// progress anchor points (plan 5, segments 10, sequencing 25, per-stem
// 25..65, mixing 70, vocals 80, video 88, upload 94, done 100).
type anchor struct {
	base, width int
}

var anchors = map[string]anchor{
	"plan":       {base: 5},
	"segments":   {base: 10},
	"sequencing": {base: 25},
	"stems":      {base: 25, width: 40}, // 25..65
	"mixing":     {base: 70},
	"vocals":     {base: 80},
	"video":      {base: 88},
	"upload":     {base: 94},
	"done":       {base: 100},
}

// stemPercent linearly maps the completion fraction of the per-stem render
// stage (doneCount/total) into its 25..65 band.
func stemPercent(doneCount, total int) int {
	a := anchors["stems"]
	if total <= 0 {
		return a.base
	}
	return a.base + (a.width*doneCount)/total
}

// mapIntoBand linearly maps a child percent (0..100) reported by the
// Transcoder Gateway into the named stage's band, per §4.5's final
// paragraph ("If the Transcoder Gateway reports finer-grained progress
// within a stage, the Renderer linearly maps it into that stage's band").
func mapIntoBand(stage string, childPercent int) int {
	a, ok := anchors[stage]
	if !ok {
		return childPercent
	}
	width := a.width
	if width == 0 {
		width = 5
	}
	return a.base + (width*childPercent)/100
}
