package models

// GenerateRequest is the body of POST /v1/generate (spec.md §6).
type GenerateRequest struct {
	MusicPrompt       string   `json:"musicPrompt" binding:"required,min=1,max=500"`
	Genres            []string `json:"genres" binding:"required,min=1,max=5"`
	DurationSec       int      `json:"durationSec" binding:"required,min=30,max=120"`
	ArtistInspiration []string `json:"artistInspiration,omitempty" binding:"max=5"`
	Lyrics            string   `json:"lyrics,omitempty" binding:"max=2000"`
	VocalLanguages    []string `json:"vocalLanguages,omitempty"`
	GenerateVideo     bool     `json:"generateVideo,omitempty"`
	VideoStyles       []string `json:"videoStyles,omitempty"`
	Seed              *int64   `json:"seed,omitempty"`
}

// HasVocals reports whether the Renderer's vocals stage should run.
func (r *GenerateRequest) HasVocals() bool {
	return r.Lyrics != ""
}

// HasVideo reports whether the Renderer's video stage should run.
func (r *GenerateRequest) HasVideo() bool {
	return r.GenerateVideo && len(r.VideoStyles) > 0
}
