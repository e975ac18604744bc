package renderer

import "fmt"

const (
	VideoStyleLyric     = "Lyric Video"
	VideoStyleOfficial  = "Official Music Video"
	VideoStyleVisualizer = "Abstract Visualizer"
)

// videoArgv builds one of the three filter graphs named in spec.md §4.5
// stage 6, always producing H.264/AAC MP4 at 1280x720, yuv420p, 30fps.
func videoArgv(style, mixPath, captionsPath, outPath string) []string {
	var videoFilter string
	switch style {
	case VideoStyleLyric:
		videoFilter = fmt.Sprintf(
			"color=c=black:s=1280x720:r=30,subtitles=%s:force_style='Fontsize=28,PrimaryColour=&HFFFFFF&'",
			captionsPath,
		)
	case VideoStyleVisualizer:
		videoFilter = "showspectrum=s=1280x720:mode=combined:color=rainbow:scale=log,format=yuv420p"
	default: // Official Music Video and any other style: waveform
		videoFilter = "showwaves=s=1280x720:mode=cline:colors=white,format=yuv420p"
	}

	var argv []string
	switch style {
	case VideoStyleLyric:
		argv = []string{
			"-f", "lavfi", "-i", videoFilter,
			"-i", mixPath,
			"-shortest",
		}
	default:
		argv = []string{
			"-i", mixPath,
			"-filter_complex", fmt.Sprintf("[0:a]%s[v]", videoFilter),
			"-map", "[v]", "-map", "0:a",
		}
	}

	argv = append(argv,
		"-c:v", "libx264", "-pix_fmt", "yuv420p",
		"-r", "30", "-s", "1280x720",
		"-c:a", "aac", "-b:a", "192k",
		"-y", outPath,
	)
	return argv
}
