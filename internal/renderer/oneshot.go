package renderer

import (
	"fmt"
	"math"

	"github.com/musewave/backend/internal/models"
)

// oneShotSpec describes how to synthesize a single short sample for a stem
// type, per spec.md §4.5 stage 1 (sine/noise source → envelope + EQ → WAV).
type oneShotSpec struct {
	durationSec float64
	argv        func(outPath string, rootFreq float64) []string
}

// rootFrequency converts the plan's key root (e.g. "A minor") to an
// approximate fundamental in Hz, anchored on A3=220Hz, used by bass/lead
// one-shots and the vocal carrier.
func rootFrequency(key string) float64 {
	notes := map[byte]int{'C': -9, 'D': -7, 'E': -5, 'F': -4, 'G': -2, 'A': 0, 'B': 2}
	if len(key) == 0 {
		return 220
	}
	semis, ok := notes[key[0]]
	if !ok {
		return 220
	}
	if len(key) > 1 && key[1] == '#' {
		semis++
	}
	return 220 * math.Pow(2, float64(semis)/12)
}

func oneShotSpecFor(eventType models.EventType, rootFreq float64) oneShotSpec {
	switch eventType {
	case models.EventKick:
		return oneShotSpec{
			durationSec: 0.25,
			argv: func(outPath string, _ float64) []string {
				return []string{
					"-f", "lavfi", "-i", "sine=frequency=60:duration=0.25",
					"-af", "afade=t=out:st=0:d=0.25,volume=2.0",
					"-ar", "44100", "-ac", "1", "-y", outPath,
				}
			},
		}
	case models.EventSnare:
		return oneShotSpec{
			durationSec: 0.18,
			argv: func(outPath string, _ float64) []string {
				return []string{
					"-f", "lavfi", "-i", "anoisesrc=d=0.18:color=white",
					"-af", "bandpass=f=1800:w=1200,afade=t=out:st=0:d=0.18",
					"-ar", "44100", "-ac", "1", "-y", outPath,
				}
			},
		}
	case models.EventHat:
		return oneShotSpec{
			durationSec: 0.08,
			argv: func(outPath string, _ float64) []string {
				return []string{
					"-f", "lavfi", "-i", "anoisesrc=d=0.08:color=white",
					"-af", "highpass=f=7000,afade=t=out:st=0:d=0.08",
					"-ar", "44100", "-ac", "1", "-y", outPath,
				}
			},
		}
	case models.EventBass:
		return oneShotSpec{
			durationSec: 0.3,
			argv: func(outPath string, rootFreq float64) []string {
				return []string{
					"-f", "lavfi", "-i", fmt.Sprintf("sine=frequency=%.2f:duration=0.3", rootFreq/2),
					"-af", "afade=t=out:st=0:d=0.3,lowpass=f=400",
					"-ar", "44100", "-ac", "1", "-y", outPath,
				}
			},
		}
	default: // models.EventLead
		return oneShotSpec{
			durationSec: 0.2,
			argv: func(outPath string, rootFreq float64) []string {
				return []string{
					"-f", "lavfi", "-i", fmt.Sprintf("sine=frequency=%.2f:duration=0.2", rootFreq*2),
					"-af", "afade=t=out:st=0:d=0.2,aecho=0.8:0.7:40:0.3",
					"-ar", "44100", "-ac", "1", "-y", outPath,
				}
			},
		}
	}
}

func silenceArgv(outPath string, durationSec float64) []string {
	return []string{
		"-f", "lavfi", "-i", fmt.Sprintf("anullsrc=r=44100:cl=mono:d=%.4f", durationSec),
		"-ar", "44100", "-ac", "1", "-y", outPath,
	}
}
