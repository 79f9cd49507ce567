// Package audio provides the analysis and cutting backend used to split
// recordings: duration and loudness probes, silence detection, and lossless
// segment extraction.
package audio

import (
	"context"
	"fmt"
	"strings"

	"github.com/maauso/voicecut/internal/split"
)

// VolumeMode selects which loudness statistic is used as the reference level
// for the silence threshold.
type VolumeMode string

const (
	// VolumeMean uses the mean volume of the recording.
	VolumeMean VolumeMode = "mean"
	// VolumeMax uses the peak volume of the recording.
	VolumeMax VolumeMode = "max"
	// VolumeAbs treats the configured threshold delta as an absolute level.
	VolumeAbs VolumeMode = "abs"
)

// IsValid returns true if the mode is one of the known modes.
func (m VolumeMode) IsValid() bool {
	return m == VolumeMean || m == VolumeMax || m == VolumeAbs
}

// ParseVolumeMode converts user input into a VolumeMode.
func ParseVolumeMode(s string) (VolumeMode, error) {
	m := VolumeMode(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", fmt.Errorf("%w: %q (want mean, max or abs)", ErrInvalidVolumeMode, s)
	}
	return m, nil
}

// Backend is the set of external capabilities the splitting pipeline relies on.
type Backend interface {
	// Duration returns the total duration of the recording in seconds.
	Duration(ctx context.Context, path string) (float64, error)

	// ReferenceVolume returns the loudness statistic selected by mode in dB.
	// For VolumeAbs it returns 0 without inspecting the recording.
	ReferenceVolume(ctx context.Context, path string, mode VolumeMode) (float64, error)

	// DetectSilences returns the silence intervals quieter than thresholdDB
	// lasting at least minSilence seconds, in recording order.
	DetectSilences(ctx context.Context, path string, thresholdDB, minSilence float64) ([]split.Silence, error)

	// Cut writes one file per segment into outputDir and returns their paths
	// in segment order. Files are named <prefix>_<NNN><ext>, numbered from 1.
	Cut(ctx context.Context, path string, segments []split.Segment, outputDir, prefix string) ([]string, error)
}
