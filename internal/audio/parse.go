package audio

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/maauso/voicecut/internal/split"
)

var (
	silenceStartRe = regexp.MustCompile(`silence_start:\s*(-?[0-9.]+)`)
	silenceEndRe   = regexp.MustCompile(`silence_end:\s*(-?[0-9.]+)\s*\|`)
)

// probeOutput mirrors the part of `ffprobe -of json` output we read.
// ffprobe reports format.duration as a string; a bare number is accepted too.
type probeOutput struct {
	Format *struct {
		Duration json.RawMessage `json:"duration"`
	} `json:"format"`
}

// parseDuration extracts format.duration from ffprobe JSON output.
func parseDuration(output []byte) (float64, error) {
	var probe probeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return 0, fmt.Errorf("%w: decode ffprobe json: %w", ErrProtocol, err)
	}
	if probe.Format == nil || len(probe.Format.Duration) == 0 {
		return 0, fmt.Errorf("%w: ffprobe output has no format.duration", ErrProtocol)
	}

	raw := strings.Trim(string(probe.Format.Duration), `"`)
	duration, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: parse duration %q: %w", ErrProtocol, raw, err)
	}
	return duration, nil
}

// parseVolume finds the single "<mode>_volume: <dB>" line in volumedetect output.
func parseVolume(output string, mode VolumeMode) (float64, error) {
	re := regexp.MustCompile(regexp.QuoteMeta(string(mode)) + `_volume:\s*(-?[0-9.]+)`)

	matches := re.FindAllStringSubmatch(output, -1)
	if len(matches) != 1 {
		return 0, fmt.Errorf("%w: expected one %s_volume line, found %d", ErrProtocol, mode, len(matches))
	}

	volume, err := strconv.ParseFloat(matches[0][1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: parse %s_volume %q: %w", ErrProtocol, mode, matches[0][1], err)
	}
	return volume, nil
}

// parseSilenceOutput pairs silencedetect start and end markers in order.
// A trailing start without an end (silence running to EOF on older ffmpeg
// builds) is dropped.
func parseSilenceOutput(output string) ([]split.Silence, error) {
	starts, err := collectFloats(silenceStartRe, output)
	if err != nil {
		return nil, err
	}
	ends, err := collectFloats(silenceEndRe, output)
	if err != nil {
		return nil, err
	}

	n := min(len(starts), len(ends))
	silences := make([]split.Silence, 0, n)
	for i := 0; i < n; i++ {
		// silencedetect can report a slightly negative start for leading silence
		silences = append(silences, split.Silence{
			Start: max(starts[i], 0),
			End:   ends[i],
		})
	}
	return silences, nil
}

func collectFloats(re *regexp.Regexp, output string) ([]float64, error) {
	var values []float64
	for _, m := range re.FindAllStringSubmatch(output, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: parse %q: %w", ErrProtocol, m[0], err)
		}
		values = append(values, v)
	}
	return values, nil
}
