package splitter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/maauso/voicecut/internal/audio"
)

// Default split parameters.
const (
	DefaultSegmentLength = 600.0
	DefaultSegmentDelta  = 30.0
	DefaultMinSilenceLen = 0.5

	// DefaultThresholdDelta is relative to the mean or peak volume.
	DefaultThresholdDelta = -4.0
	// DefaultAbsThreshold is the absolute threshold used in abs mode.
	DefaultAbsThreshold = -16.0
)

// Options configures how a recording is split.
type Options struct {
	// SegmentLength is the target segment duration in seconds.
	SegmentLength float64 `validate:"gt=0"`

	// SegmentDelta is the maximum distance in seconds between a uniform cut
	// point and a silence midpoint for the silence to be used instead.
	SegmentDelta float64 `validate:"gte=0"`

	// ThresholdMode selects the reference volume for the silence threshold.
	ThresholdMode audio.VolumeMode `validate:"oneof=mean max abs"`

	// ThresholdDelta is added to the reference volume to get the absolute
	// silence threshold in dB.
	ThresholdDelta float64

	// MinSilenceLen is the minimum silence duration in seconds.
	MinSilenceLen float64 `validate:"gte=0"`
}

// DefaultOptions returns the default options for splitting.
func DefaultOptions() Options {
	return Options{
		SegmentLength:  DefaultSegmentLength,
		SegmentDelta:   DefaultSegmentDelta,
		ThresholdMode:  audio.VolumeMean,
		ThresholdDelta: DefaultThresholdDelta,
		MinSilenceLen:  DefaultMinSilenceLen,
	}
}

// DefaultThresholdFor returns the default threshold delta for the mode.
func DefaultThresholdFor(mode audio.VolumeMode) float64 {
	if mode == audio.VolumeAbs {
		return DefaultAbsThreshold
	}
	return DefaultThresholdDelta
}

var validate = validator.New()

// Validate checks the options and returns an error wrapping ErrInvalidOptions.
func (o Options) Validate() error {
	err := validate.Struct(o)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s, got %v", fe.Field(), fe.Tag(), fe.Param(), fe.Value()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidOptions, strings.Join(msgs, "; "))
}
