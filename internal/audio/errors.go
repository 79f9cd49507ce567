package audio

import (
	"errors"
	"fmt"
	"strings"
)

// Static errors for backend operations.
var (
	// ErrBackendUnavailable is returned when ffmpeg or ffprobe cannot be executed.
	ErrBackendUnavailable = errors.New("audio backend unavailable")
	// ErrProtocol is returned when backend output does not have the expected shape.
	ErrProtocol = errors.New("unexpected backend output")
	// ErrInvalidVolumeMode is returned for an unknown threshold mode.
	ErrInvalidVolumeMode = errors.New("invalid silence threshold mode")
	// ErrNoSegments is returned when Cut is called without segments.
	ErrNoSegments = errors.New("no segments provided")
)

// FFmpegError represents a failed ffmpeg or ffprobe run, including its stderr output.
// Error reports only the last stderr line; the full output stays in Stderr.
type FFmpegError struct {
	Tool   string
	Args   []string
	Stderr string
	Err    error
}

func (e *FFmpegError) Error() string {
	msg := fmt.Sprintf("%s error: %v", e.Tool, e.Err)
	if line := lastLine(e.Stderr); line != "" {
		msg += ": " + line
	}
	return msg
}

func (e *FFmpegError) Unwrap() error {
	return e.Err
}

// CutError reports the segment that could not be written.
type CutError struct {
	Index  int
	Output string
	Err    error
}

func (e *CutError) Error() string {
	return fmt.Sprintf("cut segment %d (%s): %v", e.Index+1, e.Output, e.Err)
}

func (e *CutError) Unwrap() error {
	return e.Err
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
