package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/maauso/voicecut/internal/split"
)

// Verify interface implementation at compile time.
var _ Backend = (*FFmpegBackend)(nil)

// commandRunner executes an external command and returns its captured output.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// osCommandRunner runs commands with os/exec.
type osCommandRunner struct{}

func (osCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	// #nosec G204 - binary paths come from configuration, not user input
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// FFmpegBackend implements Backend using the ffmpeg and ffprobe CLIs.
type FFmpegBackend struct {
	ffmpegPath  string
	ffprobePath string
	cmd         commandRunner
}

// Option configures an FFmpegBackend.
type Option func(*FFmpegBackend)

// WithCommandRunner replaces the process runner, mainly for tests.
func WithCommandRunner(r commandRunner) Option {
	return func(b *FFmpegBackend) {
		b.cmd = r
	}
}

// NewFFmpegBackend creates a new FFmpegBackend.
// Empty paths default to "ffmpeg" and "ffprobe" found in PATH.
func NewFFmpegBackend(ffmpegPath, ffprobePath string, opts ...Option) *FFmpegBackend {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}

	b := &FFmpegBackend{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		cmd:         osCommandRunner{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Duration implements Backend.Duration using ffprobe's JSON format output.
func (b *FFmpegBackend) Duration(ctx context.Context, path string) (float64, error) {
	stdout, _, err := b.run(ctx, b.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	)
	if err != nil {
		return 0, err
	}
	return parseDuration(stdout)
}

// ReferenceVolume implements Backend.ReferenceVolume using the volumedetect filter.
func (b *FFmpegBackend) ReferenceVolume(ctx context.Context, path string, mode VolumeMode) (float64, error) {
	if !mode.IsValid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidVolumeMode, mode)
	}
	if mode == VolumeAbs {
		return 0, nil
	}

	// ffmpeg writes filter statistics to stderr
	_, stderr, err := b.run(ctx, b.ffmpegPath,
		"-hide_banner",
		"-i", path,
		"-af", "volumedetect",
		"-f", "null", "-",
	)
	if err != nil {
		return 0, err
	}
	return parseVolume(string(stderr), mode)
}

// DetectSilences implements Backend.DetectSilences using the silencedetect filter.
func (b *FFmpegBackend) DetectSilences(ctx context.Context, path string, thresholdDB, minSilence float64) ([]split.Silence, error) {
	filter := fmt.Sprintf("silencedetect=noise=%sdB:d=%s", formatFloat(thresholdDB), formatFloat(minSilence))

	_, stderr, err := b.run(ctx, b.ffmpegPath,
		"-hide_banner",
		"-i", path,
		"-af", filter,
		"-f", "null", "-",
	)
	if err != nil {
		return nil, err
	}
	return parseSilenceOutput(string(stderr))
}

// Cut implements Backend.Cut by stream-copying each segment (no re-encoding).
// It stops at the first failing segment; files already written are left in place.
func (b *FFmpegBackend) Cut(ctx context.Context, path string, segments []split.Segment, outputDir, prefix string) ([]string, error) {
	if len(segments) == 0 {
		return nil, ErrNoSegments
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	ext := filepath.Ext(path)
	outputs := make([]string, 0, len(segments))
	for i, seg := range segments {
		outputPath := filepath.Join(outputDir, SegmentName(prefix, i, ext))

		if err := b.extractSegment(ctx, path, outputPath, seg); err != nil {
			return nil, &CutError{Index: i, Output: outputPath, Err: err}
		}
		outputs = append(outputs, outputPath)
	}

	return outputs, nil
}

// SegmentName returns the file name of the zero-based segment index i.
func SegmentName(prefix string, i int, ext string) string {
	return fmt.Sprintf("%s_%03d%s", prefix, i+1, ext)
}

// extractSegment copies one segment of the input to outputPath.
func (b *FFmpegBackend) extractSegment(ctx context.Context, inputPath, outputPath string, seg split.Segment) error {
	args := []string{
		"-y", // Overwrite output
		"-hide_banner",
		"-loglevel", "error",
		"-i", inputPath,
		"-ss", formatFloat(seg.Begin),
	}
	if seg.End != nil {
		args = append(args, "-to", formatFloat(*seg.End))
	}
	args = append(args,
		"-c", "copy", // Copy without re-encoding
		outputPath,
	)

	_, _, err := b.run(ctx, b.ffmpegPath, args...)
	return err
}

// run executes a backend tool and classifies failures.
func (b *FFmpegBackend) run(ctx context.Context, tool string, args ...string) ([]byte, []byte, error) {
	stdout, stderr, err := b.cmd.Run(ctx, tool, args...)
	if err == nil {
		return stdout, stderr, nil
	}

	if ctx.Err() != nil {
		return nil, nil, fmt.Errorf("%s cancelled: %w", filepath.Base(tool), ctx.Err())
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("%w: %s not found, install ffmpeg and ensure it is in PATH: %w",
			ErrBackendUnavailable, tool, err)
	}
	return nil, nil, &FFmpegError{
		Tool:   filepath.Base(tool),
		Args:   args,
		Stderr: string(stderr),
		Err:    err,
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
