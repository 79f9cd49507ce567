// Package splitter orchestrates splitting a recording on silence: probing,
// silence detection, split selection and cutting.
package splitter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/maauso/voicecut/internal/audio"
	"github.com/maauso/voicecut/internal/split"
	"github.com/maauso/voicecut/internal/storage"
)

// Static errors for request validation.
var (
	// ErrInvalidOptions is returned when split options are out of range.
	ErrInvalidOptions = errors.New("invalid split options")
	// ErrInputNotFound is returned when the input recording does not exist.
	ErrInputNotFound = errors.New("input file does not exist")
)

// defaultPrefix names output files when the request has no prefix.
const defaultPrefix = "segment"

// Request describes one recording to split.
type Request struct {
	// Input is the path to the source recording.
	Input string
	// OutputDir receives the segment files. Created if missing.
	OutputDir string
	// Prefix names the output files <Prefix>_001.<ext>, ...
	Prefix string
	// Options controls split selection and silence detection.
	Options Options
	// DryRun stops after split selection without writing segments.
	DryRun bool
}

// Result reports what the pipeline measured and produced.
type Result struct {
	Input           string
	Duration        float64
	ReferenceVolume float64
	ThresholdDB     float64
	Silences        []split.Silence
	Splits          []float64
	Segments        []split.Segment
	// Outputs holds the local segment paths, empty for a dry run.
	Outputs []string
	// Locations holds where the publisher placed each output.
	Locations []string
}

// Service runs the split pipeline against an audio backend.
type Service struct {
	backend   audio.Backend
	publisher storage.Publisher
	logger    *slog.Logger
	// maxConcurrentFiles limits parallel recordings in SplitAll.
	maxConcurrentFiles int
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithPublisher publishes produced segments after cutting.
func WithPublisher(p storage.Publisher) ServiceOption {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithMaxConcurrentFiles sets how many recordings SplitAll processes at once.
// Values below 1 are ignored.
func WithMaxConcurrentFiles(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.maxConcurrentFiles = n
		}
	}
}

// NewService creates a new Service.
func NewService(backend audio.Backend, logger *slog.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		backend:            backend,
		logger:             logger,
		maxConcurrentFiles: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Split runs the pipeline for one recording. Stages run strictly in order
// and the first error aborts the run.
func (s *Service) Split(ctx context.Context, req Request) (*Result, error) {
	if err := req.Options.Validate(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(req.Input); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, req.Input)
		}
		return nil, fmt.Errorf("stat input: %w", err)
	}
	if req.Prefix == "" {
		req.Prefix = defaultPrefix
	}

	opts := req.Options
	log := s.logger.With(slog.String("input", req.Input))
	started := time.Now()

	duration, err := s.backend.Duration(ctx, req.Input)
	if err != nil {
		return nil, fmt.Errorf("get audio duration: %w", err)
	}
	log.Debug("probed duration", slog.Float64("duration_sec", duration))

	volume, err := s.backend.ReferenceVolume(ctx, req.Input, opts.ThresholdMode)
	if err != nil {
		return nil, fmt.Errorf("detect volume: %w", err)
	}
	threshold := volume + opts.ThresholdDelta
	log.Debug("computed silence threshold",
		slog.String("mode", string(opts.ThresholdMode)),
		slog.Float64("reference_db", volume),
		slog.Float64("threshold_db", threshold),
	)

	silences, err := s.backend.DetectSilences(ctx, req.Input, threshold, opts.MinSilenceLen)
	if err != nil {
		return nil, fmt.Errorf("detect silences: %w", err)
	}
	log.Debug("detected silences", slog.Int("count", len(silences)))

	splits, err := split.SelectSplits(silences, duration, opts.SegmentLength, opts.SegmentDelta)
	if err != nil {
		return nil, fmt.Errorf("select splits: %w", err)
	}
	segments := split.BuildSegments(splits)

	result := &Result{
		Input:           req.Input,
		Duration:        duration,
		ReferenceVolume: volume,
		ThresholdDB:     threshold,
		Silences:        silences,
		Splits:          splits,
		Segments:        segments,
	}

	if req.DryRun {
		log.Info("dry run, skipping cut", slog.Int("segments", len(segments)))
		return result, nil
	}

	outputs, err := s.backend.Cut(ctx, req.Input, segments, req.OutputDir, req.Prefix)
	if err != nil {
		return nil, fmt.Errorf("extract segments: %w", err)
	}
	result.Outputs = outputs

	if s.publisher != nil {
		locations, err := s.publisher.Publish(ctx, outputs)
		if err != nil {
			return nil, fmt.Errorf("publish segments: %w", err)
		}
		result.Locations = locations
	}

	log.Info("split complete",
		slog.Float64("duration_sec", duration),
		slog.Int("silences", len(silences)),
		slog.Int("segments", len(segments)),
		slog.String("output_dir", req.OutputDir),
		slog.Duration("elapsed", time.Since(started)),
	)

	return result, nil
}

// SplitAll splits independent recordings concurrently, at most
// maxConcurrentFiles at a time. Each recording is still processed
// sequentially. The first failure cancels the remaining work.
// Results are returned in request order.
func (s *Service) SplitAll(ctx context.Context, reqs []Request) ([]*Result, error) {
	results := make([]*Result, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrentFiles)

	for i, req := range reqs {
		g.Go(func() error {
			res, err := s.Split(gctx, req)
			if err != nil {
				return fmt.Errorf("%s: %w", req.Input, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
