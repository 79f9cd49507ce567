// Package cli implements the voicecut command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maauso/voicecut/internal/audio"
	"github.com/maauso/voicecut/internal/bootstrap"
	"github.com/maauso/voicecut/internal/config"
	"github.com/maauso/voicecut/internal/splitter"
)

// serviceFactory builds the splitter service from loaded configuration.
type serviceFactory func(ctx context.Context, cfg *config.Config, logger *slog.Logger, jobs int) (*splitter.Service, error)

func bootstrapService(ctx context.Context, cfg *config.Config, logger *slog.Logger, jobs int) (*splitter.Service, error) {
	deps, err := bootstrap.NewDependencies(ctx, cfg, logger, jobs)
	if err != nil {
		return nil, fmt.Errorf("initialize dependencies: %w", err)
	}
	return deps.Splitter, nil
}

// flags holds the raw command-line values.
type flags struct {
	segmentLength float64
	segmentDelta  float64
	threshMode    string
	threshDelta   float64
	minSilenceLen float64
	outputDir     string
	prefix        string
	dryRun        bool
	jobs          int
}

// NewRootCommand returns the voicecut command writing results to stdout and logs to stderr.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	return newRootCommand(stdout, stderr, bootstrapService)
}

func newRootCommand(stdout, stderr io.Writer, newService serviceFactory) *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "voicecut [flags] <audio-file> [<audio-file>...]",
		Short: "Split audio file on silence into multiple segments.",
		Long: `Split long recordings into segments close to a target length.

Each cut is placed in the middle of the longest silence found near the
uniform cut point, or at the uniform cut point when no silence qualifies.
Segments are stream-copied without re-encoding.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("silence-thresh-delta") {
				f.threshDelta = splitter.DefaultThresholdFor(audio.VolumeMode(strings.ToLower(f.threshMode)))
			}
			return run(cmd.Context(), stdout, stderr, newService, f, args)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	fs := cmd.Flags()
	fs.Float64Var(&f.segmentLength, "segment-length", splitter.DefaultSegmentLength, "Target segment length in seconds")
	fs.Float64Var(&f.segmentDelta, "segment-delta", splitter.DefaultSegmentDelta, "Allowed deviation from segment length in seconds")
	fs.StringVar(&f.threshMode, "silence-thresh-mode", string(audio.VolumeMean), "Reference volume for the silence threshold: mean, max or abs")
	fs.Float64Var(&f.threshDelta, "silence-thresh-delta", splitter.DefaultThresholdDelta, "Silence threshold delta in dB (default -4, or -16 with --silence-thresh-mode=abs)")
	fs.Float64Var(&f.minSilenceLen, "min-silence-len", splitter.DefaultMinSilenceLen, "Minimum silence length in seconds")
	fs.StringVarP(&f.outputDir, "output-dir", "o", ".", "Output directory for split segments")
	fs.StringVar(&f.prefix, "prefix", "", "Output file name prefix (default: input file name without extension)")
	fs.BoolVar(&f.dryRun, "dry-run", false, "Print the split plan without writing segments")
	fs.IntVarP(&f.jobs, "jobs", "j", 0, "Number of recordings processed in parallel (default: VOICECUT_MAX_CONCURRENT_FILES)")

	return cmd
}

func run(ctx context.Context, stdout, stderr io.Writer, newService serviceFactory, f *flags, args []string) error {
	mode, err := audio.ParseVolumeMode(f.threshMode)
	if err != nil {
		return fmt.Errorf("%w: %w", splitter.ErrInvalidOptions, err)
	}

	opts := splitter.Options{
		SegmentLength:  f.segmentLength,
		SegmentDelta:   f.segmentDelta,
		ThresholdMode:  mode,
		ThresholdDelta: f.threshDelta,
		MinSilenceLen:  f.minSilenceLen,
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	reqs, err := buildRequests(args, f, opts)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := cfg.NewLogger(stderr)

	svc, err := newService(ctx, cfg, logger, f.jobs)
	if err != nil {
		return err
	}

	var results []*splitter.Result
	if len(reqs) == 1 {
		res, err := svc.Split(ctx, reqs[0])
		if err != nil {
			return err
		}
		results = []*splitter.Result{res}
	} else {
		results, err = svc.SplitAll(ctx, reqs)
		if err != nil {
			return err
		}
	}

	for _, res := range results {
		printResult(stdout, res, f.dryRun)
	}
	if !f.dryRun {
		_, _ = fmt.Fprintln(stdout, "Completed splitting the audio")
	}
	return nil
}

// buildRequests checks inputs and derives one request per file. With several
// inputs an explicit prefix is numbered per input, and prefixes that would
// still collide in the shared output directory are rejected.
func buildRequests(args []string, f *flags, opts splitter.Options) ([]splitter.Request, error) {
	reqs := make([]splitter.Request, 0, len(args))
	owners := make(map[string]string, len(args))
	for i, input := range args {
		if _, err := os.Stat(input); err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", splitter.ErrInputNotFound, input)
			}
			return nil, fmt.Errorf("stat input: %w", err)
		}

		prefix := f.prefix
		switch {
		case prefix == "":
			prefix = stem(input)
		case len(args) > 1:
			prefix = fmt.Sprintf("%s_%d", prefix, i+1)
		}

		if prev, ok := owners[prefix]; ok {
			return nil, fmt.Errorf("%w: %s and %s would both write %q segments to %s",
				splitter.ErrInvalidOptions, prev, input, prefix, f.outputDir)
		}
		owners[prefix] = input

		reqs = append(reqs, splitter.Request{
			Input:     input,
			OutputDir: f.outputDir,
			Prefix:    prefix,
			Options:   opts,
			DryRun:    f.dryRun,
		})
	}
	return reqs, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func printResult(w io.Writer, res *splitter.Result, dryRun bool) {
	if dryRun {
		_, _ = fmt.Fprintf(w, "%s: duration %.3fs, threshold %.1fdB, %d silences, %d segments\n",
			res.Input, res.Duration, res.ThresholdDB, len(res.Silences), len(res.Segments))
		for i, seg := range res.Segments {
			_, _ = fmt.Fprintf(w, "  %03d  %s\n", i+1, seg)
		}
		return
	}

	locations := res.Locations
	if len(locations) == 0 {
		locations = res.Outputs
	}
	for _, loc := range locations {
		_, _ = fmt.Fprintln(w, loc)
	}
}
