package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Compile-time check that LocalPublisher implements Publisher.
var _ Publisher = (*LocalPublisher)(nil)

// LocalPublisher leaves segments where the cutter wrote them and reports
// their absolute paths.
type LocalPublisher struct{}

// NewLocalPublisher creates a new LocalPublisher.
func NewLocalPublisher() *LocalPublisher {
	return &LocalPublisher{}
}

// Publish checks that every file exists and returns its absolute path.
func (p *LocalPublisher) Publish(ctx context.Context, paths []string) ([]string, error) {
	locations := make([]string, 0, len(paths))
	for _, path := range paths {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("stat segment: %w", err)
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("get absolute path for %s: %w", path, err)
		}
		locations = append(locations, abs)
	}
	return locations, nil
}
