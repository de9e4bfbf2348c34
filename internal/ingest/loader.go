package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Veraticus/spice-tally/internal/common"
	"github.com/Veraticus/spice-tally/internal/model"
	"github.com/Veraticus/spice-tally/internal/ofx"
	"github.com/Veraticus/spice-tally/internal/service"
	"golang.org/x/sync/errgroup"
)

// ParserFor returns the parser that handles the file's extension.
func ParserFor(path string) (service.RecordParser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSONParser{}, nil
	case ".ofx", ".qfx":
		return ofx.NewParser(), nil
	default:
		return nil, fmt.Errorf("%w: %s", common.ErrUnsupportedFormat, filepath.Base(path))
	}
}

// LoadFile reads all records from a single file.
func LoadFile(ctx context.Context, path string) ([]*model.TransactionRecord, error) {
	parser, err := ParserFor(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path) // #nosec G304 -- path comes from the user
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	records, err := parser.ParseFile(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	slog.Debug("Loaded records", "file", filepath.Base(path), "records", len(records))
	return records, nil
}

// ExpandPatterns resolves glob patterns to a sorted, de-duplicated file list.
// Patterns with no glob match are kept when they name an existing file.
func ExpandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, statErr := os.Stat(pattern); statErr != nil {
				slog.Warn("No files found matching pattern", "pattern", pattern)
				continue
			}
			matches = []string{pattern}
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	if len(files) == 0 {
		return nil, common.ErrNoFiles
	}
	return files, nil
}

// maxParallelLoads bounds how many files are parsed at once.
const maxParallelLoads = 4

// LoadFiles loads the files concurrently and concatenates their records in
// path order. onFile, when set, is called once per file as it finishes, from
// one goroutine at a time. The first failure cancels the remaining loads.
func LoadFiles(ctx context.Context, paths []string, onFile func(path string, count int)) ([]*model.TransactionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([][]*model.TransactionRecord, len(paths))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records, err := LoadFile(gctx, path)
			if err != nil {
				return err
			}
			results[i] = records
			if onFile != nil {
				mu.Lock()
				onFile(path, len(records))
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []*model.TransactionRecord
	for _, records := range results {
		all = append(all, records...)
	}
	return all, nil
}
