package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/sravya/xtrack/internal/model"
	"github.com/sravya/xtrack/internal/source"
	"github.com/sravya/xtrack/internal/store"
)

// LoadResult holds the output of parsing a set of import files.
type LoadResult struct {
	Expenses    []model.Expense
	TotalFiles  int
	ParsedFiles int
	Skipped     int
	ParseErrors int
	FileErrors  int
	Saved       int
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Load discovers and parses every import file under root with a bounded
// worker pool. Expenses keep file order, then record order within a file.
func Load(root string, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := source.ScanDir(root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	result := &LoadResult{TotalFiles: len(files)}
	collect(result, parseAll(files, 0, len(files), progressFn))
	return result, nil
}

// Import loads every import file under root that changed since it was last
// imported and saves its expenses to repo. Files whose mtime and size match
// the tracker are skipped.
func Import(ctx context.Context, root string, repo store.Repository, tracker store.FileTracker, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := source.ScanDir(root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	result := &LoadResult{TotalFiles: len(files)}
	if len(files) == 0 {
		return result, nil
	}

	tracked, err := tracker.TrackedFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading import tracker: %w", err)
	}

	var toParse []source.DiscoveredFile
	for _, f := range files {
		prev, ok := tracked[f.Path]
		if ok && prev.MtimeNs == f.ModTime.UnixNano() && prev.SizeBytes == f.Size {
			result.Skipped++
			continue
		}
		toParse = append(toParse, f)
	}

	results := parseAll(toParse, result.Skipped, result.TotalFiles, progressFn)
	collect(result, results)

	for _, pr := range results {
		if pr.Err != nil {
			continue
		}
		for _, e := range pr.Expenses {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			if err := repo.Save(ctx, e); err != nil {
				return result, fmt.Errorf("saving %q from %s: %w", e.Title, pr.File.Path, err)
			}
			result.Saved++
		}
		fi := store.FileInfo{MtimeNs: pr.File.ModTime.UnixNano(), SizeBytes: pr.File.Size}
		if err := tracker.TrackFile(ctx, pr.File.Path, fi); err != nil {
			return result, fmt.Errorf("tracking %s: %w", pr.File.Path, err)
		}
	}
	return result, nil
}

// parseAll parses files in parallel. done offsets the progress count for
// files that were skipped before parsing.
func parseAll(files []source.DiscoveredFile, done, total int, progressFn ProgressFunc) []source.ParseResult {
	if len(files) == 0 {
		return nil
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make([]source.ParseResult, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = source.ParseFile(files[idx])
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n)+done, total)
				}
			}
		}()
	}

	wg.Wait()
	return results
}

func collect(result *LoadResult, results []source.ParseResult) {
	for _, pr := range results {
		if pr.Err != nil {
			result.FileErrors++
			continue
		}
		result.ParsedFiles++
		result.ParseErrors += pr.ParseErrors
		result.Expenses = append(result.Expenses, pr.Expenses...)
	}
}
