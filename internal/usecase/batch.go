package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"seppy/internal/domain"
	"seppy/internal/port"
)

// BatchUseCase splits every selected file under a root and writes results.
type BatchUseCase struct {
	walker port.FileWalker
	writer port.OutputWriter
	split  *SplitUseCase
	log    *slog.Logger
}

// NewBatchUseCase creates a new batch use case.
func NewBatchUseCase(
	walker port.FileWalker,
	writer port.OutputWriter,
	split *SplitUseCase,
	log *slog.Logger,
) *BatchUseCase {
	if log == nil {
		log = slog.Default()
	}
	return &BatchUseCase{
		walker: walker,
		writer: writer,
		split:  split,
		log:    log,
	}
}

// FileOutcome is the result for one input file.
type FileOutcome struct {
	Path      string
	Rel       string
	OutputDir string
	Result    *Result // nil when Err is set
	Err       error
}

// BatchResult contains the results of a batch run.
type BatchResult struct {
	Files []FileOutcome
	Stats domain.ProcessingStats
}

// FailedFiles returns the number of files that produced no output.
func (r *BatchResult) FailedFiles() int {
	n := 0
	for _, f := range r.Files {
		if f.Err != nil {
			n++
		}
	}
	return n
}

// Run splits root, a single file or a directory, into outDir. A single
// file writes straight into outDir; a directory gets one subdirectory per
// file named after its relative path. A file that fails to parse is
// reported and produces no output; the other files still run.
func (u *BatchUseCase) Run(ctx context.Context, root, outDir string) (*BatchResult, error) {
	start := time.Now()

	st, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat input: %w", err)
	}

	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk input: %w", err)
	}

	result := &BatchResult{}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out := FileOutcome{Path: file.Path, Rel: file.Rel, OutputDir: outDir}
		if st.IsDir() {
			out.OutputDir = filepath.Join(outDir, filepath.FromSlash(strings.TrimSuffix(file.Rel, ".py")))
		}

		res, err := u.splitFile(ctx, file.Path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			out.Err = err
			u.log.Error("file failed", "file", file.Path, "error", err)
			result.Files = append(result.Files, out)
			continue
		}

		// Writes happen only after the whole file has been computed
		if err := u.writer.WriteTree(out.OutputDir, res.Modules, res.Graph); err != nil {
			return nil, fmt.Errorf("failed to write output for %s: %w", file.Rel, err)
		}
		out.Result = res
		result.Files = append(result.Files, out)
	}

	result.Stats = u.aggregate(result.Files, time.Since(start))
	return result, nil
}

func (u *BatchUseCase) splitFile(ctx context.Context, path string) (*Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return u.split.Split(ctx, path, src)
}

func (u *BatchUseCase) aggregate(files []FileOutcome, elapsed time.Duration) domain.ProcessingStats {
	total := domain.ProcessingStats{
		RunID:   u.split.RunID(),
		Elapsed: elapsed,
	}
	for _, f := range files {
		if f.Err != nil {
			var perr *domain.ParseError
			if errors.As(f.Err, &perr) {
				total.Errors = append(total.Errors, perr.Error())
			} else {
				total.Errors = append(total.Errors, fmt.Sprintf("%s: %v", f.Rel, f.Err))
			}
			continue
		}
		s := f.Result.Stats
		total.TotalModules += s.TotalModules
		total.ProcessedModules += s.ProcessedModules
		total.FailedModules += s.FailedModules
		total.CachedModules += s.CachedModules
		if s.PeakHeapBytes > total.PeakHeapBytes {
			total.PeakHeapBytes = s.PeakHeapBytes
		}
		total.Errors = append(total.Errors, s.Errors...)
	}
	return total
}
