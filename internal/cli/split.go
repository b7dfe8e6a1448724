package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"seppy/config"
	"seppy/internal/adapter/cache"
	"seppy/internal/adapter/fs"
	"seppy/internal/adapter/memstore"
	"seppy/internal/adapter/syntax"
	"seppy/internal/port"
	"seppy/internal/usecase"
)

var (
	splitOutput     string
	splitNoCache    bool
	splitThreads    int
	splitMemoryMB   int
	splitNoProgress bool
)

var splitCmd = &cobra.Command{
	Use:   "split <path>",
	Short: "Split a Python file or directory into standalone modules",
	Long: `Split every top-level class and function into its own module.

For a single file the modules are written straight into the output
directory. For a directory each selected file gets a subdirectory named
after its relative path. Every output directory holds <module>.py files,
docs/<module>.md pages and dependencies.json. report.md summarizes the run.

Examples:
  seppy split app.py                  # Write into ./output
  seppy split src/ -o build/split     # Split a whole tree
  seppy split app.py --no-cache -j 1  # Single worker, no doc cache`,
	Args: cobra.ExactArgs(1),
	RunE: runSplit,
}

func init() {
	splitCmd.Flags().StringVarP(&splitOutput, "output", "o", "output", "output directory")
	splitCmd.Flags().BoolVar(&splitNoCache, "no-cache", false, "disable the documentation cache")
	splitCmd.Flags().IntVarP(&splitThreads, "threads", "j", 0, "worker count (default from config)")
	splitCmd.Flags().IntVarP(&splitMemoryMB, "memory-limit", "m", 0, "soft memory limit in MB (default from config)")
	splitCmd.Flags().BoolVar(&splitNoProgress, "no-progress", false, "hide the progress bar")
	rootCmd.AddCommand(splitCmd)
}

func runSplit(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}

	cfg := GetConfig()
	if splitThreads != 0 {
		cfg.Limits.MaxThreads = splitThreads
	}
	if splitMemoryMB != 0 {
		cfg.Limits.MemoryLimitMB = splitMemoryMB
	}
	if splitNoCache {
		cfg.Cache.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	debug.SetMemoryLimit(int64(cfg.Limits.MemoryLimitMB) << 20)

	var docCache port.DocCache
	if cfg.Cache.Enabled {
		st, err := openCache(cfg)
		if err != nil {
			logger.Warn("documentation cache unavailable, caching in memory for this run", "error", err)
			docCache = memstore.NewMemoryCache()
		} else {
			defer st.Close()
			if s, err := st.Stats(); err == nil && s.Reset != "" {
				logger.Info("documentation cache reset", "reason", s.Reset)
			}
			docCache = st
		}
	}

	splitter := usecase.NewSplitUseCase(syntax.NewParser(), docCache, usecase.OptionsFromConfig(cfg), logger)

	var (
		bar   *progressbar.ProgressBar
		barMu sync.Mutex
	)
	if !splitNoProgress {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("[cyan]Splitting[reset]"),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(os.Stderr)
			}),
		)
		splitter.OnModule = func(module string, err error) {
			barMu.Lock()
			defer barMu.Unlock()
			bar.Describe(fmt.Sprintf("[cyan]Splitting[reset] %s", module))
			_ = bar.Add(1)
		}
	}

	batch := usecase.NewBatchUseCase(
		fs.NewWalker(cfg.Input.Includes, cfg.Input.Excludes),
		fs.NewWriter(),
		splitter,
		logger,
	)

	fmt.Printf("Splitting %s...\n", path)
	result, err := batch.Run(cmd.Context(), path, splitOutput)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return fmt.Errorf("split failed: %w", err)
	}

	if err := fs.WriteReport(splitOutput, usecase.ReportFile, usecase.Report(result)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	s := result.Stats
	fmt.Printf("\nSplit complete:\n")
	fmt.Printf("  Files:    %d (%d failed)\n", len(result.Files), result.FailedFiles())
	fmt.Printf("  Modules:  %d\n", s.ProcessedModules)
	fmt.Printf("  Cached:   %d\n", s.CachedModules)
	fmt.Printf("  Failed:   %d\n", s.FailedModules)
	fmt.Printf("  Elapsed:  %s\n", formatDuration(s.Elapsed))

	if len(s.Errors) > 0 {
		fmt.Printf("\nErrors:\n")
		for _, e := range s.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}

	fmt.Printf("\nOutput written to: %s\n", splitOutput)

	if n := result.FailedFiles(); n > 0 {
		return fmt.Errorf("%d of %d files failed", n, len(result.Files))
	}
	return nil
}

func openCache(cfg *config.Config) (*cache.Store, error) {
	dir := cacheDir()
	if err := config.EnsureCacheDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return cache.Open(config.CacheDBPath(dir), cache.ComputeStamp(cfg))
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
