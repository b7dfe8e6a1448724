package usecase

import (
	"fmt"
	"strings"
)

// ReportFile is the name of the run report written next to the output.
const ReportFile = "report.md"

// Report renders the performance report of a batch run as markdown.
func Report(r *BatchResult) string {
	var sb strings.Builder
	s := r.Stats

	sb.WriteString("# Performance Report\n\n")
	sb.WriteString(fmt.Sprintf("Run: `%s`\n\n", s.RunID))
	sb.WriteString(fmt.Sprintf("Total processing time: %.2f seconds\n\n", s.Elapsed.Seconds()))
	sb.WriteString(fmt.Sprintf("Modules processed: %d\n", s.ProcessedModules))
	sb.WriteString(fmt.Sprintf("Cached modules: %d\n", s.CachedModules))
	sb.WriteString(fmt.Sprintf("Failed modules: %d\n", s.FailedModules))
	sb.WriteString(fmt.Sprintf("Total modules: %d\n\n", s.TotalModules))
	sb.WriteString("Memory Usage:\n")
	sb.WriteString(fmt.Sprintf("Peak heap: %.1f MB\n", float64(s.PeakHeapBytes)/(1<<20)))

	if len(r.Files) > 0 {
		sb.WriteString("\n## Files\n\n")
		sb.WriteString("| File | Modules | Failed | Cached | Status |\n")
		sb.WriteString("|---|---|---|---|---|\n")
		for _, f := range r.Files {
			if f.Err != nil {
				sb.WriteString(fmt.Sprintf("| `%s` | 0 | 0 | 0 | error |\n", f.Rel))
				continue
			}
			fs := f.Result.Stats
			sb.WriteString(fmt.Sprintf("| `%s` | %d | %d | %d | ok |\n", f.Rel, fs.ProcessedModules, fs.FailedModules, fs.CachedModules))
		}
	}

	if len(s.Errors) > 0 {
		sb.WriteString("\n## Errors\n\n")
		for _, e := range s.Errors {
			sb.WriteString(fmt.Sprintf("- %s\n", e))
		}
	}

	return sb.String()
}
