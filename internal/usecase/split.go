package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/metrics"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"seppy/config"
	"seppy/internal/adapter/analyzer"
	"seppy/internal/adapter/cache"
	"seppy/internal/adapter/docs"
	"seppy/internal/adapter/graph"
	"seppy/internal/adapter/synth"
	"seppy/internal/domain"
	"seppy/internal/port"
)

// SplitOptions controls how one file is split.
type SplitOptions struct {
	IgnorePatterns  []string
	LocalPackages   []string
	ModuleDocstring bool
	ResidualModule  string
	MaxThreads      int
	Verify          bool
}

// OptionsFromConfig extracts split options from the configuration.
func OptionsFromConfig(cfg *config.Config) SplitOptions {
	return SplitOptions{
		IgnorePatterns:  cfg.Split.IgnorePatterns,
		LocalPackages:   cfg.Split.LocalPackages,
		ModuleDocstring: cfg.Split.ModuleDocstring,
		ResidualModule:  cfg.Split.ResidualModule,
		MaxThreads:      cfg.Limits.MaxThreads,
		Verify:          cfg.Split.Verify,
	}
}

// SplitUseCase splits Python files into standalone modules.
type SplitUseCase struct {
	runID  string
	parser port.Parser
	cache  port.DocCache
	opts   SplitOptions
	log    *slog.Logger

	// OnModule, when set, is called once per finished module. Calls are
	// serialized.
	OnModule func(module string, err error)
}

// NewSplitUseCase creates a new split use case. cache may be nil.
func NewSplitUseCase(parser port.Parser, cache port.DocCache, opts SplitOptions, log *slog.Logger) *SplitUseCase {
	if opts.MaxThreads < 1 {
		opts.MaxThreads = 1
	}
	if opts.ResidualModule == "" {
		opts.ResidualModule = "globals"
	}
	if log == nil {
		log = slog.Default()
	}
	return &SplitUseCase{
		runID:  uuid.NewString(),
		parser: parser,
		cache:  cache,
		opts:   opts,
		log:    log,
	}
}

// RunID identifies this use case's run in stats and logs.
func (u *SplitUseCase) RunID() string {
	return u.runID
}

// Result is the outcome of splitting one file.
type Result struct {
	File    string
	Modules []domain.ModuleInfo // source order, residual module last
	Graph   *graph.Recorder
	Stats   domain.ProcessingStats
	Failed  []*domain.ModuleProcessingError
}

// job is one module to emit. unit is nil for the residual module.
type job struct {
	module string
	unit   *analyzer.Unit
}

func (j job) label() (string, int) {
	if j.unit == nil {
		return j.module, 0
	}
	return j.unit.Record.Name, j.unit.Record.Span.StartLine
}

// Split parses src and emits one module per top-level unit plus a residual
// module for leftover statements. A parse error aborts the file before any
// module is counted. Failures of single units are recorded in the result.
func (u *SplitUseCase) Split(ctx context.Context, path string, src []byte) (*Result, error) {
	start := time.Now()

	file, err := u.parser.Parse(ctx, path, src)
	if err != nil {
		return nil, err
	}
	ext, err := analyzer.Extract(file, analyzer.ExtractOptions{IgnorePatterns: u.opts.IgnorePatterns})
	if err != nil {
		return nil, err
	}

	// Assign module names in source order, residual last
	taken := make(map[string]bool)
	builder := analyzer.NewDependencyBuilder()
	jobs := make([]job, 0, len(ext.Units)+1)
	for i := range ext.Units {
		unit := &ext.Units[i]
		name := synth.ModuleName(unit.Record.Name, taken)
		builder.Register(unit.Record.Name, name)
		jobs = append(jobs, job{module: name, unit: unit})
	}
	if hasResidual(ext) {
		jobs = append(jobs, job{module: synth.ModuleName(u.opts.ResidualModule, taken)})
	}

	p := &pipeline{
		u:       u,
		ctx:     ctx,
		ext:     ext,
		builder: builder,
	}

	results := make([]*domain.ModuleInfo, len(jobs))
	var (
		mu       sync.Mutex
		failed   []*domain.ModuleProcessingError
		cached   int
		peakHeap uint64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.opts.MaxThreads)
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			info, hit, err := p.safeProcess(j)
			heap := heapInUse()

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				var merr *domain.ModuleProcessingError
				if !errors.As(err, &merr) {
					name, line := j.label()
					merr = &domain.ModuleProcessingError{Unit: name, Line: line, Err: err}
				}
				failed = append(failed, merr)
				u.log.Warn("unit failed", "file", path, "unit", merr.Unit, "line", merr.Line, "error", merr.Err)
			} else {
				results[i] = info
				if hit {
					cached++
				}
			}
			if heap > peakHeap {
				peakHeap = heap
			}
			if u.OnModule != nil {
				u.OnModule(j.module, err)
			}
			return nil
		})
	}
	werr := g.Wait()
	if werr == nil {
		werr = ctx.Err()
	}
	if werr != nil {
		u.discard()
		return nil, werr
	}

	rec := graph.NewRecorder()
	var emitted []string
	for _, info := range results {
		if info != nil {
			rec.Record(info.Name, info.Dependencies)
			emitted = append(emitted, info.Name)
		}
	}
	// Drop edges to modules that failed
	rec.Retain(emitted)

	modules := make([]domain.ModuleInfo, 0, len(emitted))
	for _, info := range results {
		if info != nil {
			info.Dependencies = rec.Dependencies(info.Name)
			modules = append(modules, *info)
		}
	}

	if u.cache != nil {
		if err := u.cache.Commit(); err != nil {
			u.log.Warn("cache commit failed", "file", path, "error", err)
		}
	}

	stats := domain.ProcessingStats{
		RunID:            u.runID,
		TotalModules:     len(jobs),
		ProcessedModules: len(modules),
		FailedModules:    len(failed),
		CachedModules:    cached,
		Elapsed:          time.Since(start),
		PeakHeapBytes:    peakHeap,
	}
	for _, f := range failed {
		stats.Errors = append(stats.Errors, f.Error())
	}

	u.log.Info("split file",
		"file", path,
		"modules", stats.ProcessedModules,
		"failed", stats.FailedModules,
		"cached", stats.CachedModules,
		"elapsed", stats.Elapsed)

	return &Result{
		File:    path,
		Modules: modules,
		Graph:   rec,
		Stats:   stats,
		Failed:  failed,
	}, nil
}

func (u *SplitUseCase) discard() {
	if u.cache != nil {
		u.cache.Discard()
	}
}

func hasResidual(ext *analyzer.Extraction) bool {
	for _, s := range ext.Residual {
		if !s.Ignored && !s.IsImport() {
			return true
		}
	}
	return false
}

// heapInUse reports heap bytes in spans holding objects, the same figure as
// MemStats.HeapInuse, without stopping the world.
func heapInUse() uint64 {
	samples := []metrics.Sample{
		{Name: "/memory/classes/heap/objects:bytes"},
		{Name: "/memory/classes/heap/unused:bytes"},
	}
	metrics.Read(samples)
	var total uint64
	for _, s := range samples {
		if s.Value.Kind() == metrics.KindUint64 {
			total += s.Value.Uint64()
		}
	}
	return total
}

// pipeline holds the read-only state shared by workers of one file.
type pipeline struct {
	u       *SplitUseCase
	ctx     context.Context
	ext     *analyzer.Extraction
	builder *analyzer.DependencyBuilder
}

func (p *pipeline) safeProcess(j job) (info *domain.ModuleInfo, cached bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			name, line := j.label()
			info, cached = nil, false
			err = &domain.ModuleProcessingError{Unit: name, Line: line, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	if j.unit == nil {
		info, err = p.residual(j.module)
		return info, false, err
	}
	return p.unit(j.module, j.unit)
}

func (p *pipeline) docstring() string {
	if p.u.opts.ModuleDocstring {
		return p.ext.ModuleDocstring
	}
	return ""
}

func (p *pipeline) unit(module string, unit *analyzer.Unit) (*domain.ModuleInfo, bool, error) {
	rec := unit.Record
	src := p.ext.File.Src
	fail := func(err error) (*domain.ModuleInfo, bool, error) {
		return nil, false, &domain.ModuleProcessingError{Unit: rec.Name, Line: rec.Span.StartLine, Err: err}
	}

	if rec.Span.Start < 0 || rec.Span.End > len(src) || rec.Span.Start >= rec.Span.End {
		return fail(fmt.Errorf("span [%d, %d) out of range", rec.Span.Start, rec.Span.End))
	}
	body := rec.Span.Text(src)

	usage := p.ext.Resolve(unit.Node)
	code, err := synth.Synthesize(synth.Request{
		ModuleDocstring: p.docstring(),
		Imports:         usage.Imports,
		LocalPackages:   p.u.opts.LocalPackages,
		Globals:         statementTexts(p.ext, usage.Definitions),
		Body:            body,
	})
	if err != nil {
		return fail(err)
	}

	if p.u.opts.Verify {
		if err := p.verify(module, code, &rec); err != nil {
			return fail(err)
		}
	}

	hash := cache.ContentHash(body)
	section, hit := "", false
	if p.u.cache != nil {
		section, hit = p.u.cache.Lookup(hash)
	}
	if !hit {
		section = docs.Unit(rec, body)
		if p.u.cache != nil {
			p.u.cache.Store(hash, section)
		}
	}

	return &domain.ModuleInfo{
		Name:         module,
		Unit:         rec.Name,
		Kind:         rec.Kind,
		Imports:      importStatements(usage.Imports),
		GlobalVars:   nonNil(usage.Globals),
		Dependencies: p.builder.Build(usage.References),
		ContentHash:  hash,
		Code:         code,
		Docs:         docs.Page(module, section),
	}, hit, nil
}

func (p *pipeline) residual(module string) (*domain.ModuleInfo, error) {
	var (
		stmts   []string
		globals []string
		refs    = make(map[string]bool)
	)
	for _, s := range p.ext.Residual {
		if s.Ignored || s.IsImport() {
			continue
		}
		stmts = append(stmts, p.ext.File.Text(s.Node))
		globals = append(globals, s.Binds...)
		for name := range analyzer.References(s.Node) {
			refs[name] = true
		}
	}
	imports := analyzer.MatchImports(refs, p.ext.Imports)

	code, err := synth.Residual(p.docstring(), imports, p.u.opts.LocalPackages, stmts)
	if err != nil {
		return nil, &domain.ModuleProcessingError{Unit: module, Err: err}
	}
	if p.u.opts.Verify {
		if _, err := p.u.parser.Parse(p.ctx, module+".py", []byte(code)); err != nil {
			return nil, &domain.ModuleProcessingError{Unit: module, Err: fmt.Errorf("emitted code does not parse: %w", err)}
		}
	}

	globals = dedupe(globals)
	imported := importStatements(imports)
	return &domain.ModuleInfo{
		Name:         module,
		Imports:      imported,
		GlobalVars:   globals,
		Dependencies: p.builder.Build(refs),
		ContentHash:  cache.ContentHash(strings.Join(stmts, "\n")),
		Code:         code,
		Docs:         docs.Residual(module, analyzer.Unquote(p.ext.ModuleDocstring), imported, globals, code),
	}, nil
}

// verify re-parses emitted code and checks it defines exactly the unit.
func (p *pipeline) verify(module, code string, rec *domain.UnitRecord) error {
	file, err := p.u.parser.Parse(p.ctx, module+".py", []byte(code))
	if err != nil {
		return fmt.Errorf("emitted code does not parse: %w", err)
	}
	out, err := analyzer.Extract(file, analyzer.ExtractOptions{})
	if err != nil {
		return fmt.Errorf("emitted code does not parse: %w", err)
	}
	if len(out.Units) != 1 {
		return fmt.Errorf("emitted code defines %d top-level units, want 1", len(out.Units))
	}
	got := out.Units[0].Record
	if got.Name != rec.Name || got.Kind != rec.Kind {
		return fmt.Errorf("emitted code defines %s %q, want %s %q", got.Kind, got.Name, rec.Kind, rec.Name)
	}
	return nil
}
