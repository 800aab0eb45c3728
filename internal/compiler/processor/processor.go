// Package processor drives an analysis run. The host delivers declarations in
// rounds; each round's stage and error declarations are validated and turned
// into descriptors, and the terminal round writes the artifacts.
package processor

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/pipelinekit/stagegen/internal/compiler/decl"
	"github.com/pipelinekit/stagegen/internal/compiler/descriptor"
	"github.com/pipelinekit/stagegen/internal/compiler/emitter"
	diag "github.com/pipelinekit/stagegen/internal/compiler/errors"
	"github.com/pipelinekit/stagegen/internal/compiler/hierarchy"
	"github.com/pipelinekit/stagegen/internal/compiler/registry"
	"github.com/pipelinekit/stagegen/internal/compiler/validator"
	"github.com/pipelinekit/stagegen/internal/output"
)

// ErrRunFinished is returned by Process once the terminal round was handled
var ErrRunFinished = errors.New("analysis run already finished")

// Option configures a Processor
type Option func(*Processor)

// WithLogger sets the logger used for round progress
func WithLogger(logger *zap.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithCacheSize sets the size of the ancestor cache
func WithCacheSize(size int) Option {
	return func(p *Processor) {
		p.cacheSize = size
	}
}

// WithClassifier replaces the default classification table
func WithClassifier(c *hierarchy.Classifier) Option {
	return func(p *Processor) {
		p.classifier = c
	}
}

// Result summarizes a run
type Result struct {
	Stages      []*descriptor.StageDescriptor
	ErrorDef    *descriptor.ErrorDescriptor
	Diagnostics diag.DiagnosticList
	// Artifacts lists the locations written by the terminal round
	Artifacts []string

	Finished           bool
	ManifestWritten    bool
	ErrorBundleWritten bool
}

// Processor holds the state of one analysis run
type Processor struct {
	graph      decl.Graph
	logger     *zap.Logger
	cacheSize  int
	classifier *hierarchy.Classifier

	walker    *hierarchy.Walker
	validator *validator.Validator
	registry  *registry.Registry
	emitter   *emitter.Emitter

	rounds      int
	finished    bool
	diagnostics diag.DiagnosticList
	report      emitter.Report
}

// New creates a processor for a fresh run over graph, writing artifacts to filer
func New(graph decl.Graph, filer output.Filer, opts ...Option) *Processor {
	p := &Processor{
		graph:  graph,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.walker = hierarchy.NewWalker(graph, p.cacheSize)
	p.validator = validator.New(graph, p.walker, p.classifier)
	p.registry = registry.New()
	p.emitter = emitter.New(filer, p.logger)
	return p
}

// Process handles one round and returns the diagnostics it produced.
// The returned error is reserved for misuse and cancellation; invalid
// declarations are reported through the diagnostics.
func (p *Processor) Process(ctx context.Context, round *decl.Round) (diag.DiagnosticList, error) {
	if p.finished {
		return nil, ErrRunFinished
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if round == nil {
		round = &decl.Round{}
	}

	p.rounds++
	logger := p.logger.With(zap.Int("round", p.rounds), zap.String("source", round.Source))
	logger.Debug("processing round",
		zap.Int("declarations", len(round.Declarations)),
		zap.Bool("final", round.Final),
	)

	var diags diag.DiagnosticList
	for _, d := range round.StageDeclarations() {
		diags = append(diags, p.processStage(d)...)
	}
	diags = append(diags, p.processErrorDefs(round.ErrorDeclarations())...)

	if round.Final {
		report, emitDiags := p.emitter.Emit(ctx, p.registry)
		p.report = report
		diags = append(diags, emitDiags...)
		p.finished = true
		p.walker.Reset()
		logger.Info("analysis finished",
			zap.Int("stages", len(p.registry.Stages())),
			zap.Int("artifacts", len(report.Artifacts)),
			zap.Int("errors", len(p.diagnostics)+len(diags)),
		)
	}

	p.diagnostics = append(p.diagnostics, diags...)
	return diags, nil
}

func (p *Processor) processStage(d *decl.Declaration) diag.DiagnosticList {
	configs, diags := p.buildConfigs(d)

	class, stageDiags := p.validator.CheckStage(d, p.registry)
	diags = append(diags, stageDiags...)

	if len(diags) > 0 {
		p.registry.MarkStageFailed()
		p.logger.Debug("stage rejected", zap.String("declaration", d.Name), zap.Int("errors", len(diags)))
		return diags
	}

	p.registry.AddStage(buildStage(d, class.Category, configs))
	p.logger.Debug("stage accepted", zap.String("declaration", d.Name), zap.String("type", string(class.Category)))
	return nil
}

func (p *Processor) processErrorDefs(defs []*decl.Declaration) diag.DiagnosticList {
	if len(defs) == 0 {
		return nil
	}

	if len(defs) > 1 {
		others := make([]string, 0, len(defs)-1)
		for _, d := range defs {
			p.registry.NoteErrorDef(d.Name)
			if d != defs[0] {
				others = append(others, d.Name)
			}
		}
		p.registry.MarkErrorFailed()
		return diag.DiagnosticList{diag.NewErrorDefMultiple(defs[0].Name, others)}
	}

	d := defs[0]
	if previous := p.registry.NoteErrorDef(d.Name); len(previous) > 0 {
		p.registry.MarkErrorFailed()
		return diag.DiagnosticList{diag.NewErrorDefMultiple(d.Name, previous)}
	}

	if diags := p.validator.CheckErrorDef(d); len(diags) > 0 {
		p.registry.MarkErrorFailed()
		return diags
	}

	p.registry.SetErrorDef(buildErrorDef(d))
	return nil
}

// Finished reports whether the terminal round was processed
func (p *Processor) Finished() bool {
	return p.finished
}

// Result reports the accepted descriptors and the outcome of the run so far
func (p *Processor) Result() *Result {
	return &Result{
		Stages:             p.registry.Stages(),
		ErrorDef:           p.registry.ErrorDef(),
		Diagnostics:        append(diag.DiagnosticList(nil), p.diagnostics...),
		Artifacts:          append([]string(nil), p.report.Artifacts...),
		Finished:           p.finished,
		ManifestWritten:    p.report.Manifest,
		ErrorBundleWritten: p.report.ErrorBundle,
	}
}

// Run processes every round of prog with a fresh processor.
// A program without rounds still finishes with an empty terminal round.
func Run(ctx context.Context, prog *decl.Program, filer output.Filer, opts ...Option) (*Result, error) {
	p := New(prog.Graph, filer, opts...)

	rounds := prog.Rounds
	if len(rounds) == 0 || !rounds[len(rounds)-1].Final {
		rounds = append(rounds[:len(rounds):len(rounds)], &decl.Round{Source: "<final>", Final: true})
	}

	for _, round := range rounds {
		if _, err := p.Process(ctx, round); err != nil {
			return p.Result(), err
		}
		if p.Finished() {
			break
		}
	}
	return p.Result(), nil
}
