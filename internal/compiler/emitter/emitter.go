// Package emitter writes the artifacts of a finished analysis run: the stage
// manifest, one resource bundle per stage and the error-definition bundle.
package emitter

import (
	"context"

	"go.uber.org/zap"

	"github.com/pipelinekit/stagegen/internal/compiler/descriptor"
	diag "github.com/pipelinekit/stagegen/internal/compiler/errors"
	"github.com/pipelinekit/stagegen/internal/compiler/registry"
	"github.com/pipelinekit/stagegen/internal/output"
)

// Report lists what a call to Emit wrote
type Report struct {
	// Artifacts holds the locations of every written artifact, in write order
	Artifacts []string
	// Manifest is true when the manifest and stage bundles were written
	Manifest bool
	// ErrorBundle is true when the error-definition bundle was written
	ErrorBundle bool
}

// Emitter renders registry contents through a Filer
type Emitter struct {
	filer  output.Filer
	logger *zap.Logger
}

// New creates an emitter. A nil logger disables logging.
func New(filer output.Filer, logger *zap.Logger) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{filer: filer, logger: logger}
}

// Emit writes the artifacts allowed by the run's failure flags.
// Stage artifacts are skipped entirely when any stage declaration failed; the
// error bundle is skipped when error-definition validation failed. Write
// failures are reported as diagnostics and do not stop the remaining writes.
func (e *Emitter) Emit(ctx context.Context, reg *registry.Registry) (Report, diag.DiagnosticList) {
	var (
		report Report
		diags  diag.DiagnosticList
	)

	write := func(pkg, name string, data []byte) bool {
		location := e.filer.Location(pkg, name)
		if err := e.filer.Write(ctx, pkg, name, data); err != nil {
			e.logger.Error("failed to write artifact", zap.String("location", location), zap.Error(err))
			diags = append(diags, diag.NewEmitFailed(location, err))
			return false
		}
		e.logger.Debug("wrote artifact", zap.String("location", location), zap.Int("bytes", len(data)))
		report.Artifacts = append(report.Artifacts, location)
		return true
	}

	if reg.StageFailed() {
		e.logger.Info("skipping stage manifest, stage validation failed")
	} else {
		report.Manifest = e.emitStages(reg.Stages(), write, &diags)
	}

	if errDef := reg.ErrorDef(); errDef != nil {
		if reg.ErrorFailed() {
			e.logger.Info("skipping error bundle, error definition validation failed", zap.String("enum", errDef.EnumName))
		} else {
			pkg, name := descriptor.BundleLocation(errDef.EnumName)
			report.ErrorBundle = write(pkg, name, descriptor.ErrorBundle(errDef))
		}
	}

	return report, diags
}

func (e *Emitter) emitStages(stages []*descriptor.StageDescriptor, write func(pkg, name string, data []byte) bool, diags *diag.DiagnosticList) bool {
	manifest, err := descriptor.SerializeManifest(stages)
	if err != nil {
		*diags = append(*diags, diag.NewEmitFailed(descriptor.ManifestName, err))
		return false
	}

	ok := write("", descriptor.ManifestName, manifest)
	for _, s := range stages {
		pkg, name := descriptor.BundleLocation(s.ClassName)
		if !write(pkg, name, descriptor.StageBundle(s)) {
			ok = false
		}
	}
	return ok
}
