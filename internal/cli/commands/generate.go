package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pipelinekit/stagegen/internal/cli/config"
	"github.com/pipelinekit/stagegen/internal/cli/ui"
	"github.com/pipelinekit/stagegen/internal/compiler/decl"
	diag "github.com/pipelinekit/stagegen/internal/compiler/errors"
	"github.com/pipelinekit/stagegen/internal/compiler/processor"
	"github.com/pipelinekit/stagegen/internal/output"
	"github.com/pipelinekit/stagegen/internal/watch"
)

// generateReport is the --json output of generate
type generateReport struct {
	Rounds             int                 `json:"rounds"`
	Stages             []string            `json:"stages"`
	ErrorDefinition    string              `json:"errorDefinition,omitempty"`
	Artifacts          []string            `json:"artifacts"`
	ManifestWritten    bool                `json:"manifestWritten"`
	ErrorBundleWritten bool                `json:"errorBundleWritten"`
	Diagnostics        diag.DiagnosticList `json:"diagnostics"`
}

// generateOptions are the flags of the generate command
type generateOptions struct {
	outputDir  string
	target     string
	dryRun     bool
	jsonOutput bool
	watch      bool
}

// NewGenerateCommand creates the generate command
func NewGenerateCommand(opts *globalOptions) *cobra.Command {
	gen := &generateOptions{}

	cmd := &cobra.Command{
		Use:     "generate [declaration files or directories...]",
		Aliases: []string{"gen", "g"},
		Short:   "Validate stage declarations and write descriptor artifacts",
		Long: `Validate stage declarations and write the manifest and resource bundles.

Each declaration file is one analysis round, processed in the order given;
a directory contributes its *.yml and *.yaml files in name order. The last
file is the terminal round after which the artifacts are written. Without
arguments the generate.declarations entries of the config are used.

With --watch every change to the declarations starts a new run.

Examples:
  stagegen generate
  stagegen generate declarations/ --output build/generated
  stagegen generate round1.yml round2.yml --dry-run
  stagegen generate --target s3 --json
  stagegen generate --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer e.logger.Sync()

			if cmd.Flags().Changed("output") {
				e.cfg.Generate.Output = gen.outputDir
			}
			if cmd.Flags().Changed("target") {
				e.cfg.Generate.Target = gen.target
			}

			paths := args
			if len(paths) == 0 {
				paths = e.cfg.Generate.Declarations
			}

			if !gen.watch {
				return gen.run(cmd.Context(), cmd, e, paths)
			}
			return gen.watchAndRun(cmd, e, paths)
		},
	}

	cmd.Flags().StringVarP(&gen.outputDir, "output", "o", "", "output directory (overrides generate.output)")
	cmd.Flags().StringVar(&gen.target, "target", "", "output target: dir or s3 (overrides generate.target)")
	cmd.Flags().BoolVar(&gen.dryRun, "dry-run", false, "validate and render artifacts without writing them")
	cmd.Flags().BoolVar(&gen.jsonOutput, "json", false, "print the report as JSON")
	cmd.Flags().BoolVarP(&gen.watch, "watch", "w", false, "run again whenever a declaration file changes")

	return cmd
}

// run performs one analysis run over paths and prints its report
func (g *generateOptions) run(ctx context.Context, cmd *cobra.Command, e *env, paths []string) error {
	files, err := decl.FindFiles(paths...)
	if err != nil {
		return err
	}
	prog, err := decl.LoadFiles(files...)
	if err != nil {
		return err
	}

	var filer output.Filer
	if g.dryRun {
		filer = output.NewMemFiler()
	} else {
		filer, err = openOutput(e.cfg)
		if err != nil {
			return err
		}
	}

	result, err := processor.Run(ctx, prog, filer,
		processor.WithLogger(e.logger),
		processor.WithCacheSize(e.cfg.Generate.CacheSize),
	)
	if err != nil {
		return err
	}

	report := newGenerateReport(prog, result)
	if g.jsonOutput {
		if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
	} else {
		printGenerateReport(cmd, report, g.dryRun)
	}

	if len(result.Diagnostics) > 0 {
		return fmt.Errorf("stage analysis reported %d error(s)", len(result.Diagnostics))
	}
	return nil
}

// watchAndRun runs once, then again on every change until interrupted.
// Failed runs are reported and watching continues.
func (g *generateOptions) watchAndRun(cmd *cobra.Command, e *env, paths []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fw, err := watch.NewFileWatcher(paths, watch.DeclarationPatterns, e.logger.Named("watch"))
	if err != nil {
		return err
	}

	report := func(err error) {
		if err != nil {
			fmt.Fprint(cmd.ErrOrStderr(), ui.Warning(err.Error(), color.NoColor))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nWatching %s for changes (Ctrl+C to stop)\n", strings.Join(paths, ", "))
	}

	report(g.run(ctx, cmd, e, paths))
	return fw.Run(ctx, func(ctx context.Context, changed []string) error {
		e.logger.Info("declarations changed", zap.Strings("files", changed))
		report(g.run(ctx, cmd, e, paths))
		return nil
	})
}

// artifactStore is an output target that can also read back what it wrote
type artifactStore interface {
	output.Filer
	output.Reader
}

// openOutput creates the store of the configured output target
func openOutput(cfg *config.Config) (artifactStore, error) {
	if cfg.Generate.Target == config.TargetS3 {
		f, err := output.NewS3Filer(cfg.S3)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	return output.NewDirFiler(cfg.Generate.Output), nil
}

func newGenerateReport(prog *decl.Program, result *processor.Result) generateReport {
	report := generateReport{
		Rounds:             len(prog.Rounds),
		Stages:             make([]string, 0, len(result.Stages)),
		Artifacts:          result.Artifacts,
		ManifestWritten:    result.ManifestWritten,
		ErrorBundleWritten: result.ErrorBundleWritten,
		Diagnostics:        result.Diagnostics,
	}
	for _, s := range result.Stages {
		report.Stages = append(report.Stages, s.ClassName)
	}
	if result.ErrorDef != nil {
		report.ErrorDefinition = result.ErrorDef.EnumName
	}
	if report.Artifacts == nil {
		report.Artifacts = []string{}
	}
	if report.Diagnostics == nil {
		report.Diagnostics = diag.DiagnosticList{}
	}
	return report
}

func printGenerateReport(cmd *cobra.Command, report generateReport, dryRun bool) {
	out := cmd.OutOrStdout()
	noColor := color.NoColor

	if len(report.Diagnostics) > 0 {
		fmt.Fprint(out, ui.FormatDiagnostics(report.Diagnostics, noColor))
		fmt.Fprintln(out)
	}

	if len(report.Artifacts) > 0 {
		table := ui.NewTable(out, noColor, "ARTIFACT")
		for _, a := range report.Artifacts {
			table.AddRow(a)
		}
		table.Render()
		fmt.Fprintln(out)
	}

	if len(report.Diagnostics) > 0 {
		fmt.Fprint(out, ui.GenerateError(len(report.Diagnostics), len(report.Artifacts) > 0, noColor))
		return
	}

	verb := "Wrote"
	if dryRun {
		verb = "Rendered (dry run)"
	}
	ui.WriteSuccess(out, fmt.Sprintf("%s %d artifact(s) for %d stage(s) from %d round(s)",
		verb, len(report.Artifacts), len(report.Stages), report.Rounds), noColor)
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
