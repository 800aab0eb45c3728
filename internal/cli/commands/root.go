package commands

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pipelinekit/stagegen/internal/buildinfo"
	"github.com/pipelinekit/stagegen/internal/cli/config"
	"github.com/pipelinekit/stagegen/internal/cli/ui"
	"github.com/pipelinekit/stagegen/internal/logging"
)

// globalOptions are the persistent flags of the root command
type globalOptions struct {
	configFile string
	noColor    bool
	verbose    bool
}

// env is what a command needs after the configuration is loaded
type env struct {
	cfg    *config.Config
	logger *zap.Logger
}

func (o *globalOptions) load(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		cmd.PrintErr(ui.ConfigError(err.Error(), o.noColor))
		return nil, err
	}

	level := cfg.Log.Level
	if o.verbose {
		level = "debug"
	}
	return &env{
		cfg:    cfg,
		logger: logging.New(level, cfg.Log.Development),
	}, nil
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "stagegen",
		Short: "Stage declaration analyzer and descriptor generator",
		Long: color.CyanString(`stagegen - pipeline stage descriptor generator

stagegen reads stage declarations, validates each one against the stage
contract and writes the artifacts a pipeline runtime loads:

  • PipelineStages.json, the manifest of every accepted stage
  • one label/description bundle per stage
  • one message bundle for the error definition`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file (default: ./stagegen.yml)")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewGenerateCommand(opts))
	rootCmd.AddCommand(NewStateCommand(opts))
	rootCmd.AddCommand(NewServeCommand(opts))
	rootCmd.AddCommand(NewInitCommand(opts))
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the stagegen version, Git commit, build date, and Go version",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := buildinfo.Get()

			if jsonOutput {
				data, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			table := ui.NewKeyValueTable(cmd.OutOrStdout(), color.NoColor)
			table.AddRow("stagegen version", info.Version)
			table.AddRow("Git commit", info.GitCommit)
			table.AddRow("Build date", info.BuildDate)
			table.AddRow("Go version", info.GoVersion)
			table.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print as JSON")
	return cmd
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
