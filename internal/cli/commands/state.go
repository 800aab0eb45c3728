package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pipelinekit/stagegen/internal/cli/ui"
	"github.com/pipelinekit/stagegen/internal/state"
)

var knownStates = []string{
	string(state.NotRunning),
	string(state.Running),
	string(state.Stopped),
	string(state.Error),
}

// NewStateCommand creates the state command
func NewStateCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Show or change the persisted pipeline state",
		Long: `Show or change the pipeline state record kept below state.data_dir.

The record is created with state NOT_RUNNING the first time it is accessed.`,
	}

	cmd.AddCommand(newStateShowCommand(opts))
	cmd.AddCommand(newStateSetCommand(opts))
	return cmd
}

func newStateShowCommand(opts *globalOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the current pipeline state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer e.logger.Sync()

			tracker := state.NewTracker(e.cfg.State.DataDir, e.logger)
			if err := tracker.Init(); err != nil {
				return err
			}

			current := tracker.State()
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), current)
			}
			printState(cmd, current)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print as JSON")
	return cmd
}

func newStateSetCommand(opts *globalOptions) *cobra.Command {
	var (
		name     string
		revision string
		message  string
	)

	cmd := &cobra.Command{
		Use:       "set STATE",
		Short:     "Record a new pipeline state",
		Args:      cobra.ExactArgs(1),
		ValidArgs: knownStates,
		Example: `  stagegen state set RUNNING
  stagegen state set ERROR --message "source unreachable"
  stagegen state set RUNNING --name orders --revision 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := state.ParseState(args[0])
			if err != nil {
				fmt.Fprint(cmd.ErrOrStderr(), ui.UnknownStateError(args[0], knownStates, color.NoColor))
				return err
			}

			e, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer e.logger.Sync()

			tracker := state.NewTracker(e.cfg.State.DataDir, e.logger)
			if err := tracker.Init(); err != nil {
				return err
			}

			current := tracker.State()
			if !cmd.Flags().Changed("name") {
				name = current.Name
			}
			if !cmd.Flags().Changed("revision") {
				revision = current.Revision
			}

			updated, err := tracker.SetState(name, revision, st, message)
			if err != nil {
				return err
			}
			ui.WriteSuccess(cmd.OutOrStdout(),
				fmt.Sprintf("Pipeline %s (revision %s) is now %s", updated.Name, updated.Revision, updated.State),
				color.NoColor)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "pipeline name (default: current name)")
	cmd.Flags().StringVar(&revision, "revision", "", "pipeline revision (default: current revision)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "message attached to the state change")
	return cmd
}

func printState(cmd *cobra.Command, current *state.PipelineState) {
	table := ui.NewKeyValueTable(cmd.OutOrStdout(), color.NoColor)
	table.AddRow("Name", current.Name)
	table.AddRow("Revision", current.Revision)
	table.AddRow("State", string(current.State))
	if current.Message != "" {
		table.AddRow("Message", current.Message)
	}
	table.AddRow("Changed", current.Time().UTC().Format("2006-01-02 15:04:05 MST"))
	table.Render()
}
