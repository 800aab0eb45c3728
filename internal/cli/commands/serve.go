package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pipelinekit/stagegen/internal/cli/ui"
	"github.com/pipelinekit/stagegen/internal/state"
	"github.com/pipelinekit/stagegen/internal/web/bootstrap"
)

// NewServeCommand creates the serve command
func NewServeCommand(opts *globalOptions) *cobra.Command {
	var (
		addr       string
		printToken bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generated manifest and the pipeline state over HTTP",
		Long: `Start the HTTP API of this instance.

The manifest is read from the configured output target, so run generate
first. Every route except /api/v1/system/info requires a bearer token
signed with the app auth token; --print-token issues one with the
state:write scope.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer e.logger.Sync()

			if cmd.Flags().Changed("addr") {
				e.cfg.Server.Address = addr
			}

			tracker := state.NewTracker(e.cfg.State.DataDir, e.logger)
			if err := tracker.Init(); err != nil {
				return err
			}

			manifests, err := openOutput(e.cfg)
			if err != nil {
				return err
			}

			task, err := bootstrap.NewTask(e.cfg.Server, tracker, manifests, e.logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			info := ui.NewKeyValueTable(out, color.NoColor)
			info.AddRow("Component", task.ComponentID())
			info.AddRow("Base URL", task.RegistrationAttributes()["baseHttpUrl"])
			info.AddRow("Data dir", e.cfg.State.DataDir)
			info.Render()
			fmt.Fprintln(out)

			routes := ui.NewTable(out, color.NoColor, "METHOD", "PATTERN", "AUTH")
			for _, r := range task.Routes() {
				access := "token"
				if r.Public {
					access = "public"
				}
				routes.AddRow(r.Method, r.Pattern, access)
			}
			routes.Render()

			if printToken {
				token, err := task.IssueToken(bootstrap.ScopeStateWrite)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "\nToken: %s\n", token)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return task.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.address)")
	cmd.Flags().BoolVar(&printToken, "print-token", false, "print a bearer token with the state:write scope")
	return cmd
}
