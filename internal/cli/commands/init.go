package commands

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pipelinekit/stagegen/internal/cli/config"
	"github.com/pipelinekit/stagegen/internal/cli/ui"
)

//go:embed templates/stages.yml
var exampleDeclarations []byte

var projectNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// validateProjectName checks a project name for the config file
func validateProjectName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) == 0 || len(name) > 100 {
		return fmt.Errorf("project name must be 1-100 characters")
	}
	if !projectNamePattern.MatchString(name) {
		return fmt.Errorf("project name can only contain letters, numbers, dashes, and underscores")
	}
	return nil
}

// NewInitCommand creates the init command
func NewInitCommand(opts *globalOptions) *cobra.Command {
	var (
		assumeYes bool
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "init [project-name]",
		Short: "Create stagegen.yml and an example declaration file",
		Long: `Create a stagegen.yml in the working directory and an example
declaration file below declarations/.

Without --yes the settings are asked for interactively.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := config.FileName + ".yml"
			if config.InProject() && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
			}

			cfg := config.Defaults()
			cfg.ProjectName = defaultProjectName(args)

			if !assumeYes {
				if err := askConfig(cfg); err != nil {
					return err
				}
			}
			if err := validateProjectName(cfg.ProjectName); err != nil {
				return err
			}

			if err := config.WriteFile(configPath, cfg); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			declDir := cfg.Generate.Declarations[0]
			examplePath := filepath.Join(declDir, "stages.yml")
			written, err := writeExample(examplePath, force)
			if err != nil {
				return err
			}
			if !written {
				fmt.Fprint(out, ui.Warning(examplePath+" exists, left unchanged", color.NoColor))
			}

			ui.WriteSuccess(out, fmt.Sprintf("Initialized %s in %s", cfg.ProjectName, configPath), color.NoColor)
			fmt.Fprintln(out, "\nNext steps:")
			fmt.Fprintf(out, "  stagegen generate        # validate %s and write artifacts\n", declDir)
			fmt.Fprintln(out, "  stagegen serve           # serve the manifest and pipeline state")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "accept defaults without prompting")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")
	return cmd
}

func defaultProjectName(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	wd, err := os.Getwd()
	if err != nil {
		return "pipeline"
	}
	name := projectNamePattern.FindString(filepath.Base(wd))
	if name == "" {
		return "pipeline"
	}
	return name
}

func askConfig(cfg *config.Config) error {
	nameValidator := func(ans interface{}) error {
		s, _ := ans.(string)
		return validateProjectName(s)
	}
	if err := survey.AskOne(&survey.Input{
		Message: "Project name:",
		Default: cfg.ProjectName,
	}, &cfg.ProjectName, survey.WithValidator(nameValidator)); err != nil {
		return err
	}

	if err := survey.AskOne(&survey.Select{
		Message: "Write artifacts to:",
		Options: []string{config.TargetDir, config.TargetS3},
		Default: cfg.Generate.Target,
		Description: func(value string, index int) string {
			if value == config.TargetS3 {
				return "an S3 compatible bucket"
			}
			return "a local directory"
		},
	}, &cfg.Generate.Target); err != nil {
		return err
	}

	if cfg.Generate.Target == config.TargetS3 {
		questions := []*survey.Question{
			{
				Name:     "endpoint",
				Prompt:   &survey.Input{Message: "S3 endpoint (host:port):"},
				Validate: survey.Required,
			},
			{
				Name:     "bucket",
				Prompt:   &survey.Input{Message: "Bucket:"},
				Validate: survey.Required,
			},
			{
				Name:   "prefix",
				Prompt: &survey.Input{Message: "Key prefix:"},
			},
		}
		answers := struct {
			Endpoint string `survey:"endpoint"`
			Bucket   string `survey:"bucket"`
			Prefix   string `survey:"prefix"`
		}{}
		if err := survey.Ask(questions, &answers); err != nil {
			return err
		}
		cfg.S3.Endpoint = answers.Endpoint
		cfg.S3.Bucket = answers.Bucket
		cfg.S3.Prefix = answers.Prefix
	} else {
		if err := survey.AskOne(&survey.Input{
			Message: "Output directory:",
			Default: cfg.Generate.Output,
		}, &cfg.Generate.Output, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}

	return survey.AskOne(&survey.Input{
		Message: "State data directory:",
		Default: cfg.State.DataDir,
	}, &cfg.State.DataDir, survey.WithValidator(survey.Required))
}

// writeExample writes the example declarations unless the file exists and force is unset
func writeExample(path string, force bool) (bool, error) {
	if _, err := os.Stat(path); err == nil && !force {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, exampleDeclarations, 0644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}
