package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/imyashkale/helmwizard/internal/chart"
	"github.com/imyashkale/helmwizard/internal/models"
	"github.com/imyashkale/helmwizard/internal/wizard"
)

type varsOptions struct {
	dir     string
	files   []string
	owner   string
	app     string
	envFile string
	render  bool
}

// varsReport is what the vars command prints
type varsReport struct {
	Vars     []models.VarDef        `yaml:"vars"`
	Values   map[string]interface{} `yaml:"values"`
	Missing  []string               `yaml:"missing,omitempty"`
	Rendered map[string]string      `yaml:"rendered,omitempty"`
	Warnings []string               `yaml:"warnings,omitempty"`
}

func newVarsCommand() *cobra.Command {
	opts := varsOptions{}

	cmd := &cobra.Command{
		Use:   "vars [chart-dir]",
		Short: "Extract and normalize ${VAR} placeholders from a local chart",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.dir = "."
			if len(args) == 1 {
				opts.dir = args[0]
			}
			return runVars(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.files, "files", []string{chart.ChartFile, chart.ValuesFile}, "chart files to scan, relative to the chart directory")
	cmd.Flags().StringVar(&opts.owner, "owner", "", "repository owner used for suggestions")
	cmd.Flags().StringVar(&opts.app, "app", "", "application name used for suggestions")
	cmd.Flags().StringVar(&opts.envFile, "env", "", ".env file whose values override suggestions")
	cmd.Flags().BoolVar(&opts.render, "render", false, "also print a dry-run render")
	return cmd
}

func runVars(out io.Writer, opts varsOptions) error {
	files, err := readChartFiles(opts.dir, opts.files)
	if err != nil {
		return err
	}

	ctx := wizard.Context{Owner: opts.owner, AppName: opts.app}
	defs := wizard.ApplyPlaceholders(wizard.NormalizeDefs(chart.Scan(files)), ctx)
	values := wizard.BuildSuggestions(defs, ctx)

	if opts.envFile != "" {
		raw, err := os.ReadFile(opts.envFile)
		if err != nil {
			return fmt.Errorf("failed to read env file: %w", err)
		}
		values = wizard.MergeValues(values, wizard.EnvValues(wizard.ParseEnv(string(raw))))
	}

	values, err = wizard.CastValues(values, defs)
	if err != nil {
		return err
	}

	report := varsReport{
		Vars:    defs,
		Values:  values,
		Missing: wizard.MissingRequired(defs, values),
	}
	if opts.render {
		result := chart.Render(files, values)
		report.Rendered = result.Files
		report.Warnings = result.Warnings
	}

	enc := yaml.NewEncoder(out)
	defer enc.Close()
	return enc.Encode(report)
}

// readChartFiles reads the named files from dir, skipping the ones that do not exist
func readChartFiles(dir string, names []string) ([]chart.File, error) {
	files := make([]chart.File, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		files = append(files, chart.File{Path: name, Content: string(content)})
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("none of %s found in %s", strings.Join(names, ", "), dir)
	}
	return files, nil
}
