package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"csvclean/internal/clean"
	"csvclean/internal/config"
	"csvclean/internal/datasource/file"
)

type runFlags struct {
	configPath string
	recipe     string
	input      string
	output     string
	drop       []string
	dropFile   string
	sink       string
	dsn        string
	table      string
	autoCreate bool
	workers    int
}

func newRunCmd(g *globalFlags) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a pipeline file or a built-in recipe",
		Long: "Run loads the input CSV, applies the transform chain, and writes the result.\n" +
			"Use --config for a pipeline file (.json, .yaml, .toml) or --recipe for a built-in\n" +
			"recipe (" + strings.Join(config.RecipeNames(), ", ") + "). Flags override file values.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := buildPipeline(cmd, f)
			if err != nil {
				return err
			}

			flush, err := setupMetrics(g, p.Job)
			if err != nil {
				return err
			}
			defer flush()

			rep, err := clean.Run(cmd.Context(), p)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "wrote %d rows to %s %s\n", rep.OutputRows, rep.Sink, rep.Output)
			fmt.Fprintf(out, "columns: %s\n", strings.Join(rep.Columns, ", "))
			if len(rep.Dropped) > 0 {
				fmt.Fprintf(out, "dropped: %s\n", strings.Join(rep.Dropped, ", "))
			}
			fmt.Fprintf(out, "digest:  %s\n", rep.Digest)
			return nil
		},
	}

	cmd.Flags().SortFlags = false
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "pipeline file (.json, .yaml, .yml, .toml)")
	cmd.Flags().StringVarP(&f.recipe, "recipe", "r", "", "built-in recipe ("+strings.Join(config.RecipeNames(), " or ")+")")
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "input CSV path or http(s) URL")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output CSV path (csv sink)")
	cmd.Flags().StringSliceVar(&f.drop, "drop", nil, "columns to drop if present (comma-separated, recipes only)")
	cmd.Flags().StringVar(&f.dropFile, "drop-file", "", "file listing columns to drop, one per line (recipes only)")
	cmd.Flags().StringVar(&f.sink, "sink", "", `storage kind ("csv", "sqlite", "postgres")`)
	cmd.Flags().StringVar(&f.dsn, "dsn", "", "database DSN for the sqlite and postgres sinks")
	cmd.Flags().StringVar(&f.table, "table", "", "destination table for the sqlite and postgres sinks")
	cmd.Flags().BoolVar(&f.autoCreate, "auto-create", false, "create the destination table when missing")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "goroutines used to split rows (0 or 1 splits serially)")
	cmd.MarkFlagsMutuallyExclusive("config", "recipe")
	cmd.MarkFlagsOneRequired("config", "recipe")
	return cmd
}

// buildPipeline resolves the pipeline from --config or --recipe and applies
// flag overrides. Only flags the user set override file values.
func buildPipeline(cmd *cobra.Command, f *runFlags) (config.Pipeline, error) {
	flags := cmd.Flags()

	var p config.Pipeline
	if f.configPath != "" {
		if flags.Changed("drop") || flags.Changed("drop-file") {
			return p, fmt.Errorf("--drop and --drop-file apply to --recipe only; edit the pipeline's drop step instead")
		}
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return p, err
		}
		p = loaded
		if f.input != "" {
			src := config.SourceFor(f.input)
			if src.Kind == "http" && p.Source.Kind == "http" {
				src.HTTP = p.Source.HTTP
				src.HTTP.URL = f.input
			}
			p.Source = src
		}
		if f.output != "" {
			p.Storage.File.Path = f.output
		}
	} else {
		if f.input == "" {
			return p, fmt.Errorf("--recipe requires --input")
		}
		drop, err := dropList(f)
		if err != nil {
			return p, err
		}
		p, err = config.Recipe(f.recipe, f.input, f.output, drop)
		if err != nil {
			return p, err
		}
	}

	if flags.Changed("sink") {
		p.Storage.Kind = f.sink
	}
	if flags.Changed("dsn") {
		p.Storage.DB.DSN = f.dsn
	}
	if flags.Changed("table") {
		p.Storage.DB.Table = f.table
	}
	if flags.Changed("auto-create") {
		p.Storage.DB.AutoCreateTable = f.autoCreate
	}
	if flags.Changed("workers") {
		p.Runtime.SplitWorkers = f.workers
	}
	return p, nil
}

// dropList merges --drop and --drop-file. nil means the recipe default.
func dropList(f *runFlags) ([]string, error) {
	if f.drop == nil && f.dropFile == "" {
		return nil, nil
	}
	drop := append([]string{}, f.drop...)
	if f.dropFile != "" {
		names, err := file.ReadList(f.dropFile)
		if err != nil {
			return nil, fmt.Errorf("read drop file: %w", err)
		}
		drop = append(drop, names...)
	}
	return drop, nil
}
