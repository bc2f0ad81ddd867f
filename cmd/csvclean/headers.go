package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"csvclean/internal/clean"
	"csvclean/internal/config"
	csvparser "csvclean/internal/parser/csv"
	"csvclean/internal/slug"
)

func newHeadersCmd() *cobra.Command {
	var (
		input       string
		comma       string
		foldAccents bool
	)
	cmd := &cobra.Command{
		Use:   "headers",
		Short: "Print each header of a CSV and the name it normalizes to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := []rune(comma)
			if len(r) != 1 {
				return fmt.Errorf("--comma must be a single character, got %q", comma)
			}
			t, err := csvparser.ReadSource(cmd.Context(), clean.NewSource(config.SourceFor(input)), csvparser.Options{Comma: r[0]})
			if err != nil {
				return err
			}

			n := slug.Normalizer{FoldAccents: foldAccents}
			out := cmd.OutOrStdout()
			seen := make(map[string]string, len(t.Columns))
			for _, col := range t.Columns {
				s := n.Normalize(col)
				fmt.Fprintf(out, "%s -> %s\n", col, s)
				if prev, ok := seen[s]; ok {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %q and %q both normalize to %q\n", prev, col, s)
				}
				seen[s] = col
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "input CSV path or http(s) URL")
	cmd.Flags().StringVar(&comma, "comma", ",", "field delimiter")
	cmd.Flags().BoolVar(&foldAccents, "fold-accents", false, "strip diacritics before slugging")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
