package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"csvclean/internal/config"
	"csvclean/internal/transformer/builtin"
)

func newValidateCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a pipeline file without running it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			issues := config.ValidatePipeline(p)
			for _, iss := range issues {
				fmt.Fprintf(out, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
			}
			if config.HasErrors(issues) {
				return fmt.Errorf("configuration is invalid: %s", cfgPath)
			}
			if _, err := builtin.Build(p); err != nil {
				return fmt.Errorf("configuration is invalid: %s: %w", cfgPath, err)
			}
			fmt.Fprintf(out, "configuration is valid: %s\n", cfgPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "pipeline file (.json, .yaml, .yml, .toml)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
