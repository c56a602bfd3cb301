package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newOutlineCmd(cfgFile func() string) *cobra.Command {
	var (
		format    string
		noContent bool
	)

	cmd := &cobra.Command{
		Use:   "outline <file>",
		Short: "Print the document type and section outline of a file",
		Example: `  tocgest outline contract.pdf
  tocgest outline contract.pdf --format yaml --no-content`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unknown format %q (want json or yaml)", format)
			}
			app, err := newApp(cfgFile(), os.Stderr)
			if err != nil {
				return err
			}
			opts := app.Config.Options()
			if noContent {
				opts.ExtractContent = false
			}

			result, err := app.Processor.Process(cmd.Context(), args[0], opts, nil)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), format, result)
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or yaml")
	cmd.Flags().BoolVar(&noContent, "no-content", false, "skip section body extraction")
	return cmd
}

func printResult(w io.Writer, format string, v any) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
