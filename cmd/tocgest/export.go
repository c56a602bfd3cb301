package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/tocgest/internal/doctree"
	"github.com/dgallion1/tocgest/internal/export"
)

func newExportCmd(cfgFile func() string) *cobra.Command {
	var (
		out      string
		layout   string
		selected []string
	)

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Process a file and write its outline to an Excel workbook",
		Example: `  tocgest export contract.pdf
  tocgest export contract.pdf -o toc.xlsx --layout multi
  tocgest export contract.pdf --select section-3,section-7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lay, err := export.ParseLayout(layout)
			if err != nil {
				return err
			}
			app, err := newApp(cfgFile(), os.Stderr)
			if err != nil {
				return err
			}

			result, err := app.Processor.Process(cmd.Context(), args[0], app.Config.Options(), nil)
			if err != nil {
				return err
			}
			if out == "" {
				out = export.DefaultFileName(args[0])
			}

			switch {
			case len(selected) > 0:
				for _, id := range selected {
					if !doctree.SetSelected(result.Sections, id, true) {
						return fmt.Errorf("unknown section id: %s", id)
					}
				}
				err = app.Exporter.ExportSelectedSections(result.Sections, result.DocumentType, result.FileName, out)
			case lay == export.LayoutMulti:
				err = app.Exporter.ExportToMultipleSheets(result.Sections, result.DocumentType, result.FileName, out)
			default:
				err = app.Exporter.ExportToExcel(doctree.ExportData{
					FileName:     result.FileName,
					DocumentType: result.DocumentType,
					Sections:     result.Sections,
				}, out)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s, %d sections -> %s\n",
				result.FileName, result.DocumentType, doctree.Count(result.Sections), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output workbook (default: <name>-toc.xlsx)")
	cmd.Flags().StringVar(&layout, "layout", "single", "workbook layout: single or multi")
	cmd.Flags().StringSliceVar(&selected, "select", nil, "export only these section ids (and their subsections)")
	return cmd
}
