package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/tocgest/internal/export"
	"github.com/dgallion1/tocgest/internal/watch"
)

func newWatchCmd(cfgFile func() string) *cobra.Command {
	var (
		out    string
		layout string
	)

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Export a workbook for every document dropped into a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lay, err := export.ParseLayout(layout)
			if err != nil {
				return err
			}
			app, err := newApp(cfgFile(), os.Stderr)
			if err != nil {
				return err
			}
			w := watch.New(app.Processor, app.Exporter, watch.Options{
				OutDir:     out,
				Layout:     lay,
				Processing: app.Config.Options(),
			}, app.Log)
			return w.Run(cmd.Context(), args[0])
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "directory for workbooks (default: the watched directory)")
	cmd.Flags().StringVar(&layout, "layout", "single", "workbook layout: single or multi")
	return cmd
}
