package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vbonduro/boxoffice/internal/export"
)

func newExportCmd(e *env) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all movies to a spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			movies, err := e.app.movies.List(cmd.Context())
			if err != nil {
				return err
			}

			if out == "-" {
				return export.WriteXLSX(cmd.OutOrStdout(), movies)
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			if err := export.WriteXLSX(f, movies); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to close %s: %w", out, err)
			}
			e.app.logger.Info("exported movies", "count", len(movies), "path", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "movies.xlsx", "output file, or - for stdout")
	return cmd
}
