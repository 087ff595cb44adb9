package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListCmd(e *env) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List movies, optionally filtered by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := e.app
			movies, err := a.service(a.pipeline(false)).SearchMovies(cmd.Context(), query)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tPRICE\tPOSTER")
			for _, m := range movies {
				poster := m.AssetURL
				if poster == "" {
					poster = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\n", m.ID, m.Name, m.Price, poster)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "case-insensitive name filter")
	return cmd
}
