package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vbonduro/boxoffice/internal/catalog"
)

func newSeedCmd(e *env) *cobra.Command {
	var file, dump string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Add the movies of a catalog that are not listed yet",
		Long: "seed submits every catalog entry whose name is not already listed.\n" +
			"Without --file the built-in catalog is used. Entries may omit images;\n" +
			"posters can be added afterwards with attach. --dump writes the catalog\n" +
			"as YAML instead of seeding, as a starting point for a custom --file.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat := catalog.Default()
			if file != "" {
				var err error
				if cat, err = catalog.Load(file); err != nil {
					return err
				}
			}

			if dump != "" {
				if err := cat.Write(dump); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %d movies to %s\n", len(cat.Movies), dump)
				return nil
			}

			a := e.app
			existing, err := a.movies.List(cmd.Context())
			if err != nil {
				return err
			}
			entries := catalog.Missing(cat.Movies, existing)
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "catalog already seeded")
				return nil
			}

			results, err := catalog.Seed(cmd.Context(), a.pipeline(false), entries, a.cfg.SeedConcurrency, a.logger)
			added := 0
			for _, r := range results {
				if r.Err == nil {
					added++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d of %d movies\n", added, len(entries))
			return err
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog YAML file")
	cmd.Flags().StringVar(&dump, "dump", "", "write the catalog to this YAML file and exit")
	return cmd
}
