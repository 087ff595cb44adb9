package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vbonduro/boxoffice/internal/blobstore"
	"github.com/vbonduro/boxoffice/internal/catalog"
	"github.com/vbonduro/boxoffice/internal/domain"
	"github.com/vbonduro/boxoffice/internal/submission"
)

func newSubmitCmd(e *env) *cobra.Command {
	var entry catalog.Entry
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Add a movie listing",
		Example: `  boxoffice submit --name Snitch --description "A father goes undercover." \
    --price 11.99 --image snitch.jpg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := entry.Request()
			if err != nil {
				return err
			}

			a := e.app
			movie, err := a.service(a.pipeline(a.cfg.RequireImage)).AddMovie(cmd.Context(), req)
			if err != nil {
				printRecoveryHint(cmd.ErrOrStderr(), err)
				return err
			}
			return printJSON(cmd.OutOrStdout(), movie)
		},
	}

	cmd.Flags().StringVar(&entry.Name, "name", "", "movie title")
	cmd.Flags().StringVar(&entry.Description, "description", "", "synopsis")
	cmd.Flags().StringVar(&entry.Price, "price", "", "ticket price, e.g. 11.99")
	cmd.Flags().StringVar(&entry.Image, "image", "", "poster image file")
	return cmd
}

func newAttachCmd(e *env) *cobra.Command {
	var image string
	cmd := &cobra.Command{
		Use:   "attach <movie-id>",
		Short: "Upload the poster of a movie whose earlier upload failed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(image)
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}

			a := e.app
			asset := &domain.Asset{Data: data, MimeType: blobstore.ExtToMimeType(image)}
			movie, err := a.service(a.pipeline(false)).AttachPoster(cmd.Context(), args[0], asset)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), movie)
		},
	}

	cmd.Flags().StringVar(&image, "image", "", "poster image file")
	_ = cmd.MarkFlagRequired("image")
	return cmd
}

// printRecoveryHint tells the user how to finish a submission whose record
// was saved but whose poster was not linked.
func printRecoveryHint(w io.Writer, err error) {
	var se *submission.Error
	if !errors.As(err, &se) || !submission.IsRecoverable(err) {
		return
	}
	fmt.Fprintf(w, "movie %s was saved without a poster; retry with: boxoffice attach %s --image <file>\n", se.MovieID, se.MovieID)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
