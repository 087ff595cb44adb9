package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vbonduro/boxoffice/internal/config"
	"github.com/vbonduro/boxoffice/internal/logging"
)

// env is filled in by the root command before any subcommand runs.
type env struct {
	app        *app
	logCleanup func()
}

func (e *env) close() {
	if e.app != nil {
		e.app.close()
	}
	if e.logCleanup != nil {
		e.logCleanup()
	}
}

func newRootCmd() (*cobra.Command, *env) {
	e := &env{}
	root := &cobra.Command{
		Use:   "boxoffice",
		Short: "Movie listings with poster uploads",
		Long: "boxoffice stores movie listings in a document store and their posters in a blob store.\n\n" +
			"Configuration comes from environment variables (DB_PATH, BLOB_PATH, PUBLIC_BASE_URL, ...)\n" +
			"or the YAML file named by CONFIG_FILE.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()

			// Only the server logs JSON; interactive commands read better as text.
			format := cfg.LogFormat
			if cmd.Name() != "serve" {
				format = "text"
			}
			logger, cleanup, err := logging.New(cfg.LogLevel, format, cfg.LogFile)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			e.logCleanup = cleanup

			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			e.app = a
			return nil
		},
	}

	root.AddCommand(
		newServeCmd(e),
		newSubmitCmd(e),
		newAttachCmd(e),
		newListCmd(e),
		newSeedCmd(e),
		newExportCmd(e),
	)
	return root, e
}
