package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/moviebot/internal/app"
	"github.com/user/moviebot/internal/service"
)

const loadLongDesc string = `Rebuild the vector collections from the movies table.

All three collections are truncated first, then every movie with a
non-empty overview and enough votes gets an overview, a quote and a
metadata document. Movies that fail to embed are logged and skipped.

Examples:
  loader load
  loader load --limit 500 --workers 8`

type loadCommander struct {
	opts service.IndexOptions
}

func newLoadCmd() *cobra.Command {
	cmder := &loadCommander{opts: service.DefaultIndexOptions()}

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Rebuild the vector collections",
		Long:  loadLongDesc,
		Args:  cobra.NoArgs,
		RunE:  cmder.run,
	}

	cmd.Flags().IntVar(&cmder.opts.Limit, "limit", cmder.opts.Limit, "Maximum number of movies to index")
	cmd.Flags().IntVar(&cmder.opts.MinVotes, "min-votes", cmder.opts.MinVotes, "Only index movies with more votes than this")
	cmd.Flags().IntVarP(&cmder.opts.Workers, "workers", "w", cmder.opts.Workers, "Concurrent embedding workers")
	return cmd
}

func (c *loadCommander) run(cmd *cobra.Command, _ []string) error {
	cfg, log := setup(cmd)
	if !cmd.Flags().Changed("workers") && cfg.IndexWorkers > 0 {
		c.opts.Workers = cfg.IndexWorkers
	}

	a, err := app.Open(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.Indexer().Run(cmd.Context(), c.opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d of %d movies (%d failed)\n", report.Indexed, report.Movies, report.Failed)
	return nil
}
