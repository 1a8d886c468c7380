package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/moviebot/internal/app"
	"github.com/user/moviebot/internal/repository"
	"github.com/user/moviebot/internal/service"
)

const crawlLongDesc string = `Fetch new movies from TMDB.

Starts at the highest stored movie ID + 1 (or --start-id) and walks IDs
upwards, stopping after --max-misses consecutive IDs that TMDB does not
know. Requires TMDB_TOKEN.

Examples:
  loader crawl
  loader crawl --start-id 550 --max-movies 100`

type crawlCommander struct {
	opts service.CrawlOptions
}

func newCrawlCmd() *cobra.Command {
	cmder := &crawlCommander{opts: service.DefaultCrawlOptions()}

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Fetch new movies from TMDB",
		Long:  crawlLongDesc,
		Args:  cobra.NoArgs,
		RunE:  cmder.run,
	}

	cmd.Flags().Int64Var(&cmder.opts.StartID, "start-id", 0, "First TMDB ID to fetch (default: max stored ID + 1)")
	cmd.Flags().IntVar(&cmder.opts.MaxMisses, "max-misses", cmder.opts.MaxMisses, "Stop after this many consecutive missing IDs")
	cmd.Flags().IntVar(&cmder.opts.BatchSize, "batch-size", cmder.opts.BatchSize, "Rows per insert")
	cmd.Flags().DurationVar(&cmder.opts.Delay, "delay", cmder.opts.Delay, "Pause between requests")
	cmd.Flags().IntVar(&cmder.opts.MaxMovies, "max-movies", 0, "Stop after fetching this many movies (0 = no limit)")
	return cmd
}

func (c *crawlCommander) run(cmd *cobra.Command, _ []string) error {
	cfg, log := setup(cmd)
	if cfg.TMDBToken == "" {
		return errors.New("TMDB_TOKEN is not set")
	}

	a, err := app.Open(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := repository.AutoMigrate(a.DB); err != nil {
		return fmt.Errorf("migrate movies: %w", err)
	}

	report, err := a.TMDB().Crawl(cmd.Context(), c.opts)
	if report != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Fetched %d movies from IDs %d-%d, inserted %d\n",
			report.Found, report.StartID, report.LastID, report.Inserted)
	}
	return err
}
