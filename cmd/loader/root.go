package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/user/moviebot/internal/config"
	"github.com/user/moviebot/internal/logger"
)

const rootLongDesc string = `Offline tools for the movie chatbot.

Commands:
  loader crawl    Fetch new movies from TMDB into the movies table
  loader load     Rebuild the overview, quote and metadata vector collections
  loader token    Print an admin token for POST /admin/reindex`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "loader",
		Short:         "Movie chatbot data loader",
		Long:          rootLongDesc,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")

	cmd.AddCommand(newLoadCmd())
	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newTokenCmd())
	return cmd
}

// setup 读取配置并按 --debug 创建日志
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger) {
	cfg := config.Load()
	level := cfg.LogLevel
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = "debug"
	}
	return cfg, logger.FromSettings(level, cfg.LogFormat)
}
