package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/moviebot/internal/config"
	"github.com/user/moviebot/internal/middleware"
)

type tokenCommander struct {
	name   string
	expiry time.Duration
}

func newTokenCmd() *cobra.Command {
	cmder := &tokenCommander{}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print an admin token signed with APP_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if !cfg.AdminEnabled() {
				return errors.New("APP_SECRET is not set; refusing to sign a production token with the default secret")
			}
			return cmder.run(cmd, cfg.AppSecret)
		},
	}

	cmd.Flags().StringVar(&cmder.name, "name", "admin", "Name stored in the token")
	cmd.Flags().DurationVar(&cmder.expiry, "expiry", 24*time.Hour, "Token lifetime")
	return cmd
}

func (c *tokenCommander) run(cmd *cobra.Command, secret string) error {
	token, err := middleware.GenerateToken(c.name, middleware.RoleAdmin, secret, c.expiry)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
