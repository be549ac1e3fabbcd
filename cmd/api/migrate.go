package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harentsoaR/clinic-api/internal/repository"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the unique email indexes on users and patients",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, log, s, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer disconnect(s, log)

			if err := repository.EnsureIndexes(ctx, s); err != nil {
				return fmt.Errorf("ensure indexes: %w", err)
			}
			log.Info().Msg("indexes are up to date")
			return nil
		},
	}
}
