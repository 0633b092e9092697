// Package tables implements the tables subcommand, which lists configured
// categories and optionally verifies the tables exist on the reference side.
package tables

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/hsharma0052/etlverify/cmd/internal/cmdutil"
	"github.com/hsharma0052/etlverify/dbconn"
	"github.com/hsharma0052/etlverify/inspect"
	"github.com/hsharma0052/etlverify/pool"
	"github.com/spf13/cobra"
)

func Command() *cobra.Command {
	var (
		flagEnv      string
		flagCategory string
		flagCheck    bool
	)

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List configured categories and their tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger, err := cmdutil.Logger()
			if err != nil {
				return err
			}
			cfg, err := cmdutil.LoadConfig()
			if err != nil {
				return err
			}

			categories := cfg.CategoryNames()
			if flagCategory != "" {
				categories = []string{flagCategory}
			}

			var mgr *pool.Manager
			if flagCheck {
				if flagEnv == "" {
					return errors.New("--environment is required with --check")
				}
				mgr = pool.NewManager(cfg, logger)
				defer mgr.Close()
			}

			missing := 0
			for _, category := range categories {
				tables := cfg.TablesFor(category)
				logger.Info().Str("category", category).Strs("tables", tables).Msgf("category")
				if mgr == nil {
					continue
				}
				for _, table := range tables {
					table := table
					err := mgr.WithConn(ctx, flagEnv, pool.SourceReference,
						func(ctx context.Context, conn dbconn.Conn) error {
							_, err := inspect.Schema(ctx, conn, table)
							return err
						})
					if err != nil {
						missing++
						logger.Err(err).Str("category", category).Str("table", table).
							Msgf("table check failed")
					}
				}
			}
			if missing > 0 {
				return errors.Newf("%d tables failed the existence check", missing)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagEnv, "environment", "", "Environment to check tables against (with --check).")
	cmd.Flags().StringVar(&flagCategory, "category", "", "Only list this category.")
	cmd.Flags().BoolVar(&flagCheck, "check", false, "Verify each table exists on the reference side.")
	return cmd
}
