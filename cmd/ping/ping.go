// Package ping implements the ping subcommand, a connectivity check for
// both sources of an environment.
package ping

import (
	"github.com/cockroachdb/errors"
	"github.com/hsharma0052/etlverify/cmd/internal/cmdutil"
	"github.com/hsharma0052/etlverify/pool"
	"github.com/spf13/cobra"
)

func Command() *cobra.Command {
	var flagEnv string

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check connectivity to both sources of an environment",
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
			mgr := pool.NewManager(cfg, logger)
			defer mgr.Close()

			statuses := mgr.CheckConnectivity(ctx, flagEnv)
			down := 0
			for _, source := range pool.Sources {
				st := statuses[source]
				if st.OK {
					logger.Info().Str("source", string(source)).Msgf("connection ok")
					continue
				}
				down++
				logger.Error().Str("source", string(source)).Str("error", st.Err).Msgf("connection failed")
			}
			if down > 0 {
				return errors.Newf("%d of %d sources unreachable in environment %q", down, len(pool.Sources), flagEnv)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagEnv, "environment", "", "Name of the configured environment to check.")
	if err := cmd.MarkFlagRequired("environment"); err != nil {
		panic(err)
	}
	return cmd
}
