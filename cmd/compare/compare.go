// Package compare implements the compare subcommand, which runs table
// comparisons for a category or an explicit table list.
package compare

import (
	"context"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cockroachdb/errors"
	"github.com/hsharma0052/etlverify/batch"
	"github.com/hsharma0052/etlverify/cmd/internal/cmdutil"
	"github.com/hsharma0052/etlverify/pool"
	"github.com/hsharma0052/etlverify/report"
	"github.com/hsharma0052/etlverify/reportstore"
	"github.com/hsharma0052/etlverify/tablecompare"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

func Command() *cobra.Command {
	var (
		flagEnv             string
		flagCategory        string
		flagTables          []string
		flagConcurrency     int
		flagTablesPerSecond int
		flagReportDir       string
		flagReportS3Bucket  string
		flagReportGCSBucket string
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare tables between the reference and candidate pipelines",
		Long:  `Compare runs schema and data comparison for every table in a category, or for an explicit table list, against one environment.`,
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
			if (flagCategory == "") == (len(flagTables) == 0) {
				return errors.New("exactly one of --category and --tables must be set")
			}

			cmdutil.RunMetricsServer(logger)

			mgr := pool.NewManager(cfg, logger)
			defer mgr.Close()

			reporter := report.CombinedReporter{Reporters: []report.Reporter{
				report.LogReporter{Logger: logger},
			}}
			defer reporter.Close()

			svc := tablecompare.NewService(mgr, tablecompare.DBFetcher{}, logger, cfg.QueryTimeout)
			runner := batch.NewRunner(
				svc,
				cfg,
				logger,
				reporter,
				batch.WithConcurrency(flagConcurrency),
				batch.WithTablesPerSecond(flagTablesPerSecond),
			)

			var res *batch.Result
			label := "tables"
			if flagCategory != "" {
				label = flagCategory
				res, err = runner.RunCategory(ctx, flagEnv, flagCategory)
			} else {
				res, err = runner.RunTables(ctx, flagEnv, flagTables)
			}
			if res != nil {
				if storeErr := writeReport(
					ctx, logger, flagEnv, label, res,
					flagReportDir, flagReportS3Bucket, flagReportGCSBucket,
				); storeErr != nil {
					err = errors.CombineErrors(err, storeErr)
				}
			}
			if err != nil {
				return err
			}
			if failed := res.Failed(); len(failed) > 0 {
				return errors.Newf("%d of %d tables failed to compare", len(failed), len(res.Tables))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagEnv, "environment", "", "Name of the configured environment to compare.")
	cmd.Flags().StringVar(&flagCategory, "category", "", "Category whose tables should be compared.")
	cmd.Flags().StringSliceVar(&flagTables, "tables", nil, "Explicit tables to compare instead of a category.")
	cmd.Flags().IntVar(&flagConcurrency, "concurrency", 1, "Number of tables to compare in parallel.")
	cmd.Flags().IntVar(&flagTablesPerSecond, "tables-per-second", 0, "Cap on how fast new table comparisons start (0 = unlimited).")
	cmd.Flags().StringVar(&flagReportDir, "report-dir", "", "Local directory to write the batch report to.")
	cmd.Flags().StringVar(&flagReportS3Bucket, "report-s3-bucket", "", "S3 bucket to upload the batch report to.")
	cmd.Flags().StringVar(&flagReportGCSBucket, "report-gcs-bucket", "", "GCS bucket to upload the batch report to.")
	if err := cmd.MarkFlagRequired("environment"); err != nil {
		panic(err)
	}
	cmdutil.RegisterMetricsFlags(cmd)
	return cmd
}

func writeReport(
	ctx context.Context,
	logger zerolog.Logger,
	env string,
	label string,
	res *batch.Result,
	dir, s3Bucket, gcsBucket string,
) error {
	store, err := makeReportStore(ctx, logger, dir, s3Bucket, gcsBucket)
	if err != nil || store == nil {
		return err
	}
	loc, err := reportstore.WriteBatch(ctx, store, env, label, res)
	if err != nil {
		return errors.Wrap(err, "error persisting batch report")
	}
	logger.Info().Str("location", loc).Msgf("batch report written")
	return nil
}

func makeReportStore(
	ctx context.Context, logger zerolog.Logger, dir, s3Bucket, gcsBucket string,
) (reportstore.Store, error) {
	switch {
	case dir != "":
		return reportstore.NewLocalStore(logger, dir)
	case s3Bucket != "":
		sess, err := session.NewSession()
		if err != nil {
			return nil, errors.Wrap(err, "error initializing aws session")
		}
		return reportstore.NewS3Store(logger, sess, s3Bucket), nil
	case gcsBucket != "":
		creds, err := google.FindDefaultCredentials(ctx, storage.ScopeReadWrite)
		if err != nil {
			return nil, errors.Wrap(err, "error finding gcp credentials")
		}
		client, err := storage.NewClient(ctx, option.WithCredentials(creds))
		if err != nil {
			return nil, errors.Wrap(err, "error initializing gcp storage client")
		}
		return reportstore.NewGCPStore(logger, client, gcsBucket), nil
	}
	return nil, nil
}
