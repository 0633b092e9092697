package cmd

import (
	"fmt"
	"os"

	"github.com/hsharma0052/etlverify/cmd/compare"
	"github.com/hsharma0052/etlverify/cmd/internal/cmdutil"
	"github.com/hsharma0052/etlverify/cmd/ping"
	"github.com/hsharma0052/etlverify/cmd/tables"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "etlverify",
	Short: "Verification tooling for parallel ETL pipeline outputs",
	Long:  `etlverify compares the relational outputs of two ETL pipelines, reporting schema and data differences table by table.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cmdutil.RegisterLoggerFlags(rootCmd)
	cmdutil.RegisterConfigFlags(rootCmd)
	rootCmd.AddCommand(compare.Command())
	rootCmd.AddCommand(tables.Command())
	rootCmd.AddCommand(ping.Command())
}
