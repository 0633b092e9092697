package cmdutil

import (
	"github.com/hsharma0052/etlverify/config"
	"github.com/spf13/cobra"
)

var configPath = "etlverify.yaml"

func RegisterConfigFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&configPath,
		"config",
		configPath,
		"Path to the environments and categories config file.",
	)
}

func LoadConfig() (*config.Config, error) {
	return config.Load(configPath)
}
