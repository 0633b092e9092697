package cmdutil

import (
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type loggerConfig struct {
	level string
}

var loggerConfigInst = loggerConfig{
	level: zerolog.InfoLevel.String(),
}

func RegisterLoggerFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&loggerConfigInst.level,
		"log-level",
		loggerConfigInst.level,
		"Minimum level to log (trace, debug, info, warn, error).",
	)
}

// Logger builds the process logger. Comparison output is timestamped so
// batch runs over long categories can be correlated with pipeline runs.
func Logger() (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(loggerConfigInst.level)
	if err != nil {
		return zerolog.Nop(), errors.Wrapf(err, "unknown log level %q", loggerConfigInst.level)
	}
	return zerolog.New(zerolog.NewConsoleWriter()).
		Level(lvl).
		With().Timestamp().Logger(), nil
}
