package cli

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
)

// Log output formats accepted by --log-format.
const (
	logFormatText = "text"
	logFormatJSON = "json"
)

// newLogger builds the command logger from the persistent flags.
// Verbose wins over quiet when both are set.
func newLogger(cmd *cobra.Command, out io.Writer) (hclog.Logger, error) {
	flags := cmd.Flags()
	verbose, _ := flags.GetBool("verbose")
	quiet, _ := flags.GetBool("quiet")
	format, _ := flags.GetString("log-format")

	level := hclog.Info
	switch {
	case verbose:
		level = hclog.Debug
	case quiet:
		level = hclog.Error
	}

	var jsonFormat bool
	switch format {
	case logFormatText, "":
	case logFormatJSON:
		jsonFormat = true
	default:
		return nil, fmt.Errorf("unsupported log format: %s (supported: %s, %s)", format, logFormatText, logFormatJSON)
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       "swatch",
		Output:     out,
		Level:      level,
		JSONFormat: jsonFormat,
		Color:      hclog.AutoColor,
	}), nil
}
