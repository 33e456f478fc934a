package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"go.viam.com/twoview/logging"
)

// printf prints a message with no prefix.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

// infof prints a message prefixed with a bold cyan "Info: ".
func infof(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprint(w, color.New(color.Bold, color.FgCyan).Sprint("Info: "))
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

// warningf prints a message prefixed with a bold yellow "Warning: ".
func warningf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprint(w, color.New(color.Bold, color.FgYellow).Sprint("Warning: "))
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

// newLogger returns a logger writing to the app's error writer, at debug level when --debug is set.
func newLogger(c *cli.Context) logging.Logger {
	logger := logging.NewBlankLogger("twoview")
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	if c.Bool(generalFlagDebug) {
		logger.SetLevel(logging.DEBUG)
	} else {
		logger.SetLevel(logging.INFO)
	}
	return logger
}
