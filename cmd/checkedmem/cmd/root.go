/*
Copyright © 2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/blacktop/go-checkedmem"
	"github.com/spf13/cobra"
)

var (
	outputFormat string
	logLevel     string

	logger *slog.Logger
	config checkedmem.Config
)

var rootCmd = &cobra.Command{
	Use:   "checkedmem",
	Short: "Inspect and exercise checked memory access",
	Long: `checkedmem copies memory across boundaries that may be invalid and reports
faults as errors instead of crashing.

Configuration is read from CHECKEDMEM_ENV, CHECKEDMEM_DEBUG, CHECKEDMEM_MOVER
and CHECKEDMEM_LOG_LEVEL.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides CHECKEDMEM_LOG_LEVEL")
}

// Execute runs the root command. Faults outside checked operations are
// logged by the handlers setup installs before the process crashes.
func Execute() {
	var err error
	checkedmem.Guard(func() {
		err = rootCmd.ExecuteContext(context.Background())
	})
	if err != nil {
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	switch strings.ToLower(outputFormat) {
	case "json", "yaml":
		outputFormat = strings.ToLower(outputFormat)
	default:
		return fmt.Errorf("unknown output format %q (valid: json, yaml)", outputFormat)
	}

	var err error
	config, err = checkedmem.LoadConfig()
	if err != nil {
		return err
	}
	level := config.LogLevel
	if logLevel != "" {
		if err := level.UnmarshalText([]byte(logLevel)); err != nil {
			return fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ok, err := checkedmem.Supported()
	if !ok {
		// check reports support itself.
		if cmd == checkCmd {
			return nil
		}
		return fmt.Errorf("checked memory access not supported: %w", err)
	}

	unclaimed := checkedmem.HandlerFunc(func(info checkedmem.FaultInfo) {
		logger.Error("unclaimed fault outside a checked operation",
			"signal", info.Signal.String(),
			"addr", fmt.Sprintf("%#x", info.Addr))
	})
	return checkedmem.Install(
		checkedmem.WithConfig(config),
		checkedmem.WithLogger(logger),
		checkedmem.WithHandler(checkedmem.FaultMapError.Signal(), unclaimed),
		checkedmem.WithHandler(checkedmem.FaultBusError.Signal(), unclaimed),
	)
}
