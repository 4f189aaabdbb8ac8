package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"homewidgets/cmd/widgets-cli/globals"
	"homewidgets/internal/components/chrono"
	"homewidgets/internal/components/telemetry"
	"homewidgets/internal/config"
	"homewidgets/lib/serviceutil"
	libtelemetry "homewidgets/lib/telemetry"

	"github.com/spf13/cobra"
)

var (
	configPath string
	format     string
	noColor    bool
	debug      bool
	dumpHttp   string
)

// errWidgetFailed is returned after an error widget was rendered, the error
// itself is already on screen.
var errWidgetFailed = errors.New("widget rendered an error")

var telemetrySetup libtelemetry.Telemetry

var rootCmd = &cobra.Command{
	Use:           "widgets-cli",
	Short:         "widgets-cli renders the KVG departure board and the youpickit price tracker.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		libtelemetry.InitSlog(debug)

		if format != globals.FormatText && format != globals.FormatJSON {
			return fmt.Errorf("unknown format %q, expected %s or %s", format, globals.FormatText, globals.FormatJSON)
		}

		cfg, err := config.Load(configPath, !cmd.Flags().Changed("config"))
		if err != nil {
			return err
		}

		clock, err := chrono.NewStandardImpl(cfg.Timezone)
		if err != nil {
			return fmt.Errorf("load timezone: %w", err)
		}

		telemetrySetup, err = libtelemetry.Setup(cmd.Context(), "widgets-cli", cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}

		value := &globals.Value{
			Config: cfg,
			Clock:  clock,
			Tel:    telemetry.SlogAPI{},
			Format: format,
			Color:  !noColor,
			Stdout: cmd.OutOrStdout(),
		}
		if dumpHttp != "" {
			output, err := telemetry.NewFilesystemOutput(dumpHttp)
			if err != nil {
				return fmt.Errorf("create http dump directory: %w", err)
			}
			value.Output = output
		}

		cmd.SetContext(globals.Set(cmd.Context(), value))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return shutdownTelemetry()
	},
}

func shutdownTelemetry() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return telemetrySetup.Shutdown(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", config.DefaultPath, "config file, json5 or yaml")
	flags.StringVar(&format, "format", globals.FormatText, "output format, text or json")
	flags.BoolVar(&noColor, "no-color", false, "disable colors in text output")
	flags.BoolVar(&debug, "debug", false, "enable debug logging")
	flags.StringVar(&dumpHttp, "dump-http", "", "write every http exchange into this directory, old .http dumps in it are removed")
}

func Execute() {
	err := rootCmd.ExecuteContext(serviceutil.SignalContext())
	if errors.Is(err, errWidgetFailed) {
		// PersistentPostRunE is skipped when RunE fails
		err = shutdownTelemetry()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(2)
	}
	if err != nil {
		serviceutil.Fatal("widgets-cli", err)
	}
}
