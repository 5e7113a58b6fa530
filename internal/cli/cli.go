package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vk/backgrid/internal/app"
)

// Environment variables consulted for flags the user did not set.
const (
	EnvLogLevel  = "BACKGRID_LOG_LEVEL"
	EnvLogFormat = "BACKGRID_LOG_FORMAT"
	EnvLogDir    = "BACKGRID_LOG_DIR"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

type runFlags struct {
	pipeline        string
	logDir          string
	logLevel        string
	logFormat       string
	healthcheckPort int
	s3Bucket        string
	s3Prefix        string
	reuse           bool
	envFile         string
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	var cfg *app.Config
	root := &cobra.Command{
		Use:   "backgrid",
		Short: "backgrid - a DAG pipeline runner and portfolio backtester.",
		Long: `backgrid runs a pipeline of computation nodes described in HCL files and
simulates a portfolio trading on the targets the pipeline produces.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(output)
	root.SetErr(output)
	root.SetArgs(args)
	root.AddCommand(newRunCommand(&cfg), newReportCommand(&cfg))

	if err := root.Execute(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if cfg == nil {
		slog.Debug("No command run, exiting.")
		return nil, true, nil
	}
	slog.Debug("CLI parser finished successfully.", "config", cfg)
	return cfg, false, nil
}

func newRunCommand(out **app.Config) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run [PIPELINE_PATH]",
		Short: "Run a pipeline and backtest its targets",
		Long: `Run loads every .hcl file under PIPELINE_PATH, builds the node graph,
executes it and simulates the portfolio described by the portfolio block.

Example:
  backgrid run ./pipelines/momentum
  backgrid run -p ./pipelines/momentum --log-dir ./runs --log-level debug`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.config(cmd, args)
			if err != nil {
				return err
			}
			*out = cfg
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.pipeline, "pipeline", "p", "", "Path to the pipeline file or directory.")
	flags.StringVar(&f.logDir, "log-dir", "", "Directory receiving the portfolio log of each run.")
	flags.StringVar(&f.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.StringVar(&f.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	flags.IntVar(&f.healthcheckPort, "healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	flags.StringVar(&f.s3Bucket, "s3-bucket", "", "Publish the portfolio log to this S3 bucket.")
	flags.StringVar(&f.s3Prefix, "s3-prefix", "", "Key prefix for published portfolio logs.")
	flags.BoolVar(&f.reuse, "reuse", false, "Skip nodes that already hold results for the requested method.")
	flags.StringVar(&f.envFile, "env-file", "", "Read BACKGRID_* defaults from this dotenv file.")
	return cmd
}

func newReportCommand(out **app.Config) *cobra.Command {
	var logLevel, logFormat string
	cmd := &cobra.Command{
		Use:   "report LOG_DIR",
		Short: "Print the holdings and statistics of a portfolio log",
		Long: `Report reads a portfolio log written by run, rebuilds its holdings ledger
and prints the holdings and statistics tables.

Example:
  backgrid report ./runs/3f1c0d2e-7a41-4c8e-9d5b-2a6f1e0c9b17`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.NewConfig(app.Config{
				Report:    args[0],
				LogLevel:  logLevel,
				LogFormat: logFormat,
			})
			if err != nil {
				return err
			}
			*out = cfg
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.StringVar(&logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	return cmd
}

func (f *runFlags) config(cmd *cobra.Command, args []string) (*app.Config, error) {
	env := map[string]string{}
	if f.envFile != "" {
		var err error
		env, err = godotenv.Read(f.envFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read env file %q: %w", f.envFile, err)
		}
	}
	lookup := func(key string) (string, bool) {
		if v, ok := env[key]; ok {
			return v, true
		}
		return os.LookupEnv(key)
	}
	fill := func(flag, key string, dst *string) {
		if cmd.Flags().Changed(flag) {
			return
		}
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	fill("log-level", EnvLogLevel, &f.logLevel)
	fill("log-format", EnvLogFormat, &f.logFormat)
	fill("log-dir", EnvLogDir, &f.logDir)

	path := f.pipeline
	if path == "" && len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return nil, errors.New("a pipeline path is required: pass --pipeline or PIPELINE_PATH")
	}

	return app.NewConfig(app.Config{
		PipelinePath:    path,
		LogDir:          f.logDir,
		LogFormat:       f.logFormat,
		LogLevel:        f.logLevel,
		HealthcheckPort: f.healthcheckPort,
		S3Bucket:        f.s3Bucket,
		S3Prefix:        f.s3Prefix,
		Reuse:           f.reuse,
	})
}
