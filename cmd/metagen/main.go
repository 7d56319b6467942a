package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildRoot creates the root command and wires all subcommands.
func buildRoot() *cobra.Command {
	globalFlags := &GlobalFlags{}
	launchFlags := &LaunchFlags{}
	statusFlags := &StatusFlags{}
	stopFlags := &StopFlags{}
	logsFlags := &LogsFlags{}
	historyFlags := &HistoryFlags{}
	serveFlags := &ServeFlags{}

	c := &command{global: globalFlags}

	root := createRootCommand(globalFlags, c)
	root.AddCommand(
		createLaunchCommand(c, launchFlags),
		createStatusCommand(c, statusFlags),
		createStopCommand(c, stopFlags),
		createLogsCommand(c, logsFlags),
		createHistoryCommand(c, historyFlags),
		createServeCommand(c, serveFlags),
	)
	return root
}

// createRootCommand creates the root command with persistent flags.
func createRootCommand(flags *GlobalFlags, c *command) *cobra.Command {
	root := &cobra.Command{
		Use:   "metagen",
		Short: "Background launcher for the stretching-data metadata generator",
		Long: `Metagen launches the metadata-generation script as a detached
background process, redirects its output to a timestamped log file, and
records its PID so the run can be inspected or stopped later.

Examples:
  metagen launch                                   # defaults, process all items
  metagen launch data/filtered/my.json out.json 50 # positional overrides
  metagen status                                   # is the last job still running?
  metagen stop                                     # terminate the last job
  metagen logs -n 40                               # tail the newest job log`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			c.close()
		},
	}

	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to TOML config file (optional)")
	root.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "launcher log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&flags.NoColor, "no-color", false, "disable colored console logging")

	return root
}

// createLaunchCommand creates the launch subcommand.
func createLaunchCommand(c *command, f *LaunchFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "launch [input_file] [output_file] [limit]",
		Short: "Launch a metadata-generation job in the background",
		Long: `Launch the generator as a detached background process. Input,
output, and item limit may be given positionally or via flags; omitted
values fall to the documented defaults. The launcher returns as soon as
the process is spawned; it does not wait for the job to finish.

Examples:
  metagen launch
  metagen launch data/filtered/filtered_data.json
  metagen launch --limit=10
  metagen launch in.json out.json 50`,
		Args: cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Launch(*f, args)
		},
	}

	cmd.Flags().StringVar(&f.Input, "input", "", "input data file (default: filtered data path)")
	cmd.Flags().StringVar(&f.Output, "output", "", "output data file (default: enhanced data path)")
	cmd.Flags().IntVar(&f.Limit, "limit", 0, "max items to process (0 = process all)")
	cmd.Flags().StringVar(&f.Generator, "generator", "", "generator command override")
	cmd.Flags().StringVar(&f.WorkDir, "work-dir", "", "working directory for the generator")

	return cmd
}

// createStatusCommand creates the status subcommand.
func createStatusCommand(c *command, f *StatusFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report whether a launched job is still running",
		Long: `Report the status of a launched job. By default the most recent
job record is used; --pid probes an explicit PID and --job selects a
specific job record.

Examples:
  metagen status
  metagen status --pid=12345
  metagen status --job=6f1b...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Status(*f)
		},
	}

	cmd.Flags().IntVar(&f.PID, "pid", 0, "probe an explicit PID")
	cmd.Flags().StringVar(&f.JobID, "job", "", "job record id")

	return cmd
}

// createStopCommand creates the stop subcommand.
func createStopCommand(c *command, f *StopFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Terminate a launched job",
		Long: `Terminate a launched job: SIGTERM first, then SIGKILL once the
wait elapses. Defaults to the PID in the last-PID file.

Examples:
  metagen stop
  metagen stop --pid=12345 --wait=10s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Stop(*f)
		},
	}

	cmd.Flags().IntVar(&f.PID, "pid", 0, "PID to stop (default: last launched)")
	cmd.Flags().DurationVar(&f.Wait, "wait", 5*time.Second, "grace period before SIGKILL")

	return cmd
}

// createLogsCommand creates the logs subcommand.
func createLogsCommand(c *command, f *LogsFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the newest job log",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Logs(*f)
		},
	}

	cmd.Flags().IntVarP(&f.Lines, "lines", "n", 40, "number of trailing lines to print")
	cmd.Flags().BoolVarP(&f.Follow, "follow", "f", false, "print the tail -f command instead of a snapshot")

	return cmd
}

// createHistoryCommand creates the history subcommand.
func createHistoryCommand(c *command, f *HistoryFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent launch and stop events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.History(*f)
		},
	}

	cmd.Flags().IntVarP(&f.N, "count", "n", 20, "number of events to list")

	return cmd
}

// createServeCommand creates the serve subcommand.
func createServeCommand(c *command, f *ServeFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API for launching and inspecting jobs",
		Long: `Run a small HTTP API: POST /api/launch, POST /api/stop,
GET /api/status, GET /api/jobs, and Prometheus metrics on /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Serve(*f)
		},
	}

	cmd.Flags().StringVar(&f.Listen, "listen", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&f.BasePath, "base-path", "", "API base path (default from config, /api)")

	return cmd
}
