package main

import (
	"fmt"
	"os"
	goruntime "runtime"

	"github.com/spf13/cobra"

	"github.com/leonletto/lockrun/internal/cli"
	"github.com/leonletto/lockrun/internal/config"
)

var (
	// Build info (set via ldflags).
	Version = "dev"
	Build   = "unknown"
)

var (
	// Global flags.
	flagQuiet   bool
	flagVerbose bool
	flagJSON    bool
)

func main() {
	exitCode := 0

	var flags config.Flags
	rootCmd := &cobra.Command{
		Use:   "lockrun [flags] -- command [args...]",
		Short: "Run a command under an exclusive file lock",
		Long: `Lockrun serializes runs of a command with an exclusive file lock,
so recurring jobs (cron entries, timers) never overlap.

The lock is an OS advisory lock on the lock file: it is released
automatically when the holder exits, even after a crash or SIGKILL.
The file records the holder's pid for diagnostics.

By default lockrun waits until the lock is free. Use --wait to bound
the wait, or --no-wait to give up immediately when another instance
is running. Use --timeout to bound the command itself; a command
that outlives it is terminated (politely first, then forcibly) and
lockrun exits 124.

Examples:
  lockrun -- backup.sh --full          # derived lock path, wait forever
  lockrun -n -- backup.sh              # skip this run if one is active
  lockrun -w 300 -t 3600 -- sync.sh    # wait up to 5m, run at most 1h
  lockrun -l /run/lock/job.lock -- job # explicit lock file`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags, args)
			if err != nil {
				return err
			}
			exitCode = cli.Run(cfg, cli.RunOptions{Quiet: flagQuiet, Verbose: flagVerbose})
			return nil
		},
	}

	rootCmd.Flags().StringVarP(&flags.LockPath, "lockfile", "l", "", "Lock file path (or LOCKRUN_LOCKFILE; derived from the command if unset)")
	rootCmd.Flags().IntVarP(&flags.WaitSecs, "wait", "w", 0, "Max seconds to wait for the lock (0 = wait forever)")
	rootCmd.Flags().IntVarP(&flags.TimeoutSecs, "timeout", "t", 0, "Max seconds the command may run (0 = unlimited)")
	rootCmd.Flags().BoolVarP(&flags.NoWait, "no-wait", "n", false, "Fail immediately if the lock is held")

	rootCmd.PersistentFlags().BoolVar(&flagQuiet, "quiet", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Debug output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "JSON output for scripting")

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("lockrun v{{.Version}} (build: " + Build + ", " + goruntime.Version() + ")\n")

	rootCmd.AddCommand(checkCmd(&exitCode))
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if exitCode == 0 {
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}

func checkCmd(exitCode *int) *cobra.Command {
	var lockPath string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report whether a lock is currently held",
		Long: `Check probes the lock file without running anything and without
disturbing a holder. Exits 0 when the lock is free, 1 when held.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if lockPath == "" {
				lockPath = os.Getenv("LOCKRUN_LOCKFILE")
			}
			if lockPath == "" {
				return fmt.Errorf("check needs --lockfile (or LOCKRUN_LOCKFILE)")
			}
			code, err := cli.Check(os.Stdout, lockPath, flagJSON)
			if err != nil {
				return err
			}
			*exitCode = code
			return nil
		},
	}
	cmd.Flags().StringVarP(&lockPath, "lockfile", "l", "", "Lock file path to probe")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("lockrun v%s (build: %s, %s)\n", Version, Build, goruntime.Version())
		},
	}
}
