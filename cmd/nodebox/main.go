package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/nodebox-sh/nodebox/internal/config"
	"github.com/nodebox-sh/nodebox/internal/logging"
	"github.com/nodebox-sh/nodebox/internal/logview"
	"github.com/nodebox-sh/nodebox/internal/runtime"
	"github.com/nodebox-sh/nodebox/internal/sandbox"
	"github.com/nodebox-sh/nodebox/internal/snapshot"
)

// errUsage marks the "no subcommand" case: help was already printed, exit 1.
var errUsage = errors.New("usage")

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode maps errors to process exit codes: lifecycle violations and usage
// errors are 1, delegated commands propagate their own exit status.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "nodebox",
		Short: "Nodebox — run a containerized Algorand node sandbox",
		Long: `nodebox manages a local node sandbox: a named container plus a
bind-mounted data directory. It builds the node image, seeds the data
directory for a chosen network, and forwards operational commands to the
node inside the container.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(verbose, nil)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Help()
			return errUsage
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(
		upCmd(),
		downCmd(),
		restartCmd(),
		enterCmd(),
		statusCmd(),
		logsCmd(),
		goalCmd(),
		cleanCmd(),
		testCmd(),
	)
	return root
}

// newManager wires the lifecycle manager against the real docker runtime and
// HTTP fetcher, rooted at the current directory.
func newManager() (*sandbox.Manager, error) {
	rootDir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(rootDir)
	if err != nil {
		return nil, err
	}
	return sandbox.NewManager(rootDir, cfg, runtime.NewDocker(), snapshot.NewHTTPFetcher()), nil
}

func upCmd() *cobra.Command {
	var useSnapshot bool

	cmd := &cobra.Command{
		Use:   "up [network]",
		Short: "Create or resume the sandbox (networks: mainnet, testnet, betanet; default testnet)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rootDir, err := os.Getwd()
			if err != nil {
				return err
			}
			// Materialize the default config on first use so operators can
			// find and edit it.
			if !config.Exists(rootDir) {
				if err := config.Save(rootDir, config.Default()); err != nil {
					logging.Warn("could not write default config", "error", err)
				}
			}

			mgr, err := newManager()
			if err != nil {
				return err
			}

			req := sandbox.LaunchRequest{UseSnapshot: useSnapshot}
			if len(args) == 1 {
				req.Network = args[0]
			}
			return mgr.Up(context.Background(), req)
		},
	}
	cmd.Flags().BoolVarP(&useSnapshot, "use-snapshot", "s", false, "seed the data directory from the network's ledger snapshot")
	return cmd
}

func downCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Stop the sandbox container",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager()
			if err != nil {
				return err
			}
			if err := mgr.Down(); err != nil {
				return err
			}
			fmt.Println("Sandbox stopped.")
			return nil
		},
	}
}

func restartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Restart the sandbox container",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager()
			if err != nil {
				return err
			}
			if err := mgr.Restart(); err != nil {
				return err
			}
			fmt.Println("Sandbox restarted.")
			return nil
		},
	}
}

func enterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enter",
		Short: "Open an interactive shell inside the sandbox container",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager()
			if err != nil {
				return err
			}
			return mgr.Enter()
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the node's sync status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager()
			if err != nil {
				return err
			}
			return mgr.Status()
		},
	}
}

func logsCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "logs [raw]",
		Short:     "Follow the node log (raw streams unformatted lines)",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"raw"},
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager()
			if err != nil {
				return err
			}

			tail, err := mgr.TailLogs()
			if err != nil {
				return err
			}

			if len(args) == 1 && args[0] == "raw" {
				defer tail.Close()
				_, err := io.Copy(os.Stdout, tail)
				return err
			}
			return logview.Run(tail, "nodebox node.log")
		},
	}
}

func goalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "goal [args...]",
		Short: "Forward a command to the node's goal binary",
		// goal's own flags must pass through untouched.
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager()
			if err != nil {
				return err
			}
			return mgr.Goal(args)
		},
	}
}

func cleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove the container, its images, and the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager()
			if err != nil {
				return err
			}
			return mgr.Clean()
		},
	}
}

func testCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Run sandbox diagnostics (goal probes + REST status check)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager()
			if err != nil {
				return err
			}
			return mgr.Test(context.Background())
		},
	}
}
