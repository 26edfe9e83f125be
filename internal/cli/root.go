// Package cli is the assoc command: it detects what state exists around the
// working directory, wires the watcher, the tracker poller and the worker
// supervisor to the event bus, and hands everything to the dashboard.
package cli

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

// Build information, set by goreleaser via ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "assoc",
	Short: "Live dashboard for Claude Code sessions, teams and trackers",
	Long: `assoc watches the on-disk state Claude Code leaves behind (session
transcripts, agent teams, todo lists, plans), the project's git status and
the trackers reachable from this machine (GitHub via gh, Jira via acli,
Linear via its API), and renders it all as a live terminal dashboard.

Run it from a project directory:

  cd ~/code/myproject && assoc

Tabs appear based on what is detected: no gh, no PR tab; no Jira CLI, no
Jira tab. Press ? inside the dashboard for keys.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard()
	},
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if short {
				fmt.Println(Version)
				return
			}
			fmt.Printf("assoc version %s\n", Version)
			fmt.Printf("  commit:    %s\n", Commit)
			fmt.Printf("  built:     %s\n", Date)
			fmt.Printf("  go:        %s\n", runtime.Version())
			fmt.Printf("  platform:  %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")
	return cmd
}
