// Package cli implements rescuectl, the operator command line for the
// rescue backend. It shares the console core with the gateway and keeps the
// token in a local state file between invocations.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"rescue-console/internal/console"
	"rescue-console/internal/storage"
)

type options struct {
	backend    string
	statePath  string
	passphrase string
	timeout    time.Duration
	jsonOutput bool

	console *console.Console
	nav     *terminalNavigator
}

func defaultStatePath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "rescuectl", "state.json")
	}
	return ".rescuectl-state.json"
}

// NewRootCmd builds the command tree. Output goes to the command's writers
// so tests can capture it.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "rescuectl",
		Short:         "Operate the mountain rescue backend from a terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.open(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if opts.console != nil {
				opts.console.Close()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.backend, "backend", envOr("BACKEND_URL", "http://localhost:8000/api"), "rescue backend base URL")
	flags.StringVar(&opts.statePath, "state", envOr("RESCUECTL_STATE", defaultStatePath()), "file holding the session token")
	flags.StringVar(&opts.passphrase, "passphrase", os.Getenv("STORAGE_PASSPHRASE"), "seal the state file with this passphrase")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "per-request timeout")
	flags.BoolVar(&opts.jsonOutput, "json", false, "print JSON instead of tables")

	root.AddCommand(
		loginCmd(opts),
		logoutCmd(opts),
		whoamiCmd(opts),
		urgenciesCmd(opts),
		shiftsCmd(opts),
		employeesCmd(opts),
		activitiesCmd(opts),
		adminCmd(opts),
	)

	return root
}

func (o *options) open(cmd *cobra.Command) error {
	local, err := storage.NewFile(o.statePath, o.passphrase)
	if err != nil {
		return fmt.Errorf("open state file: %w", err)
	}

	o.nav = &terminalNavigator{out: cmd.ErrOrStderr(), view: viewFor(cmd)}
	c, err := console.New(console.Options{
		BackendURL:     o.backend,
		Local:          local,
		Navigator:      o.nav,
		RequestTimeout: o.timeout,
	})
	if err != nil {
		return err
	}
	o.console = c
	return nil
}

// viewFor names the view a command stands for; login, logout and whoami
// work without a session.
func viewFor(cmd *cobra.Command) string {
	switch cmd.Name() {
	case "login", "logout", "whoami":
		return "login"
	}
	for c := cmd; c != nil && c.Parent() != nil; c = c.Parent() {
		if c.Parent().Parent() == nil {
			return c.Name()
		}
	}
	return cmd.Name()
}

func (o *options) printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Execute runs rescuectl against os.Args.
func Execute(ctx context.Context) int {
	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "\033[31mError:\033[0m %s\n", err)
		return 1
	}
	return 0
}

var errStopWalk = errors.New("stop walk")
