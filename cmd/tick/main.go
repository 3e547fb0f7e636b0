package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/evanschultz/tick/internal/platform"
	"github.com/spf13/cobra"
)

// version is stamped at build time.
var version = "dev"

// program is the subset of tea.Program the CLI drives.
type program interface {
	Run() (tea.Model, error)
}

// programFactory builds the TUI program; tests swap it for a fake.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// rootOptions holds the global flags shared by every command.
type rootOptions struct {
	configPath string
	dbPath     string
	appName    string
	devMode    bool
	storage    string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// run builds the command tree and executes it. Errors are rendered by fang.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	opts := &rootOptions{stdin: stdin, stdout: stdout, stderr: stderr}
	root := newRootCommand(opts)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	return fang.Execute(ctx, root,
		fang.WithVersion(version),
		fang.WithoutManpage(),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	)
}

func newRootCommand(opts *rootOptions) *cobra.Command {
	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("TICK_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	appName := platform.DefaultAppName
	if envApp := strings.TrimSpace(os.Getenv("TICK_APP_NAME")); envApp != "" {
		appName = envApp
	}

	root := &cobra.Command{
		Use:   "tick",
		Short: "A small to-do list for the terminal",
		Long:  "tick keeps one list of tasks with categories, priorities and deadlines.\nRun without a command to open the interactive list.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML")
	flags.StringVar(&opts.dbPath, "db", "", "path to the task database")
	flags.StringVar(&opts.appName, "app", appName, "application name for config/data path resolution")
	flags.BoolVar(&opts.devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")
	flags.StringVar(&opts.storage, "storage", "", "storage backend override (sqlite|file)")

	root.AddCommand(
		newAddCommand(opts),
		newListCommand(opts),
		newToggleCommand(opts),
		newEditCommand(opts),
		newDeleteCommand(opts),
		newStatsCommand(opts),
		newThemeCommand(opts),
		newExportCommand(opts),
		newImportCommand(opts),
		newPathsCommand(opts),
		newInitCommand(opts),
	)
	return root
}

// parseBoolEnv reads a boolean environment variable; ok is false when unset or malformed.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return value, true
}

// parseTaskID parses a positional task id.
func parseTaskID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", raw)
	}
	return id, nil
}
