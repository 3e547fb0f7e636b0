package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/evanschultz/tick/internal/app"
	"github.com/evanschultz/tick/internal/config"
	"github.com/evanschultz/tick/internal/domain"
	"github.com/evanschultz/tick/internal/report"
	"github.com/spf13/cobra"
)

// listWidth is the wrap width for rendered list output.
const listWidth = 100

func newAddCommand(opts *rootOptions) *cobra.Command {
	var category, priority, deadline string
	cmd := &cobra.Command{
		Use:   "add TEXT...",
		Short: "Add a task to the top of the list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := parseAddInput(strings.Join(args, " "), category, priority, deadline)
			if err != nil {
				return err
			}
			return withSession(cmd.Context(), opts, "add", func(s *session) error {
				task, err := s.svc.AddTask(cmd.Context(), in)
				if isValidationError(err) {
					s.logger.Debug("add rejected", "err", err)
					return nil
				}
				if err != nil {
					return fmt.Errorf("add task: %w", err)
				}
				_, _ = fmt.Fprintf(opts.stdout, "added %d: %s\n", task.ID, task.Text)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "task category")
	cmd.Flags().StringVarP(&priority, "priority", "p", string(domain.PriorityLow), "priority (low|medium|high)")
	cmd.Flags().StringVarP(&deadline, "deadline", "d", "", "deadline date (YYYY-MM-DD)")
	return cmd
}

// parseAddInput converts flag values into service input. Only the deadline is checked
// here since it must parse as a date; text and priority are left to the service.
func parseAddInput(text, category, priority, deadline string) (app.AddTaskInput, error) {
	p := domain.Priority(strings.ToLower(strings.TrimSpace(priority)))
	due, err := domain.ParseDeadline(deadline)
	if err != nil {
		return app.AddTaskInput{}, fmt.Errorf("add task: %w: %q", err, deadline)
	}
	return app.AddTaskInput{Text: text, Category: category, Priority: p, Deadline: due}, nil
}

func newListCommand(opts *rootOptions) *cobra.Command {
	var filter string
	var plain bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show tasks with summary stats",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, err := domain.ParseFilterMode(filter)
			if err != nil {
				return fmt.Errorf("list tasks: %w: %q", err, filter)
			}
			return withSession(cmd.Context(), opts, "list", func(s *session) error {
				markdown := report.Markdown(s.svc.FilterTasks(mode), s.svc.Stats(), mode, time.Now())
				if plain {
					_, _ = fmt.Fprint(opts.stdout, markdown)
					return nil
				}
				renderer := report.Renderer{Style: glamourStyle(s.cfg.UI.Theme, s.svc.Theme())}
				_, _ = fmt.Fprintln(opts.stdout, renderer.Render(markdown, listWidth))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", string(domain.FilterAll), "filter mode (all|active|completed)")
	cmd.Flags().BoolVar(&plain, "plain", false, "print raw markdown")
	return cmd
}

// glamourStyle picks the markdown style: a forced config theme wins, then the stored
// preference, then dark.
func glamourStyle(mode config.ThemeMode, stored app.Theme) string {
	switch {
	case mode == config.ThemeLight:
		return "light"
	case mode == config.ThemeDark:
		return "dark"
	case stored == app.ThemeLight:
		return "light"
	default:
		return "dark"
	}
}

// isValidationError reports input the service rejects without changing state. Such
// rejections are silent, like the interactive form.
func isValidationError(err error) bool {
	return errors.Is(err, domain.ErrInvalidText) || errors.Is(err, domain.ErrInvalidPriority)
}

func newToggleCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID",
		Short: "Flip a task between active and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd.Context(), opts, "toggle", func(s *session) error {
				task, ok, err := s.svc.ToggleCompleted(cmd.Context(), id)
				if !ok {
					_, _ = fmt.Fprintf(opts.stdout, "%d unchanged\n", id)
					return nil
				}
				if err != nil {
					return fmt.Errorf("toggle task %d: %w", id, err)
				}
				state := "active"
				if task.Completed {
					state = "completed"
				}
				_, _ = fmt.Fprintf(opts.stdout, "%d is %s\n", task.ID, state)
				return nil
			})
		},
	}
}

func newEditCommand(opts *rootOptions) *cobra.Command {
	var text, category, priority, deadline string
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a task's text, category, priority or deadline",
		Long:  "Edit a task. Flags set fields directly; without flags each field is prompted with its current value.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			dialogs := newPromptDialogs(opts.stdin, opts.stderr)
			flags := cmd.Flags()
			if flags.Changed("text") {
				dialogs.edit.text = &text
			}
			if flags.Changed("category") {
				dialogs.edit.category = &category
			}
			if flags.Changed("priority") {
				dialogs.edit.priority = &priority
			}
			if flags.Changed("deadline") {
				if _, err := domain.ParseDeadline(deadline); err != nil {
					return fmt.Errorf("edit task %d: %w: %q", id, err, deadline)
				}
				dialogs.edit.deadline = &deadline
			}

			return withSession(cmd.Context(), opts, "edit", func(s *session) error {
				task, changed, err := s.svc.EditTask(cmd.Context(), id, dialogs)
				if isValidationError(err) {
					s.logger.Debug("edit rejected", "id", id, "err", err)
					changed, err = false, nil
				}
				if err != nil {
					return fmt.Errorf("edit task %d: %w", id, err)
				}
				if !changed {
					_, _ = fmt.Fprintf(opts.stdout, "%d unchanged\n", id)
					return nil
				}
				_, _ = fmt.Fprintf(opts.stdout, "updated %d: %s\n", task.ID, task.Text)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "new task text")
	cmd.Flags().StringVarP(&category, "category", "c", "", "new category (blank resets to the default)")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "new priority (low|medium|high)")
	cmd.Flags().StringVarP(&deadline, "deadline", "d", "", "new deadline (YYYY-MM-DD, - clears)")
	return cmd
}

func newDeleteCommand(opts *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a task after confirmation",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			dialogs := newPromptDialogs(opts.stdin, opts.stderr)
			dialogs.assumeYes = yes
			return withSession(cmd.Context(), opts, "delete", func(s *session) error {
				removed, err := s.svc.DeleteTask(cmd.Context(), id, dialogs)
				if err != nil {
					return fmt.Errorf("delete task %d: %w", id, err)
				}
				switch {
				case removed:
				case dialogs.confirmed:
					_, _ = fmt.Fprintf(opts.stdout, "%d unchanged\n", id)
					return nil
				default:
					_, _ = fmt.Fprintln(opts.stdout, "cancelled")
					return nil
				}
				_, _ = fmt.Fprintf(opts.stdout, "deleted %d\n", id)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newStatsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print task counts and completion percentage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), opts, "stats", func(s *session) error {
				_, _ = fmt.Fprint(opts.stdout, report.Stats(s.svc.Stats()))
				return nil
			})
		},
	}
}

func newThemeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [dark|light]",
		Short:     "Show or store the theme preference",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(app.ThemeDark), string(app.ThemeLight)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), opts, "theme", func(s *session) error {
				if len(args) == 0 {
					current := string(s.svc.Theme())
					if current == "" {
						current = string(config.ThemeAuto)
					}
					_, _ = fmt.Fprintln(opts.stdout, current)
					return nil
				}
				theme, err := app.ParseTheme(args[0])
				if err != nil {
					return fmt.Errorf("set theme %q: %w", args[0], err)
				}
				if err := s.svc.SetTheme(cmd.Context(), theme); err != nil {
					return fmt.Errorf("set theme: %w", err)
				}
				_, _ = fmt.Fprintln(opts.stdout, theme)
				return nil
			})
		},
	}
}

func newExportCommand(opts *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the task list as a JSON snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), opts, "export", func(s *session) error {
				encoded, err := json.MarshalIndent(s.svc.ExportSnapshot(), "", "  ")
				if err != nil {
					return fmt.Errorf("encode export: %w", err)
				}
				encoded = append(encoded, '\n')

				if out == "" || out == "-" {
					_, err = opts.stdout.Write(encoded)
					return err
				}
				if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
					return fmt.Errorf("create export dir: %w", err)
				}
				if err := os.WriteFile(out, encoded, 0o644); err != nil {
					return fmt.Errorf("write export file: %w", err)
				}
				s.logger.Info("tasks exported", "path", out, "tasks", s.svc.Stats().Total)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file (- for stdout)")
	return cmd
}

func newImportCommand(opts *rootOptions) *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the task list from a snapshot or a bare task array",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			content, err := os.ReadFile(in)
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}
			snap, err := app.DecodeSnapshot(content)
			if err != nil {
				return fmt.Errorf("decode import file: %w", err)
			}
			return withSession(cmd.Context(), opts, "import", func(s *session) error {
				if err := s.svc.ImportSnapshot(cmd.Context(), snap); err != nil {
					return fmt.Errorf("import snapshot: %w", err)
				}
				_, _ = fmt.Fprintf(opts.stdout, "imported %d tasks\n", len(snap.Tasks))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&in, "in", "i", "", "input JSON file")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func newPathsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths, configPath, cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			w := opts.stdout
			_, _ = fmt.Fprintf(w, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(w, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(w, "config: %s\n", configPath)
			_, _ = fmt.Fprintf(w, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(w, "backend: %s\n", cfg.Storage.Backend)
			_, _ = fmt.Fprintf(w, "db: %s\n", cfg.Database.Path)
			_, _ = fmt.Fprintf(w, "file: %s\n", cfg.StoreFilePath())
			return nil
		},
	}
}

func newInitCommand(opts *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, configPath, dbPath, _, err := resolvePaths(opts)
			if err != nil {
				return err
			}
			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("config %q already exists (use --force to overwrite)", configPath)
			}
			if err := config.Write(configPath, config.Default(dbPath)); err != nil {
				return fmt.Errorf("write config %q: %w", configPath, err)
			}
			_, _ = fmt.Fprintf(opts.stdout, "wrote %s\n", configPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}
