package main

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/worklens/worklens/internal/autocapture"
	"github.com/worklens/worklens/internal/config"
	"github.com/worklens/worklens/internal/errors"
	"github.com/worklens/worklens/internal/hostenv"
	"github.com/worklens/worklens/internal/ops"
	"github.com/worklens/worklens/internal/session"
	"github.com/worklens/worklens/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config, baseDir string) *cli.App {
	app := &cli.App{
		Name:    "worklens",
		Usage:   "Editor session bookmarks",
		Version: Version,
		Commands: []*cli.Command{
			captureCmd(db, cfg, baseDir),
			quickCmd(db, cfg, baseDir),
			listCmd(db, cfg),
			showCmd(db, cfg),
			restoreCmd(db, cfg),
			deleteCmd(db, cfg),
			noteCmd(db, cfg),
			exportCmd(db, cfg, baseDir),
			importCmd(db, cfg, baseDir),
			templateCmd(db, cfg),
			statsCmd(db, cfg),
			tierCmd(db, cfg),
			upgradeCmd(db, cfg),
			watchCmd(db, cfg, baseDir),
			webCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// captureCmd creates the capture command.
func captureCmd(db *sql.DB, cfg *config.Config, baseDir string) *cli.Command {
	return &cli.Command{
		Name:  "capture",
		Usage: "Capture the current editors, terminals, and git context under a title",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Required: true, Usage: "Session title"},
			&cli.StringFlag{Name: "notes", Aliases: []string{"n"}, Usage: "Free-text note"},
			&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
		},
		Action: func(c *cli.Context) error {
			input := ops.CaptureInput{
				Title:     c.String("title"),
				Notes:     c.String("notes"),
				Tags:      parseTags(c.String("tags")),
				Dir:       workingDir(),
				StatePath: hostenv.StatePath(cfg, baseDir),
			}

			output, err := ops.Capture(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// quickCmd creates the quick command.
func quickCmd(db *sql.DB, cfg *config.Config, baseDir string) *cli.Command {
	return &cli.Command{
		Name:  "quick",
		Usage: "Capture immediately with a generated title",
		Action: func(c *cli.Context) error {
			input := ops.QuickInput{
				Dir:       workingDir(),
				StatePath: hostenv.StatePath(cfg, baseDir),
			}

			output, err := ops.Quick(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List stored sessions, most recent first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "scope", Aliases: []string{"s"}, Value: "all", Usage: "Filter: all|workspace|none"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ListInput{
				Scope: ops.ListScope(c.String("scope")),
				Dir:   workingDir(),
			}

			output, err := ops.List(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// showCmd creates the show command.
func showCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a session by ID",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "markdown", Aliases: []string{"m"}, Usage: "Render as markdown instead of JSON"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Get(c.Context, db, cfg, ops.GetInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			if c.Bool("markdown") {
				fmt.Println(output.Session.Markdown())
				return nil
			}

			return outputJSON(output)
		},
	}
}

// restoreCmd creates the restore command.
func restoreCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "restore",
		Usage:     "Restore a session: reopen its files, cursors, and terminals",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Restore even when the current workspace differs"},
		},
		Action: func(c *cli.Context) error {
			input := ops.RestoreInput{
				ID:   c.Args().First(),
				Dir:  workingDir(),
				Logf: logStderr,
			}

			if c.Bool("force") {
				input.Confirm = func(string) bool { return true }
			} else if isTerminal() {
				input.Confirm = promptYesNo
			}

			output, err := ops.Restore(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			fmt.Println(output.Summary)
			return nil
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a session",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Delete(c.Context, db, cfg, ops.DeleteInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// noteCmd creates the note command.
func noteCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "note",
		Usage:     "Attach a note to a session (flag value or piped stdin)",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "text", Usage: "Note text"},
		},
		Action: func(c *cli.Context) error {
			notes := c.String("text")
			if notes == "" && stdinHasData() {
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				notes = text
			}

			output, err := ops.AddNote(c.Context, db, cfg, ops.AddNoteInput{
				ID:    c.Args().First(),
				Notes: notes,
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config, baseDir string) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export sessions to a versioned JSON file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.worklens/exports/sessions-<date>.json)"},
			&cli.StringFlag{Name: "ids", Usage: "Comma-separated session IDs (default: everything)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ExportInput{
				Path:    c.String("path"),
				IDs:     parseTags(c.String("ids")),
				BaseDir: baseDir,
			}

			output, err := ops.Export(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(db *sql.DB, cfg *config.Config, baseDir string) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import sessions from an export file (all-or-nothing)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Import file path"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ImportInput{
				Path:    c.String("path"),
				BaseDir: baseDir,
			}

			output, err := ops.Import(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// templateCmd creates the template command group.
func templateCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "template",
		Usage: "Manage session templates",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List templates, built-ins first",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Filter by category"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.Templates(c.Context, db, cfg, ops.TemplatesInput{
						Category: c.String("category"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "apply",
				Usage:     "Create a session from a template",
				ArgsUsage: "<template-id>",
				Action: func(c *cli.Context) error {
					output, err := ops.ApplyTemplate(c.Context, db, cfg, ops.ApplyTemplateInput{
						ID: c.Args().First(),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "save",
				Usage: "Save an existing session as a reusable template",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "session", Aliases: []string{"s"}, Required: true, Usage: "Source session ID"},
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true, Usage: "Template name"},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Template description"},
					&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Template category"},
					&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.SaveTemplate(c.Context, db, cfg, ops.SaveTemplateInput{
						SessionID:   c.String("session"),
						Name:        c.String("name"),
						Description: c.String("description"),
						Category:    c.String("category"),
						Tags:        parseTags(c.String("tags")),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a custom template",
				ArgsUsage: "<template-id>",
				Action: func(c *cli.Context) error {
					output, err := ops.DeleteTemplate(c.Context, db, cfg, ops.DeleteTemplateInput{
						ID: c.Args().First(),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// statsCmd creates the stats command.
func statsCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show productivity metrics over the stored history",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "report", Aliases: []string{"r"}, Usage: "Print the markdown report instead of JSON"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Stats(c.Context, db, cfg, ops.StatsInput{})
			if err != nil {
				return outputError(err)
			}

			if c.Bool("report") {
				fmt.Println(output.Report)
				return nil
			}

			return outputJSON(output)
		},
	}
}

// tierCmd creates the tier command.
func tierCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "tier",
		Usage: "Show the active subscription tier and usage",
		Action: func(c *cli.Context) error {
			output, err := ops.TierStatus(c.Context, db, cfg, ops.TierStatusInput{})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// upgradeCmd creates the upgrade command.
func upgradeCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "upgrade",
		Usage: "Activate the pro tier",
		Action: func(c *cli.Context) error {
			output, err := ops.Upgrade(c.Context, db, cfg, ops.UpgradeInput{})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// watchCmd creates the watch command.
func watchCmd(db *sql.DB, cfg *config.Config, baseDir string) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Automatically capture before branch switches (and on idle, if enabled)",
		Action: func(c *cli.Context) error {
			if cfg.AutoCapture.Disabled {
				return outputError(errors.NewInvalidRequest("automatic capture is disabled in config"))
			}

			svc := &autocapture.Service{
				Config:    cfg.AutoCapture,
				Dir:       workingDir(),
				StatePath: hostenv.StatePath(cfg, baseDir),
				Save: func(s *session.Session) error {
					return ops.SaveCaptured(db, cfg, s)
				},
				Logf: logStderr,
			}

			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc.Start(ctx)
			defer svc.Stop()

			fmt.Fprintln(os.Stderr, "watching for branch switches; press Ctrl-C to stop")
			<-ctx.Done()
			return nil
		},
	}
}

// webCmd creates the web command.
func webCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Serve the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Value: 8390, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(db, cfg, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if wErr, ok := err.(*errors.Error); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", wErr.Code, wErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// workingDir returns the current directory, falling back to ".".
func workingDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return dir
}

// logStderr is the Logf hook for operations that narrate progress.
func logStderr(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// promptYesNo asks the user for confirmation on the terminal.
func promptYesNo(message string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", message)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// parseTags splits a comma-separated string into a slice of tags.
func parseTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
