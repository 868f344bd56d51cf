package cli

import (
	"fmt"
	"os"
	"strings"

	"bvf-cli/internal/format"
	"bvf-cli/internal/model"
	"bvf-cli/internal/store"
	"bvf-cli/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	Workspace  string
	PrettyJSON bool
	Format     string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "bvf",
		Short:        "Business Value Framework (local-first) CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive board editor
  bvf

  # Scriptable commands
  bvf frameworks list
  bvf items add --category pillar
  bvf layout place <item-id> pillar-1

  # Direct framework lookup (shortcut for: bvf frameworks show <bvf-id>)
  bvf bvf-x7k2
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("BVF_DIR", ""), "Path to store dir (advanced: overrides workspace resolution; use for fixtures/tests)")
	cmd.PersistentFlags().StringVar(&app.Workspace, "workspace", envOr("BVF_WORKSPACE", ""), "Workspace name (default: 'default')")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("BVF_FORMAT", "json"), "Output format (json)")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newStatusCmd(app))
	cmd.AddCommand(newWorkspaceCmd(app))
	cmd.AddCommand(newFrameworksCmd(app))
	cmd.AddCommand(newItemsCmd(app))
	cmd.AddCommand(newLayoutCmd(app))
	cmd.AddCommand(newLabelsCmd(app))
	cmd.AddCommand(newFinancialsCmd(app))
	cmd.AddCommand(newBoardCmd(app))
	cmd.AddCommand(newEventsCmd(app))

	return cmd
}

func runTUI(app *App) error {
	db, s, err := loadDB(app)
	if err != nil {
		return err
	}
	return tui.Run(s, db)
}

func loadDB(app *App) (*store.DB, store.Store, error) {
	dir := app.Dir
	if dir == "" {
		// Resolution order:
		// 1) --dir / BVF_DIR
		// 2) nearest .bvf/ walking up from the working directory
		// 3) --workspace / BVF_WORKSPACE
		// 4) ~/.bvf/config.json currentWorkspace
		// 5) the implicit "default" workspace
		if cwd, err := os.Getwd(); err == nil && app.Workspace == "" {
			if d, ok := store.DiscoverDir(cwd); ok {
				dir = d
			}
		}
		if dir == "" {
			ws := app.Workspace
			if ws == "" {
				if cfg, err := store.LoadConfig(); err == nil && cfg.CurrentWorkspace != "" {
					ws = cfg.CurrentWorkspace
				}
			}
			if ws == "" {
				ws = "default"
			}
			d, err := store.WorkspaceDir(ws)
			if err != nil {
				return nil, store.Store{}, err
			}
			app.Workspace = ws
			dir = d
		}
		app.Dir = dir
	}

	s := store.Store{Dir: dir}
	db, err := s.Load()
	if err != nil {
		return nil, s, err
	}
	return db, s, nil
}

// resolveFramework picks the command's target framework: the --bvf flag
// when set, otherwise the active framework.
func resolveFramework(db *store.DB, bvfID string) (*model.Framework, error) {
	bvfID = strings.TrimSpace(bvfID)
	if bvfID != "" {
		fw, ok := db.FindFramework(bvfID)
		if !ok {
			return nil, errNotFound("framework", bvfID)
		}
		return fw, nil
	}
	fw, ok := db.ActiveFramework()
	if !ok {
		return nil, fmt.Errorf("no active framework; run `bvf frameworks list`")
	}
	return fw, nil
}

// saveAndLog persists the db and appends an event in one step. The event
// append is best-effort; a failed append never fails the command.
func saveAndLog(s store.Store, db *store.DB, typ, entityID string, payload any) error {
	if err := s.Save(db); err != nil {
		return err
	}
	_ = s.AppendEvent(typ, entityID, payload)
	return nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
