package cli

import (
	"github.com/spf13/cobra"

	"bvf-cli/internal/model"
)

func newStatusCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show workspace status (active framework, pool and board sizes)",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			var active map[string]any
			if fw, ok := db.ActiveFramework(); ok {
				active = map[string]any{
					"id":           fw.ID,
					"name":         fw.Name,
					"lastModified": fw.LastModified,
					"items":        len(db.ItemsFor(fw.ID, model.CategoryAny)),
					"placements":   len(db.PlacementsFor(fw.ID)),
				}
			}

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"dir":             app.Dir,
					"workspace":       app.Workspace,
					"frameworks":      len(db.Frameworks),
					"activeFramework": active,
				},
			})
		},
	}
	return cmd
}
