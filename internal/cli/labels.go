package cli

import (
	"bvf-cli/internal/mutate"
	"bvf-cli/internal/store"
	"bvf-cli/internal/template"

	"github.com/spf13/cobra"
)

func newLabelsCmd(app *App) *cobra.Command {
	var bvfID string

	cmd := &cobra.Command{
		Use:   "labels",
		Short: "View and override KPI row captions",
	}
	cmd.PersistentFlags().StringVar(&bvfID, "bvf", "", "Target framework id (default: active framework)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List label keys with effective and default captions",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			fw, err := resolveFramework(db, bvfID)
			if err != nil {
				return writeErr(cmd, err)
			}
			out := []map[string]any{}
			for _, key := range template.LabelKeys() {
				def, _ := template.DefaultLabel(key)
				effective := store.Label(fw, key, def)
				out = append(out, map[string]any{
					"key":        key,
					"label":      effective,
					"default":    def,
					"overridden": effective != def,
				})
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <key> <caption>",
		Short: "Override a KPI row caption (empty caption restores the default)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			fw, err := resolveFramework(db, bvfID)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := mutate.SetCustomLabel(db, fw.ID, args[0], args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.Changed {
				if err := saveAndLog(s, db, "label.set", fw.ID, res.EventPayload); err != nil {
					return writeErr(cmd, err)
				}
			}
			def, _ := template.DefaultLabel(args[0])
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"key":     args[0],
					"label":   store.Label(res.Framework, args[0], def),
					"changed": res.Changed,
				},
			})
		},
	}

	cmd.AddCommand(listCmd)
	cmd.AddCommand(setCmd)
	return cmd
}
