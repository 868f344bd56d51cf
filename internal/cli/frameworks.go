package cli

import (
	"fmt"
	"strings"
	"time"

	"bvf-cli/internal/model"
	"bvf-cli/internal/mutate"
	"bvf-cli/internal/store"
	"bvf-cli/internal/template"

	"github.com/spf13/cobra"
)

func newFrameworksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "frameworks",
		Aliases: []string{"bvfs"},
		Short:   "Manage BVF frameworks (create, switch, rename, delete)",
	}

	cmd.AddCommand(newFrameworksListCmd(app))
	cmd.AddCommand(newFrameworksCreateCmd(app))
	cmd.AddCommand(newFrameworksShowCmd(app))
	cmd.AddCommand(newFrameworksUseCmd(app))
	cmd.AddCommand(newFrameworksRenameCmd(app))
	cmd.AddCommand(newFrameworksDeleteCmd(app))

	return cmd
}

func frameworkSummary(db *store.DB, fw model.Framework, active bool) map[string]any {
	return map[string]any{
		"id":           fw.ID,
		"name":         fw.Name,
		"active":       active,
		"createdAt":    fw.CreatedAt,
		"lastModified": fw.LastModified,
		"items":        len(db.ItemsFor(fw.ID, model.CategoryAny)),
		"placements":   len(db.PlacementsFor(fw.ID)),
	}
}

func newFrameworksListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List frameworks in collection order",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			out := make([]map[string]any, 0, len(db.Frameworks))
			for _, fw := range db.Frameworks {
				out = append(out, frameworkSummary(db, fw, fw.ID == db.ActiveFrameworkID))
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	return cmd
}

func newFrameworksCreateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a framework and make it active (default name is dated)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			name := ""
			if len(args) > 0 {
				name = strings.TrimSpace(args[0])
			}
			if name == "" {
				name = model.DefaultFrameworkName(time.Now())
			}
			res, err := mutate.CreateFramework(db, name)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := saveAndLog(s, db, "framework.create", res.Framework.ID, res.EventPayload); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": frameworkSummary(db, *res.Framework, true),
			})
		},
	}
	return cmd
}

func newFrameworksShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <bvf-id>",
		Short: "Show one framework with its labels and financials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			fw, ok := db.FindFramework(strings.TrimSpace(args[0]))
			if !ok {
				return writeErr(cmd, errNotFound("framework", args[0]))
			}

			labels := map[string]string{}
			for _, key := range template.LabelKeys() {
				def, _ := template.DefaultLabel(key)
				labels[key] = store.Label(fw, key, def)
			}
			financials := map[string]string{}
			for _, key := range template.FinancialKeys() {
				if fw.Financials != nil {
					financials[key] = fw.Financials[key]
				} else {
					financials[key] = ""
				}
			}

			summary := frameworkSummary(db, *fw, fw.ID == db.ActiveFrameworkID)
			summary["labels"] = labels
			summary["financials"] = financials
			return writeOut(cmd, app, map[string]any{"data": summary})
		},
	}
	return cmd
}

func newFrameworksUseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "use <bvf-id>",
		Short: "Set the active framework",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := mutate.SetActiveFramework(db, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.Changed {
				if err := saveAndLog(s, db, "framework.use", res.Framework.ID, res.EventPayload); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"id":      res.Framework.ID,
					"name":    res.Framework.Name,
					"changed": res.Changed,
				},
			})
		},
	}
	return cmd
}

func newFrameworksRenameCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <bvf-id> <name>",
		Short: "Rename a framework",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := mutate.RenameFramework(db, args[0], args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.Changed {
				if err := saveAndLog(s, db, "framework.rename", res.Framework.ID, res.EventPayload); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"id":      res.Framework.ID,
					"name":    res.Framework.Name,
					"changed": res.Changed,
				},
			})
		},
	}
	return cmd
}

func newFrameworksDeleteCmd(app *App) *cobra.Command {
	var confirm string

	cmd := &cobra.Command{
		Use:   "delete <bvf-id>",
		Short: "Delete a framework (two-phase: run once for a token, again with --confirm)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id := strings.TrimSpace(args[0])

			if strings.TrimSpace(confirm) == "" {
				req, err := mutate.RequestDelete(db, id)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{
					"data": map[string]any{
						"id":         req.Framework.ID,
						"name":       req.Framework.Name,
						"items":      req.ItemCount,
						"placements": req.PlacementCount,
						"token":      req.Token,
					},
					"_hints": []string{
						fmt.Sprintf("bvf frameworks delete %s --confirm %s", req.Framework.ID, req.Token),
					},
				})
			}

			res, err := mutate.ConfirmDelete(db, id, strings.TrimSpace(confirm))
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := saveAndLog(s, db, "framework.delete", id, res.EventPayload); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"id":           id,
					"removedItems": res.RemovedItems,
					"removedSlots": res.RemovedSlots,
					"newActiveId":  res.NewActiveID,
				},
			})
		},
	}

	cmd.Flags().StringVar(&confirm, "confirm", "", "Confirmation token from the first delete invocation")
	return cmd
}
