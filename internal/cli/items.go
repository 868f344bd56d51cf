package cli

import (
	"fmt"
	"strings"

	"bvf-cli/internal/model"
	"bvf-cli/internal/mutate"
	"bvf-cli/internal/store"

	"github.com/spf13/cobra"
)

func newItemsCmd(app *App) *cobra.Command {
	var bvfID string

	cmd := &cobra.Command{
		Use:   "items",
		Short: "Manage category pool items",
	}
	cmd.PersistentFlags().StringVar(&bvfID, "bvf", "", "Target framework id (default: active framework)")

	cmd.AddCommand(newItemsListCmd(app, &bvfID))
	cmd.AddCommand(newItemsAddCmd(app, &bvfID))
	cmd.AddCommand(newItemsSetTextCmd(app, &bvfID))
	cmd.AddCommand(newItemsRemoveCmd(app, &bvfID))

	return cmd
}

func parseCategory(raw string) (model.Category, error) {
	c := model.Category(strings.TrimSpace(raw))
	if !c.Valid() {
		names := make([]string, 0, len(model.Categories()))
		for _, v := range model.Categories() {
			names = append(names, string(v))
		}
		return "", fmt.Errorf("unknown category %q (one of: %s)", raw, strings.Join(names, ", "))
	}
	return c, nil
}

func itemView(db *store.DB, it model.Item) map[string]any {
	v := map[string]any{
		"id":        it.ID,
		"category":  string(it.Category),
		"text":      it.Text,
		"createdAt": it.CreatedAt,
		"placed":    db.IsItemPlaced(it.FrameworkID, it.ID),
	}
	if p, ok := db.PlacementOf(it.FrameworkID, it.ID); ok {
		v["slotKey"] = p.SlotKey
	}
	return v
}

func newItemsListCmd(app *App, bvfID *string) *cobra.Command {
	var category string
	var unplaced bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pool items (optionally one category, optionally unplaced only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			fw, err := resolveFramework(db, *bvfID)
			if err != nil {
				return writeErr(cmd, err)
			}

			cat := model.CategoryAny
			if strings.TrimSpace(category) != "" {
				cat, err = parseCategory(category)
				if err != nil {
					return writeErr(cmd, err)
				}
			}

			out := []map[string]any{}
			for _, it := range db.ItemsFor(fw.ID, cat) {
				if unplaced && db.IsItemPlaced(fw.ID, it.ID) {
					continue
				}
				out = append(out, itemView(db, it))
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Filter by category")
	cmd.Flags().BoolVar(&unplaced, "unplaced", false, "Only items not currently on the board")
	return cmd
}

func newItemsAddCmd(app *App, bvfID *string) *cobra.Command {
	var category string
	var text string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an item to a category pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			fw, err := resolveFramework(db, *bvfID)
			if err != nil {
				return writeErr(cmd, err)
			}
			cat, err := parseCategory(category)
			if err != nil {
				return writeErr(cmd, err)
			}

			res, err := mutate.AddItem(db, fw.ID, cat)
			if err != nil {
				return writeErr(cmd, err)
			}
			if strings.TrimSpace(text) != "" {
				if _, err := mutate.SetItemText(db, fw.ID, res.Item.ID, text); err != nil {
					return writeErr(cmd, err)
				}
			}
			if err := saveAndLog(s, db, "item.add", res.Item.ID, res.EventPayload); err != nil {
				return writeErr(cmd, err)
			}
			it, _ := db.FindItem(res.Item.ID)
			return writeOut(cmd, app, map[string]any{"data": itemView(db, *it)})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Item category (pillar, kpi, strategy, ...)")
	cmd.Flags().StringVar(&text, "text", "", "Initial item text (default: empty)")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func newItemsSetTextCmd(app *App, bvfID *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-text <item-id> <text>",
		Short: "Set an item's text (board slots holding it update too)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			fw, err := resolveFramework(db, *bvfID)
			if err != nil {
				return writeErr(cmd, err)
			}

			res, err := mutate.SetItemText(db, fw.ID, args[0], args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.Changed {
				if err := saveAndLog(s, db, "item.set-text", args[0], res.EventPayload); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"id": args[0], "changed": res.Changed},
			})
		},
	}
	return cmd
}

func newItemsRemoveCmd(app *App, bvfID *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <item-id>",
		Short: "Remove an item from its pool (clears its board slot too)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			fw, err := resolveFramework(db, *bvfID)
			if err != nil {
				return writeErr(cmd, err)
			}

			res, err := mutate.RemoveItem(db, fw.ID, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.Changed {
				if err := saveAndLog(s, db, "item.remove", args[0], res.EventPayload); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"id":           args[0],
					"changed":      res.Changed,
					"clearedSlots": res.ClearedSlots,
				},
			})
		},
	}
	return cmd
}
