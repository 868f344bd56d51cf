package cli

import (
	"bvf-cli/internal/mutate"
	"bvf-cli/internal/template"

	"github.com/spf13/cobra"
)

func newLayoutCmd(app *App) *cobra.Command {
	var bvfID string

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Place, clear and reset board slots",
	}
	cmd.PersistentFlags().StringVar(&bvfID, "bvf", "", "Target framework id (default: active framework)")

	cmd.AddCommand(newLayoutPlaceCmd(app, &bvfID))
	cmd.AddCommand(newLayoutClearCmd(app, &bvfID))
	cmd.AddCommand(newLayoutResetCmd(app, &bvfID))
	cmd.AddCommand(newLayoutSlotsCmd(app))

	return cmd
}

func newLayoutPlaceCmd(app *App, bvfID *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "place <item-id> <slot-key>",
		Short: "Place a pool item into a board slot",
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

			// A CLI place is a one-shot drag: pick up, drop, done.
			sess, err := mutate.BeginDrag(db, fw.ID, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := mutate.Drop(db, sess, args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.Changed {
				if err := saveAndLog(s, db, "layout.place", args[0], res.EventPayload); err != nil {
					return writeErr(cmd, err)
				}
			}

			data := map[string]any{
				"itemId":  args[0],
				"slotKey": args[1],
				"changed": res.Changed,
			}
			if res.Replaced != nil {
				data["replacedItemId"] = res.Replaced.ItemID
			}
			return writeOut(cmd, app, map[string]any{"data": data})
		},
	}
	return cmd
}

func newLayoutClearCmd(app *App, bvfID *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear <slot-key>",
		Short: "Clear one board slot (the item returns to its pool)",
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

			res, err := mutate.ClearSlot(db, fw.ID, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.Changed {
				if err := saveAndLog(s, db, "layout.clear", fw.ID, res.EventPayload); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"slotKey": args[0], "changed": res.Changed},
			})
		},
	}
	return cmd
}

func newLayoutResetCmd(app *App, bvfID *string) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear every slot on the board (items stay in their pools)",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			fw, err := resolveFramework(db, *bvfID)
			if err != nil {
				return writeErr(cmd, err)
			}

			if !yes {
				return writeOut(cmd, app, map[string]any{
					"data": map[string]any{
						"id":         fw.ID,
						"placements": len(db.PlacementsFor(fw.ID)),
					},
					"_hints": []string{"bvf layout reset --yes"},
				})
			}

			res, err := mutate.ResetLayout(db, fw.ID)
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.Changed {
				if err := saveAndLog(s, db, "layout.reset", fw.ID, res.EventPayload); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"cleared": res.Cleared, "changed": res.Changed},
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the reset (without it, only reports what would be cleared)")
	return cmd
}

func newLayoutSlotsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List every slot key with the category it accepts",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := []map[string]any{}
			for _, slot := range template.Slots() {
				out = append(out, map[string]any{
					"key":         slot.Key,
					"accepts":     string(slot.Accepts),
					"placeholder": slot.Placeholder,
				})
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	return cmd
}
