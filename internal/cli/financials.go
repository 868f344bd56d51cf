package cli

import (
	"bvf-cli/internal/mutate"
	"bvf-cli/internal/template"

	"github.com/spf13/cobra"
)

func newFinancialsCmd(app *App) *cobra.Command {
	var bvfID string

	cmd := &cobra.Command{
		Use:   "financials",
		Short: "View and set the financial summary lines",
	}
	cmd.PersistentFlags().StringVar(&bvfID, "bvf", "", "Target framework id (default: active framework)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List financial keys with labels and values",
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
			for _, key := range template.FinancialKeys() {
				label, _ := template.FinancialLabel(key)
				value := ""
				if fw.Financials != nil {
					value = fw.Financials[key]
				}
				out = append(out, map[string]any{
					"key":   key,
					"label": label,
					"value": value,
				})
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a financial summary line (growth, cash-flow, investments, leverage)",
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
			res, err := mutate.SetFinancial(db, fw.ID, args[0], args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.Changed {
				if err := saveAndLog(s, db, "financial.set", fw.ID, res.EventPayload); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"key":     args[0],
					"value":   args[1],
					"changed": res.Changed,
				},
			})
		},
	}

	cmd.AddCommand(listCmd)
	cmd.AddCommand(setCmd)
	return cmd
}
