package cli

import (
	"fmt"

	"bvf-cli/internal/board"

	"github.com/spf13/cobra"
)

func newBoardCmd(app *App) *cobra.Command {
	var bvfID string
	var width int
	var keys bool

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Render the board grid for a framework",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			fw, err := resolveFramework(db, bvfID)
			if err != nil {
				return writeErr(cmd, err)
			}
			out := board.Render(db, fw, board.Options{Width: width, ShowKeys: keys})
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().StringVar(&bvfID, "bvf", "", "Target framework id (default: active framework)")
	cmd.Flags().IntVar(&width, "width", 120, "Render width in columns")
	cmd.Flags().BoolVar(&keys, "keys", false, "Print slot keys inside each cell")
	return cmd
}
