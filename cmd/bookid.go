package cmd

import (
	"fmt"

	"weread-sync/core/bookid"

	"github.com/spf13/cobra"
)

// bookidCmd prints the reader link of book ids.
var bookidCmd = &cobra.Command{
	Use:   "bookid <id>...",
	Short: "Print the web reader link of a book",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, id := range args {
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, bookid.ReaderURL(id)); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(bookidCmd)
}
