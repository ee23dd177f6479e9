package inbox

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm [conversation_id]",
	Short: "Delete a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, _, err := initializeEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		if err := engine.Delete(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete conversation: %w", err)
		}

		fmt.Printf("Deleted conversation %s\n", args[0])
		return nil
	},
}
