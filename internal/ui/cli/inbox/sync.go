package inbox

import (
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Force a full inbox resynchronization",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, _, err := initializeEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		conversations, err := engine.Refresh(cmd.Context(), true)
		if err != nil {
			return fmt.Errorf("failed to sync inbox: %w", err)
		}

		fmt.Printf("Synced %d conversations\n", len(conversations))
		return nil
	},
}
