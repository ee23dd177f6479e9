package inbox

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gatherly-app/gatherly/internal/appState"
	"github.com/gatherly-app/gatherly/internal/events"
	inboxEngine "github.com/gatherly-app/gatherly/internal/inbox"
	"github.com/gatherly-app/gatherly/internal/shared"
)

var InboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "Inbox commands",
	Long:  `View and manage the conversation inbox`,
}

func init() {
	InboxCmd.AddCommand(
		listCmd,
		syncCmd,
		rmCmd,
	)
}

func initializeEngine() (*inboxEngine.Engine, *events.Bus, error) {
	app := appState.Get()
	engine, bus, err := shared.InitializeEngine(app.Config, app.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize inbox engine: %w", err)
	}
	return engine, bus, nil
}
