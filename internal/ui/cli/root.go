package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gatherly-app/gatherly/internal/appState"
	"github.com/gatherly-app/gatherly/internal/config"
	inboxCmd "github.com/gatherly-app/gatherly/internal/ui/cli/inbox"
)

var (
	logLevel string
	logFile  string
	userID   string
	role     string
)

var rootCmd = &cobra.Command{
	Use:               "gatherly",
	Short:             "Gatherly events client",
	Long:              `Command line client for the gatherly social events platform`,
	DisableAutoGenTag: true,
}

func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rootCmd.SetContext(ctx)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set logging level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path (defaults to stderr)")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "Act as this user id")
	rootCmd.PersistentFlags().StringVar(&role, "role", "", "Inbox screen role (attendee, organizer, performer)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		overrides := &config.RuntimeOverrides{}
		if logLevel != "" {
			overrides.LogLevel = &logLevel
		}
		if logFile != "" {
			overrides.LogFile = &logFile
		}
		if userID != "" {
			overrides.UserID = &userID
		}
		if role != "" {
			overrides.Role = &role
		}
		return appState.Initialize(overrides)
	}

	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return appState.Cleanup()
	}

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(
		inboxCmd.InboxCmd,
	)
}
