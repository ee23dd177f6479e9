package inbox

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/gatherly-app/gatherly/internal/domain"
)

var localOnly bool

var listCmd = &cobra.Command{
	Use:   "ls",
	Short: "List inbox conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, _, err := initializeEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		var conversations []domain.Conversation
		if localOnly {
			conversations, err = engine.LoadLocal(cmd.Context())
		} else {
			conversations, _, err = engine.Load(cmd.Context())
		}
		if err != nil {
			return fmt.Errorf("failed to load inbox: %w", err)
		}

		if len(conversations) == 0 {
			fmt.Println("Inbox is empty")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tWith\tUnread\tLast message\tWhen")
		for _, conv := range conversations {
			preview := conv.LastMessage
			if len(preview) > 50 {
				preview = preview[:47] + "..."
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
				conv.ID, conv.DisplayName(), conv.UnreadCount, preview,
				relativeTime(conv.LastMessageTime))
		}
		if err := w.Flush(); err != nil {
			return err
		}

		if total := engine.UnreadTotal(); total > 0 {
			fmt.Printf("\n%d unread\n", total)
		}
		return nil
	},
}

func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Format("2006-01-02")
	}
}

func init() {
	listCmd.Flags().BoolVar(&localOnly, "local", false, "Serve from the local store without contacting the server")
}
