package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/schoolbuddy/internal/history"
	"github.com/abhisek/schoolbuddy/internal/ui/theme"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the saved conversation",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		msgs, err := e.prefs.History(e.ctx)
		if err != nil {
			return fmt.Errorf("read history: %w", err)
		}
		if len(msgs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No conversation saved yet.")
			return nil
		}

		out := cmd.OutOrStdout()
		for _, m := range msgs {
			who := "buddy"
			if m.Type == history.TypeUser {
				who = "you"
			}
			text := m.Text
			switch {
			case m.Feedback != nil:
				text = theme.Stars(m.Feedback.OverallStars) + " " + m.Feedback.OverallEncouragement
			case m.ImageURI != "":
				text += " (" + m.ImageURI + ")"
			case m.IsError:
				who += " !"
			}
			fmt.Fprintf(out, "%s  %-7s %s\n",
				m.Timestamp.Local().Format("2006-01-02 15:04"), who, strings.ReplaceAll(text, "\n", " "))
		}
		return nil
	},
}
