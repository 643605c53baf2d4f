package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/schoolbuddy/internal/buddy"
	"github.com/abhisek/schoolbuddy/internal/errclass"
)

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Ask your buddy a question about writing",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		in, err := studentSettings(cmd, e)
		if err != nil {
			return err
		}

		reply, err := e.buddy.Chat(e.ctx, buddy.ChatInput{
			APIKey:  in.apiKey,
			Message: strings.Join(args, " "),
			Grade:   in.grade,
			Persona: in.persona,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, errclass.Friendly(e.ctx, err, false))
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), reply)
		return nil
	},
}

func init() {
	askCmd.Flags().Int("grade", 0, "Grade level (defaults to the saved grade)")
	askCmd.Flags().String("pet", "", "Buddy persona id (defaults to the saved pet)")
}
