package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/schoolbuddy/internal/curriculum"
	"github.com/abhisek/schoolbuddy/internal/personas"
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the feedback prompt for a grade (no database, no model call)",
	RunE: func(cmd *cobra.Command, args []string) error {
		grade, _ := cmd.Flags().GetInt("grade")
		petID, _ := cmd.Flags().GetString("pet")
		chatPrompt, _ := cmd.Flags().GetBool("chat")

		if !personas.Exists(petID) {
			return fmt.Errorf("unknown pet %q", petID)
		}
		p := personas.ByID(petID)

		out := curriculum.BuildPrompt(grade, curriculum.SubjectEnglish, p.Name, p.Personality)
		if chatPrompt {
			out = curriculum.BuildChatPrompt(grade, p.Name, p.Personality)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	promptCmd.Flags().Int("grade", curriculum.BaselineGrade, "Grade level (6, 7 or 8)")
	promptCmd.Flags().String("pet", personas.DefaultID, "Buddy persona id")
	promptCmd.Flags().Bool("chat", false, "Print the chat persona prompt instead")
}
