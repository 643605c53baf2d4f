package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/schoolbuddy/internal/buddy"
	"github.com/abhisek/schoolbuddy/internal/curriculum"
	"github.com/abhisek/schoolbuddy/internal/errclass"
	"github.com/abhisek/schoolbuddy/internal/photo"
	"github.com/abhisek/schoolbuddy/internal/screens/chat"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Get feedback on a photo of writing",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		path, _ := cmd.Flags().GetString("image")
		asJSON, _ := cmd.Flags().GetBool("json")

		capture, err := photo.Load(path)
		if err != nil {
			return fmt.Errorf("load image: %w", err)
		}
		in, err := studentSettings(cmd, e)
		if err != nil {
			return err
		}

		fb, err := e.buddy.AnalyzeWriting(e.ctx, buddy.AnalyzeInput{
			APIKey:      in.apiKey,
			ImageBase64: capture.Base64,
			MIMEType:    capture.MIMEType,
			Grade:       in.grade,
			Subject:     curriculum.SubjectEnglish,
			Persona:     in.persona,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, errclass.Friendly(e.ctx, err, true))
			return err
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(fb)
		}
		fmt.Fprintln(cmd.OutOrStdout(), chat.RenderFeedbackCard(e.ctx, fb))
		return nil
	},
}

// settings are the student's saved choices, with flag overrides.
type settings struct {
	apiKey  string
	grade   int
	persona string
}

func studentSettings(cmd *cobra.Command, e *env) (settings, error) {
	var s settings
	var err error
	if s.apiKey, err = e.prefs.APIKey(e.ctx); err != nil {
		return s, fmt.Errorf("read API key: %w", err)
	}
	if s.grade, err = e.prefs.Grade(e.ctx); err != nil {
		return s, fmt.Errorf("read grade: %w", err)
	}
	if s.persona, err = e.prefs.PersonaID(e.ctx); err != nil {
		return s, fmt.Errorf("read pet: %w", err)
	}
	if cmd.Flags().Changed("grade") {
		s.grade, _ = cmd.Flags().GetInt("grade")
	}
	if cmd.Flags().Changed("pet") {
		s.persona, _ = cmd.Flags().GetString("pet")
	}
	return s, nil
}

func init() {
	analyzeCmd.Flags().String("image", "", "Path to a photo of the writing (required)")
	analyzeCmd.Flags().Int("grade", 0, "Grade to evaluate against (defaults to the saved grade)")
	analyzeCmd.Flags().String("pet", "", "Buddy persona id (defaults to the saved pet)")
	analyzeCmd.Flags().Bool("json", false, "Print the parsed feedback as JSON")
	_ = analyzeCmd.MarkFlagRequired("image")
}
