package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/schoolbuddy/internal/curriculum"
	"github.com/abhisek/schoolbuddy/internal/personas"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change saved settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved settings",
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
		stored, err := e.prefs.StoredAPIKey(e.ctx)
		if err != nil {
			return err
		}
		onboarded, err := e.prefs.Onboarded(e.ctx)
		if err != nil {
			return err
		}

		keySource := "none"
		switch {
		case stored:
			keySource = "saved"
		case in.apiKey != "":
			keySource = "default"
		}

		p := personas.ByID(in.persona)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Pet:        %s %s (%s)\n", p.Emoji, p.Name, p.ID)
		fmt.Fprintf(out, "Grade:      %d\n", in.grade)
		fmt.Fprintf(out, "API key:    %s (%s)\n", maskKey(in.apiKey), keySource)
		fmt.Fprintf(out, "Provider:   %s / %s\n", e.cfg.LLM.Provider, e.cfg.LLM.Model())
		fmt.Fprintf(out, "Language:   %s\n", e.cfg.Language)
		fmt.Fprintf(out, "Prefs:      %s\n", e.cfg.Store.Backend)
		fmt.Fprintf(out, "Onboarded:  %v\n", onboarded)
		return nil
	},
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key <key>",
	Short: "Save the API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := strings.TrimSpace(args[0])
		if key == "" {
			return fmt.Errorf("API key must not be blank")
		}
		return withPrefs(cmd, func(e *env) error {
			return e.prefs.SetAPIKey(e.ctx, key)
		})
	},
}

var configSetGradeCmd = &cobra.Command{
	Use:   "set-grade <6|7|8>",
	Short: "Save the grade level",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		grade, err := strconv.Atoi(args[0])
		if err != nil || !curriculum.IsSupportedGrade(grade) {
			return fmt.Errorf("grade must be one of %v", curriculum.SupportedGrades())
		}
		return withPrefs(cmd, func(e *env) error {
			return e.prefs.SetGrade(e.ctx, grade)
		})
	},
}

var configSetPetCmd = &cobra.Command{
	Use:   "set-pet <id>",
	Short: "Choose your buddy (scout, whiskers, sage, bamboo, finn)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := strings.ToLower(args[0])
		if !personas.Exists(id) {
			return fmt.Errorf("unknown pet %q", args[0])
		}
		return withPrefs(cmd, func(e *env) error {
			return e.prefs.SetPersonaID(e.ctx, id)
		})
	},
}

func withPrefs(cmd *cobra.Command, fn func(e *env) error) error {
	e, err := newEnv(cmd, false)
	if err != nil {
		return err
	}
	defer e.Close()
	if err := fn(e); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Saved.")
	return nil
}

// maskKey keeps the first and last four characters of key.
func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return strings.Repeat("•", len(key))
	}
	return key[:4] + strings.Repeat("•", 8) + key[len(key)-4:]
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetKeyCmd)
	configCmd.AddCommand(configSetGradeCmd)
	configCmd.AddCommand(configSetPetCmd)
}
