package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/schoolbuddy/internal/app"
)

var rootCmd = &cobra.Command{
	Use:   "schoolbuddy",
	Short: "AI writing buddy for kids",
	Long: `SchoolBuddy — a terminal writing buddy for students in grades 6-8.

Share a photo of your writing with /photo and get feedback aligned with the
Ontario Language curriculum, or just ask questions about writing and grammar.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		return app.Run(app.Options{
			Ctx:    e.ctx,
			Prefs:  e.prefs,
			Buddy:  e.buddy,
			Logger: e.logger,
		})
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("db", "", "Path to SQLite database file (overrides SCHOOLBUDDY_DB env var)")
	flags.String("config", "", "Path to a schoolbuddy.yaml config file")
	flags.String("log-level", "", "Log level: trace, debug, info, warn, error, disabled")
	flags.String("log-file", "", "Write JSON logs to this file")
	flags.String("trace-file", "", "Write OpenTelemetry spans as JSON to this file (- for stderr)")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9464)")
	flags.String("lang", "", "Message language: en or fr")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
