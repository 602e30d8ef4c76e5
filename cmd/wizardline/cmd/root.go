package cmd

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "wizardline",
	Short: "Persona-driven voice oracle backend",
	Long: `Wizardline records spoken questions, answers them in the voice of a
configurable persona, synthesizes the answer as speech, and keeps the whole
conversation in an append-only log so later questions can reference earlier
ones.`,
	PersistentPreRun: loadDotEnv,
}

func Execute() error {
	return rootCmd.Execute()
}

func loadDotEnv(_ *cobra.Command, _ []string) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
}
