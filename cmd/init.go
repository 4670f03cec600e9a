package cmd

import (
	"github.com/spf13/cobra"

	"github.com/guestdesk/concierge/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize concierge configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure properties, languages and the LLM provider, and generates a .concierge.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
