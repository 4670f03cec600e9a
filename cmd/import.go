package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/guestdesk/concierge/internal/db"
	"github.com/guestdesk/concierge/internal/importer"
	"github.com/guestdesk/concierge/internal/knowledge"
	"github.com/guestdesk/concierge/internal/progress"
)

var importCmd = &cobra.Command{
	Use:   "import [directory]",
	Short: "Import markdown knowledge files into the knowledge store",
	Long: `Scans a directory tree of markdown files laid out as
property/language/category and loads them into the knowledge store.
Re-running the import updates existing entries in place.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		dir := "./knowledge"
		if len(args) == 1 {
			dir = args[0]
		}
		if _, err := os.Stat(dir); err != nil {
			return fmt.Errorf("knowledge directory %s: %w", dir, err)
		}

		database, err := db.Open(filepath.Join(cfg.DataDir, "concierge.db"))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		im := importer.New(knowledge.NewStore(database), cfg.PropertyNames(), cfg.Languages, progress.NewReporter())
		sum, err := im.Run(cmd.Context(), os.DirFS(dir))
		if err != nil {
			return err
		}

		fmt.Printf("Imported %d knowledge files from %s\n", sum.Imported, dir)
		for _, skipped := range sum.Skipped {
			fmt.Fprintf(os.Stderr, "skipped %s (does not match the property/language/category layout)\n", skipped)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
