package cli

import (
	"fmt"
	"os"

	"github.com/lazypower/taskmgr/internal/config"
	"github.com/lazypower/taskmgr/internal/store"
	"github.com/lazypower/taskmgr/internal/task"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export tasks as a task.json document",
	Long:  "Write the ordered task list as JSON. Writes to stdout when no file is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	return withTasks(func(tasks *task.Collection, cfg config.Config) error {
		if len(args) == 0 {
			return store.ExportJSON(cmd.OutOrStdout(), *tasks)
		}
		if err := store.ExportFile(args[0], *tasks); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "exported %d tasks to %s\n", len(*tasks), args[0])
		return nil
	})
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Replace all tasks with those in a task.json document",
	Long: `Replace all tasks with those in a task.json document. The stored tasks are
not loaded first, so import also recovers a database that no longer recomputes.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	imported, err := store.ImportFile(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	replaced, err := db.Count()
	if err != nil {
		return fmt.Errorf("count tasks: %w", err)
	}
	if _, err := newEngine().Recompute(imported); err != nil {
		return fmt.Errorf("recompute urgency: %w", err)
	}
	if err := db.Save(imported); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tasks (replaced %d)\n", len(imported), replaced)
	return nil
}
